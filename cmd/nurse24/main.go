// Command nurse24 runs the full client stack against the in-process
// mock backend and walks both sides of a visit end to end: a patient
// books a nurse, the nurse fulfills the request, the patient pays and
// rates. It exists to demonstrate and manually exercise the flows
// without a UI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/auth"
	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/internal/config"
	"github.com/nurse24/platform/internal/flows"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/mockapi"
	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/observability/metrics"
	"github.com/nurse24/platform/internal/patient"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting nurse24 demo client",
		"env", cfg.Env,
		"mock_backend", cfg.UseMockBackend(),
	)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("demo run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("demo run complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	ck := clock.New()
	apiMetrics := metrics.NewAPIMetrics(prometheus.NewRegistry())

	patientSessions, err := newSessionStore(ctx, cfg, logger.With("side", "patient"))
	if err != nil {
		return err
	}
	nurseSessions, err := newSessionStore(ctx, cfg, logger.With("side", "nurse"))
	if err != nil {
		return err
	}

	position := geo.WithTimeout(geo.StaticProvider{
		Position: geo.Coordinates{Latitude: 30.0444, Longitude: 31.2357},
	}, cfg.GeoTimeout)

	var transport func(store session.Store) apiclient.Config
	if cfg.UseMockBackend() {
		mock := mockapi.NewServer(mockapi.Config{
			Latency:   cfg.MockLatency,
			JWTSecret: cfg.MockJWTSecret,
			Clock:     ck,
			Logger:    logger.With("component", "mockapi"),
		})
		transport = func(store session.Store) apiclient.Config {
			return apiclient.Config{
				Sessions:  store,
				Transport: mock.Transport(apiMetrics),
				Logger:    logger,
				Metrics:   apiMetrics,
			}
		}
	} else {
		transport = func(store session.Store) apiclient.Config {
			return apiclient.Config{
				BaseURL:  cfg.APIBaseURL,
				Sessions: store,
				Logger:   logger,
				Metrics:  apiMetrics,
			}
		}
	}

	patientClient := apiclient.New(transport(patientSessions))
	nurseClient := apiclient.New(transport(nurseSessions))

	patientAuth := auth.NewService(patientClient, patientSessions, logger)
	nurseAuth := auth.NewService(nurseClient, nurseSessions, logger)
	patientSvc := patient.NewService(patientClient, position, logger)
	nurseSvc := nurse.NewService(nurseClient, nurseSessions, position, logger)

	patientShell := newShell(logger.With("side", "patient"))
	nurseShell := newShell(logger.With("side", "nurse"))

	// Both test users ship seeded in the mock store.
	if _, err := patientAuth.Login(ctx, auth.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}); err != nil {
		return fmt.Errorf("patient login: %w", err)
	}
	if _, err := nurseAuth.Login(ctx, auth.LoginRequest{
		Email:    "nurse@example.com",
		Password: "password123",
	}); err != nil {
		return fmt.Errorf("nurse login: %w", err)
	}

	availability := flows.NewAvailabilityFlow(flows.AvailabilityFlowConfig{
		Nurse:         nurseSvc,
		Clock:         ck,
		Notifier:      nurseShell,
		Logger:        logger,
		IncomingDelay: cfg.IncomingRequestDelay,
	})
	execution := flows.NewExecutionFlow(flows.ExecutionFlowConfig{
		Nurse:        nurseSvc,
		Availability: availability,
		Notifier:     nurseShell,
		Navigator:    nurseShell,
		Logger:       logger,
	})
	tracking := flows.NewTrackingFlow(flows.TrackingFlowConfig{
		Patient:            patientSvc,
		Clock:              ck,
		Notifier:           patientShell,
		Navigator:          patientShell,
		Logger:             logger,
		PaymentUploadDelay: cfg.PaymentUploadDelay,
		RatingRevealDelay:  cfg.RatingRevealDelay,
	})
	defer availability.Stop()
	defer tracking.Stop()

	// Patient books a visit.
	if err := tracking.SubmitRequest(ctx, patient.ServiceRequestInput{
		PatientName: "Mona Ahmed",
		PatientAge:  "67",
		Address:     "12 Nile St, Cairo",
		ServiceType: "prescribed",
		Details:     "Daily insulin injection",
	}); err != nil {
		return fmt.Errorf("submit request: %w", err)
	}

	// Nurse goes on duty and waits for the simulated incoming request.
	if err := availability.Toggle(ctx, true); err != nil {
		return fmt.Errorf("go available: %w", err)
	}
	incoming := waitForIncoming(availability, cfg.IncomingRequestDelay)
	if incoming == nil {
		return fmt.Errorf("no incoming request after %s", cfg.IncomingRequestDelay)
	}

	// Nurse works the visit.
	if err := execution.Accept(ctx, incoming.ID); err != nil {
		return fmt.Errorf("accept request: %w", err)
	}
	if err := execution.Start(); err != nil {
		return err
	}
	if err := execution.Complete(ctx); err != nil {
		return fmt.Errorf("complete request: %w", err)
	}

	// Patient pays and rates.
	if err := tracking.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	if err := tracking.SubmitPayment(ctx, "vodafone", "TXN-7001", "420"); err != nil {
		return fmt.Errorf("submit payment: %w", err)
	}
	waitForState(tracking, flows.TrackRatingPending,
		cfg.PaymentUploadDelay+cfg.RatingRevealDelay+time.Second)
	if err := tracking.SubmitRating(ctx, 5, "On time and careful"); err != nil {
		return fmt.Errorf("submit rating: %w", err)
	}

	// Nurse wraps up.
	if err := execution.SubmitSummary(flows.Summary{
		Notes: "Injection administered, no complications",
	}); err != nil {
		return err
	}
	if err := execution.SubmitRating(5); err != nil {
		return err
	}
	if err := availability.Toggle(ctx, false); err != nil {
		return fmt.Errorf("go offline: %w", err)
	}

	history, err := patientSvc.RequestHistory(ctx)
	if err != nil {
		return fmt.Errorf("request history: %w", err)
	}
	logger.Info("visit lifecycle finished", "history_entries", len(history))
	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (session.Store, error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TLS:      cfg.RedisTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return store, nil
}

// shell is the terminal stand-in for the presentational layer: it logs
// notifications and navigations instead of rendering them.
type shell struct {
	logger *logging.Logger
}

func newShell(logger *logging.Logger) *shell {
	return &shell{logger: logger}
}

func (s *shell) Notify(n ui.Notification) {
	s.logger.Info("notification",
		"title", n.Title,
		"description", n.Description,
		"severity", string(n.Severity),
	)
}

func (s *shell) NavigateTo(route ui.Route) {
	s.logger.Info("navigate", "route", string(route))
}

// waitForIncoming polls for the simulated incoming request. Real time
// only; the demo runs on the wall clock.
func waitForIncoming(f *flows.AvailabilityFlow, delay time.Duration) *request.ServiceRequest {
	deadline := time.Now().Add(delay + 2*time.Second)
	for time.Now().Before(deadline) {
		if req := f.Incoming(); req != nil {
			return req
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

func waitForState(f *flows.TrackingFlow, want flows.TrackingState, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f.State() == want {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
