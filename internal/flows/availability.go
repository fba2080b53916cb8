package flows

import (
	"context"
	"sync"
	"time"

	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

// AvailabilityState is the nurse's duty status as the dashboard sees it.
type AvailabilityState string

const (
	Offline   AvailabilityState = "offline"
	Available AvailabilityState = "available"
)

// AvailabilityFlow drives the on/off duty toggle. Going available
// schedules a one-shot simulated incoming request, standing in for a
// real-time match event.
type AvailabilityFlow struct {
	mu       sync.Mutex
	state    AvailabilityState
	incoming *request.ServiceRequest
	attached *request.ServiceRequest
	timer    clock.Timer

	svc      *nurse.Service
	clock    clock.Clock
	delay    time.Duration
	notifier ui.Notifier
	logger   *logging.Logger
}

// AvailabilityFlowConfig wires an AvailabilityFlow.
type AvailabilityFlowConfig struct {
	Nurse    *nurse.Service
	Clock    clock.Clock
	Notifier ui.Notifier
	Logger   *logging.Logger
	// IncomingDelay is how long after going available the simulated
	// incoming request fires. Zero uses the default.
	IncomingDelay time.Duration
}

// NewAvailabilityFlow constructs an offline availability flow.
func NewAvailabilityFlow(cfg AvailabilityFlowConfig) *AvailabilityFlow {
	if cfg.Nurse == nil {
		panic("flows: nurse service required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = ui.NopNotifier
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.IncomingDelay == 0 {
		cfg.IncomingDelay = DefaultIncomingRequestDelay
	}
	return &AvailabilityFlow{
		state:    Offline,
		svc:      cfg.Nurse,
		clock:    cfg.Clock,
		delay:    cfg.IncomingDelay,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
}

// State returns the current duty status.
func (f *AvailabilityFlow) State() AvailabilityState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Toggle flips the duty status. Going offline is reverted while a
// request is attached.
func (f *AvailabilityFlow) Toggle(ctx context.Context, available bool) error {
	if !available {
		f.mu.Lock()
		blocked := f.attached != nil
		f.mu.Unlock()
		if blocked {
			f.notifier.Notify(ui.Notification{
				Title:       "Cannot go offline",
				Description: "Complete your current service request first.",
				Severity:    ui.SeverityError,
			})
			return &ValidationError{Field: "availability", Reason: "a service request is attached"}
		}
	}

	if _, err := f.svc.SetAvailability(ctx, available); err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Availability update failed",
			Description: "Could not update your availability. Please try again.",
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if available {
		f.state = Available
		if f.timer != nil {
			f.timer.Stop()
		}
		f.timer = f.clock.AfterFunc(f.delay, f.simulateIncoming)
	} else {
		f.state = Offline
		f.stopTimerLocked()
		f.incoming = nil
	}
	return nil
}

// simulateIncoming fires once after going available: it surfaces the
// oldest open request, or fabricates a sample one when the board is
// empty, so the dashboard always has something to demonstrate.
func (f *AvailabilityFlow) simulateIncoming() {
	reqs, err := f.svc.Requests(context.Background())
	if err != nil {
		f.logger.Warn("could not fetch open requests for simulation", "error", err)
	}

	var next *request.ServiceRequest
	if len(reqs) > 0 {
		next = reqs[0]
	} else {
		next = &request.ServiceRequest{
			ID:          "sample_incoming",
			PatientName: "Ahmed Hassan",
			PatientAge:  "72",
			Address:     "15 Tahrir Square, Cairo",
			ServiceType: request.ServicePrescribed,
			Details:     "Blood pressure check and medication administration",
			Status:      request.StatusRequested,
		}
	}

	f.mu.Lock()
	if f.state != Available {
		f.mu.Unlock()
		return
	}
	f.incoming = next
	f.mu.Unlock()

	f.notifier.Notify(ui.Notification{
		Title:       "New service request",
		Description: next.PatientName + " needs " + string(next.ServiceType) + " care",
		Severity:    ui.SeverityInfo,
	})
}

// Incoming returns the pending incoming request, if any.
func (f *AvailabilityFlow) Incoming() *request.ServiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.incoming
}

// Attach marks a request as being worked, blocking offline toggles.
func (f *AvailabilityFlow) Attach(req *request.ServiceRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = req
	if f.incoming != nil && req != nil && f.incoming.ID == req.ID {
		f.incoming = nil
	}
}

// Detach releases the attached request.
func (f *AvailabilityFlow) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = nil
}

// Stop releases the outstanding timer. Call when leaving the dashboard.
func (f *AvailabilityFlow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
}

func (f *AvailabilityFlow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
