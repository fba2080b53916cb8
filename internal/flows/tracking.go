package flows

import (
	"context"
	"sync"
	"time"

	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/internal/patient"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

// TrackingState is the patient's view of their active request.
type TrackingState string

const (
	TrackIdle            TrackingState = "idle"
	TrackAwaitingNurse   TrackingState = "awaiting_nurse"
	TrackPaymentPending  TrackingState = "payment_pending"
	TrackPaymentComplete TrackingState = "payment_complete"
	TrackRatingPending   TrackingState = "rating_pending"
)

// TrackingFlow drives the patient side: submitting a service request,
// waiting for a nurse, paying and rating.
type TrackingFlow struct {
	mu        sync.Mutex
	state     TrackingState
	current   *request.ServiceRequest
	uploading bool
	timers    []clock.Timer

	svc         *patient.Service
	clock       clock.Clock
	notifier    ui.Notifier
	navigator   ui.Navigator
	logger      *logging.Logger
	uploadDelay time.Duration
	revealDelay time.Duration
}

// TrackingFlowConfig wires a TrackingFlow.
type TrackingFlowConfig struct {
	Patient   *patient.Service
	Clock     clock.Clock
	Notifier  ui.Notifier
	Navigator ui.Navigator
	Logger    *logging.Logger
	// PaymentUploadDelay simulates the receipt upload for electronic
	// payments; RatingRevealDelay is the pause before the rating step
	// appears after a successful payment. Zero uses the defaults.
	PaymentUploadDelay time.Duration
	RatingRevealDelay  time.Duration
}

// NewTrackingFlow constructs an idle tracking flow.
func NewTrackingFlow(cfg TrackingFlowConfig) *TrackingFlow {
	if cfg.Patient == nil {
		panic("flows: patient service required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = ui.NopNotifier
	}
	if cfg.Navigator == nil {
		cfg.Navigator = ui.NopNavigator
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.PaymentUploadDelay == 0 {
		cfg.PaymentUploadDelay = DefaultPaymentUploadDelay
	}
	if cfg.RatingRevealDelay == 0 {
		cfg.RatingRevealDelay = DefaultRatingRevealDelay
	}
	return &TrackingFlow{
		state:       TrackIdle,
		svc:         cfg.Patient,
		clock:       cfg.Clock,
		notifier:    cfg.Notifier,
		navigator:   cfg.Navigator,
		logger:      cfg.Logger,
		uploadDelay: cfg.PaymentUploadDelay,
		revealDelay: cfg.RatingRevealDelay,
	}
}

// State returns the current tracking state.
func (f *TrackingFlow) State() TrackingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns the tracked request, if any.
func (f *TrackingFlow) Current() *request.ServiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// SubmitRequest validates the form, submits it, and moves to the
// tracking view. Validation failures block the network call.
func (f *TrackingFlow) SubmitRequest(ctx context.Context, in patient.ServiceRequestInput) error {
	if err := validateRequestInput(in); err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Check your details",
			Description: err.Error(),
			Severity:    ui.SeverityError,
		})
		return err
	}

	req, err := f.svc.RequestService(ctx, in)
	if err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Request failed",
			Description: apiclient.UserMessage(err, "Could not submit your request. Please try again."),
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.mu.Lock()
	f.state = TrackAwaitingNurse
	f.current = req
	f.mu.Unlock()

	f.notifier.Notify(ui.Notification{
		Title:    "Request submitted",
		Severity: ui.SeveritySuccess,
	})
	f.navigator.NavigateTo(ui.RoutePatientTrackRequest)
	return nil
}

// Refresh re-reads the current request; once a nurse has been matched
// the flow moves to payment.
func (f *TrackingFlow) Refresh(ctx context.Context) error {
	req, err := f.svc.CurrentRequest(ctx)
	if err != nil {
		if !apiclient.IsNotFound(err) {
			f.logger.Warn("could not refresh current request", "error", err)
		}
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = req
	if f.state == TrackAwaitingNurse && req.Status != request.StatusRequested {
		f.state = TrackPaymentPending
	}
	return nil
}

// SubmitPayment records the payment. Cash completes immediately; the
// electronic methods need a transaction number and amount, then go
// through a simulated receipt upload before succeeding.
func (f *TrackingFlow) SubmitPayment(ctx context.Context, method request.PaymentMethod, transactionNumber, amount string) error {
	f.mu.Lock()
	if f.state != TrackPaymentPending || f.uploading {
		f.mu.Unlock()
		return &ValidationError{Field: "payment", Reason: "payment step is not open"}
	}
	id := f.current.ID
	f.mu.Unlock()

	if !method.Valid() {
		return &ValidationError{Field: "payment", Reason: "unknown payment method"}
	}
	if method.Electronic() && (transactionNumber == "" || amount == "") {
		f.notifier.Notify(ui.Notification{
			Title:       "Missing payment details",
			Description: "Enter the transaction number and amount.",
			Severity:    ui.SeverityError,
		})
		return &ValidationError{Field: "payment", Reason: "transaction number and amount are required"}
	}

	p := patient.Payment{
		RequestID:         id,
		Method:            method,
		TransactionNumber: transactionNumber,
		Amount:            amount,
	}

	if !method.Electronic() {
		// Cash skips the receipt upload.
		req, err := f.svc.SubmitPayment(ctx, p)
		if err != nil {
			f.notifyPaymentFailure(err)
			return err
		}
		f.paymentSucceeded(req)
		return nil
	}

	f.mu.Lock()
	f.uploading = true
	t := f.clock.AfterFunc(f.uploadDelay, func() {
		req, err := f.svc.SubmitPayment(context.Background(), p)
		f.mu.Lock()
		f.uploading = false
		f.mu.Unlock()
		if err != nil {
			f.notifyPaymentFailure(err)
			return
		}
		f.paymentSucceeded(req)
	})
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	return nil
}

func (f *TrackingFlow) paymentSucceeded(req *request.ServiceRequest) {
	f.mu.Lock()
	f.state = TrackPaymentComplete
	f.current = req
	t := f.clock.AfterFunc(f.revealDelay, func() {
		f.mu.Lock()
		if f.state == TrackPaymentComplete {
			f.state = TrackRatingPending
		}
		f.mu.Unlock()
	})
	f.timers = append(f.timers, t)
	f.mu.Unlock()

	f.notifier.Notify(ui.Notification{
		Title:    "Payment received",
		Severity: ui.SeveritySuccess,
	})
}

func (f *TrackingFlow) notifyPaymentFailure(err error) {
	f.notifier.Notify(ui.Notification{
		Title:       "Payment failed",
		Description: apiclient.UserMessage(err, "Could not record your payment. Please try again."),
		Severity:    ui.SeverityError,
	})
}

// SubmitRating scores the visit and returns to the dashboard.
func (f *TrackingFlow) SubmitRating(ctx context.Context, stars int, comment string) error {
	if stars < 1 || stars > 5 {
		return &ValidationError{Field: "rating", Reason: "rating must be between 1 and 5"}
	}

	f.mu.Lock()
	if f.state != TrackRatingPending {
		f.mu.Unlock()
		return &ValidationError{Field: "rating", Reason: "rating step is not open"}
	}
	id := f.current.ID
	f.mu.Unlock()

	if _, err := f.svc.SubmitRating(ctx, patient.Rating{
		RequestID: id,
		Rating:    stars,
		Comment:   comment,
	}); err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Rating failed",
			Description: apiclient.UserMessage(err, "Could not record your rating. Please try again."),
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.mu.Lock()
	f.state = TrackIdle
	f.current = nil
	f.mu.Unlock()

	f.notifier.Notify(ui.Notification{
		Title:    "Thank you for your feedback",
		Severity: ui.SeveritySuccess,
	})
	f.navigator.NavigateTo(ui.RoutePatientDashboard)
	return nil
}

// Stop releases outstanding timers. Call when leaving the view.
func (f *TrackingFlow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
}

func validateRequestInput(in patient.ServiceRequestInput) error {
	if in.PatientName == "" {
		return &ValidationError{Field: "patientName", Reason: "patient name is required"}
	}
	if in.PatientAge == "" {
		return &ValidationError{Field: "patientAge", Reason: "patient age is required"}
	}
	if in.Address == "" {
		return &ValidationError{Field: "address", Reason: "address is required"}
	}
	if in.Details == "" {
		return &ValidationError{Field: "details", Reason: "service details are required"}
	}
	if in.ServiceType != "" && in.ServiceType != request.ServicePrescribed && in.ServiceType != request.ServiceEmergency {
		return &ValidationError{Field: "serviceType", Reason: "unknown service type"}
	}
	return nil
}
