package flows

import (
	"context"
	"sync"

	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

// ExecutionState tracks a nurse working a single request.
type ExecutionState string

const (
	ExecIdle          ExecutionState = "idle"
	ExecAccepted      ExecutionState = "accepted"
	ExecStarted       ExecutionState = "started"
	ExecCompleted     ExecutionState = "completed"
	ExecRatingPending ExecutionState = "rating_pending"
)

// Summary is the post-service form the nurse fills in before rating.
type Summary struct {
	AdditionalServices bool
	Notes              string
}

// ExecutionFlow drives a request from acceptance through completion,
// the summary form and the local rating step back to the dashboard.
type ExecutionFlow struct {
	mu      sync.Mutex
	state   ExecutionState
	current *request.ServiceRequest
	summary Summary

	svc          *nurse.Service
	availability *AvailabilityFlow
	notifier     ui.Notifier
	navigator    ui.Navigator
	logger       *logging.Logger
}

// ExecutionFlowConfig wires an ExecutionFlow. Availability is optional;
// when set, accepted requests are attached to it so the nurse cannot go
// offline mid-service.
type ExecutionFlowConfig struct {
	Nurse        *nurse.Service
	Availability *AvailabilityFlow
	Notifier     ui.Notifier
	Navigator    ui.Navigator
	Logger       *logging.Logger
}

// NewExecutionFlow constructs an idle execution flow.
func NewExecutionFlow(cfg ExecutionFlowConfig) *ExecutionFlow {
	if cfg.Nurse == nil {
		panic("flows: nurse service required")
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
	return &ExecutionFlow{
		state:        ExecIdle,
		svc:          cfg.Nurse,
		availability: cfg.Availability,
		notifier:     cfg.Notifier,
		navigator:    cfg.Navigator,
		logger:       cfg.Logger,
	}
}

// State returns the current execution state.
func (f *ExecutionFlow) State() ExecutionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns the request being worked, if any.
func (f *ExecutionFlow) Current() *request.ServiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Accept claims the request and attaches it to the availability flow.
func (f *ExecutionFlow) Accept(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.state != ExecIdle {
		f.mu.Unlock()
		return &ValidationError{Field: "request", Reason: "a request is already being worked"}
	}
	f.mu.Unlock()

	req, err := f.svc.AcceptRequest(ctx, id)
	if err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Could not accept request",
			Description: "The request may already be taken.",
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.mu.Lock()
	f.state = ExecAccepted
	f.current = req
	f.mu.Unlock()
	if f.availability != nil {
		f.availability.Attach(req)
	}

	f.notifier.Notify(ui.Notification{
		Title:       "Request accepted",
		Description: "Head to " + req.Address,
		Severity:    ui.SeveritySuccess,
	})
	return nil
}

// Start marks the service as underway. Purely local; the backend only
// learns about completion.
func (f *ExecutionFlow) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != ExecAccepted {
		return &ValidationError{Field: "service", Reason: "no accepted request to start"}
	}
	f.state = ExecStarted
	return nil
}

// Complete closes the request out on the backend and moves to the
// summary form.
func (f *ExecutionFlow) Complete(ctx context.Context) error {
	f.mu.Lock()
	if f.state != ExecStarted {
		f.mu.Unlock()
		return &ValidationError{Field: "service", Reason: "service has not been started"}
	}
	id := f.current.ID
	f.mu.Unlock()

	req, err := f.svc.CompleteService(ctx, id)
	if err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Could not complete request",
			Description: "Please try again.",
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.mu.Lock()
	f.state = ExecCompleted
	f.current = req
	f.mu.Unlock()

	f.navigator.NavigateTo(ui.RouteNurseServiceSummary)
	return nil
}

// SubmitSummary records the summary form and reveals the rating step.
func (f *ExecutionFlow) SubmitSummary(s Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != ExecCompleted {
		return &ValidationError{Field: "summary", Reason: "no completed service to summarize"}
	}
	f.summary = s
	f.state = ExecRatingPending
	return nil
}

// SubmitRating records the nurse's local patient rating and returns to
// the dashboard. The rating never leaves the device.
func (f *ExecutionFlow) SubmitRating(stars int) error {
	if stars < 1 || stars > 5 {
		return &ValidationError{Field: "rating", Reason: "rating must be between 1 and 5"}
	}

	f.mu.Lock()
	if f.state != ExecRatingPending {
		f.mu.Unlock()
		return &ValidationError{Field: "rating", Reason: "rating step is not open"}
	}
	f.state = ExecIdle
	f.current = nil
	f.summary = Summary{}
	f.mu.Unlock()

	if f.availability != nil {
		f.availability.Detach()
	}
	f.navigator.NavigateTo(ui.RouteNurseDashboard)
	return nil
}
