package flows

import (
	"context"
	"sync"
	"time"

	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

// UploadState tracks one simulated document upload.
type UploadState string

const (
	UploadIdle     UploadState = "idle"
	UploadInFlight UploadState = "uploading"
	UploadDone     UploadState = "done"
)

// CaptureDirection is one of the four face verification poses.
type CaptureDirection string

const (
	CaptureFront CaptureDirection = "front"
	CaptureRight CaptureDirection = "right"
	CaptureLeft  CaptureDirection = "left"
	CaptureUp    CaptureDirection = "up"
)

// OnboardingFlow drives the nurse registration wizard: national ID
// upload, license upload, then face verification. Uploads are
// simulated with a fixed delay; no bytes actually move.
type OnboardingFlow struct {
	mu       sync.Mutex
	idState  UploadState
	licState UploadState
	captures map[CaptureDirection]bool
	verified bool
	timers   []clock.Timer

	nationalID string
	licenseID  string

	svc         *nurse.Service
	clock       clock.Clock
	notifier    ui.Notifier
	navigator   ui.Navigator
	logger      *logging.Logger
	uploadDelay time.Duration
	verifyDelay time.Duration
}

// OnboardingFlowConfig wires an OnboardingFlow.
type OnboardingFlowConfig struct {
	Nurse     *nurse.Service
	Clock     clock.Clock
	Notifier  ui.Notifier
	Navigator ui.Navigator
	Logger    *logging.Logger
	// UploadDelay simulates each document upload; VerifyDelay is the
	// pause before verification completes once all four captures are
	// in. Zero uses the defaults.
	UploadDelay time.Duration
	VerifyDelay time.Duration
}

// NewOnboardingFlow constructs a wizard at step one.
func NewOnboardingFlow(cfg OnboardingFlowConfig) *OnboardingFlow {
	if cfg.Nurse == nil {
		panic("flows: nurse service required")
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
	if cfg.UploadDelay == 0 {
		cfg.UploadDelay = DefaultUploadDelay
	}
	if cfg.VerifyDelay == 0 {
		cfg.VerifyDelay = DefaultFaceVerifyDelay
	}
	return &OnboardingFlow{
		idState:     UploadIdle,
		licState:    UploadIdle,
		captures:    make(map[CaptureDirection]bool),
		svc:         cfg.Nurse,
		clock:       cfg.Clock,
		notifier:    cfg.Notifier,
		navigator:   cfg.Navigator,
		logger:      cfg.Logger,
		uploadDelay: cfg.UploadDelay,
		verifyDelay: cfg.VerifyDelay,
	}
}

// IDUploadState returns the national ID step state.
func (f *OnboardingFlow) IDUploadState() UploadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idState
}

// LicenseUploadState returns the license step state.
func (f *OnboardingFlow) LicenseUploadState() UploadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.licState
}

// Verified reports whether face verification has completed.
func (f *OnboardingFlow) Verified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified
}

// UploadID starts the simulated national ID upload.
func (f *OnboardingFlow) UploadID(reference string) error {
	return f.startUpload(reference, &f.idState, &f.nationalID, "National ID uploaded")
}

// UploadLicense starts the simulated license upload. The ID step must
// be done first.
func (f *OnboardingFlow) UploadLicense(reference string) error {
	f.mu.Lock()
	ready := f.idState == UploadDone
	f.mu.Unlock()
	if !ready {
		return &ValidationError{Field: "license", Reason: "upload the national ID first"}
	}
	return f.startUpload(reference, &f.licState, &f.licenseID, "License uploaded")
}

func (f *OnboardingFlow) startUpload(reference string, state *UploadState, dest *string, doneTitle string) error {
	if reference == "" {
		return &ValidationError{Field: "document", Reason: "a document reference is required"}
	}

	f.mu.Lock()
	if *state == UploadInFlight {
		f.mu.Unlock()
		return &ValidationError{Field: "document", Reason: "an upload is already in flight"}
	}
	*state = UploadInFlight
	t := f.clock.AfterFunc(f.uploadDelay, func() {
		f.mu.Lock()
		*state = UploadDone
		*dest = reference
		f.mu.Unlock()
		f.notifier.Notify(ui.Notification{
			Title:    doneTitle,
			Severity: ui.SeveritySuccess,
		})
	})
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	return nil
}

// Capture records one directional face capture. Once all four are in,
// verification completes automatically after a short delay.
func (f *OnboardingFlow) Capture(dir CaptureDirection) error {
	switch dir {
	case CaptureFront, CaptureRight, CaptureLeft, CaptureUp:
	default:
		return &ValidationError{Field: "capture", Reason: "unknown capture direction"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.licState != UploadDone {
		return &ValidationError{Field: "capture", Reason: "upload your documents first"}
	}
	if f.captures[dir] {
		return nil
	}
	f.captures[dir] = true
	if len(f.captures) == 4 && !f.verified {
		t := f.clock.AfterFunc(f.verifyDelay, func() {
			f.mu.Lock()
			f.verified = true
			f.mu.Unlock()
			f.notifier.Notify(ui.Notification{
				Title:    "Face verification complete",
				Severity: ui.SeveritySuccess,
			})
		})
		f.timers = append(f.timers, t)
	}
	return nil
}

// CompleteRegistration submits the collected credentials and moves the
// nurse to their dashboard. Verification must have completed.
func (f *OnboardingFlow) CompleteRegistration(ctx context.Context) error {
	f.mu.Lock()
	if !f.verified {
		f.mu.Unlock()
		return &ValidationError{Field: "verification", Reason: "face verification is not complete"}
	}
	update := nurse.ProfileUpdate{
		NationalID:               f.nationalID,
		LicenseID:                f.licenseID,
		FaceVerificationComplete: true,
	}
	f.mu.Unlock()

	if _, err := f.svc.UpdateProfile(ctx, update); err != nil {
		f.notifier.Notify(ui.Notification{
			Title:       "Registration failed",
			Description: "Could not save your credentials. Please try again.",
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.notifier.Notify(ui.Notification{
		Title:    "Registration complete",
		Severity: ui.SeveritySuccess,
	})
	f.navigator.NavigateTo(ui.RouteNurseDashboard)
	return nil
}

// Stop releases outstanding upload and verification timers.
func (f *OnboardingFlow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
}
