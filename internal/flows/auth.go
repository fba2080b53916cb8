package flows

import (
	"context"
	"sync"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/auth"
	"github.com/nurse24/platform/internal/ui"
	"github.com/nurse24/platform/pkg/logging"
)

// AuthState tracks an authentication attempt.
type AuthState string

const (
	AuthIdle       AuthState = "idle"
	AuthSubmitting AuthState = "submitting"
	AuthSuccess    AuthState = "success"
	AuthFailed     AuthState = "failed"
)

// RegistrationForm is the sign-up input as the user typed it.
type RegistrationForm struct {
	Name            string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
	Role            account.Role
}

// AuthFlow drives login and registration, including the post-auth
// routing decision. It distinguishes a fresh registration from a
// resumed login explicitly instead of inferring it from control flow.
type AuthFlow struct {
	mu    sync.Mutex
	state AuthState

	svc       *auth.Service
	notifier  ui.Notifier
	navigator ui.Navigator
	logger    *logging.Logger
}

// AuthFlowConfig wires an AuthFlow.
type AuthFlowConfig struct {
	Auth      *auth.Service
	Notifier  ui.Notifier
	Navigator ui.Navigator
	Logger    *logging.Logger
}

// NewAuthFlow constructs an idle auth flow.
func NewAuthFlow(cfg AuthFlowConfig) *AuthFlow {
	if cfg.Auth == nil {
		panic("flows: auth service required")
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
	return &AuthFlow{
		state:     AuthIdle,
		svc:       cfg.Auth,
		notifier:  cfg.Notifier,
		navigator: cfg.Navigator,
		logger:    cfg.Logger,
	}
}

// State returns the current attempt state.
func (f *AuthFlow) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// begin moves Idle or Failed to Submitting. A second submit while one
// is in flight is refused, mirroring the disabled submit control.
func (f *AuthFlow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == AuthSubmitting {
		return false
	}
	f.state = AuthSubmitting
	return true
}

func (f *AuthFlow) finish(state AuthState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// Login authenticates and routes according to role and profile
// completeness.
func (f *AuthFlow) Login(ctx context.Context, role account.Role, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		f.reject(err)
		return err
	}
	if !f.begin() {
		return &ValidationError{Field: "submit", Reason: "a submission is already in flight"}
	}

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: email, Password: password})
	if err != nil {
		f.finish(AuthFailed)
		f.notifier.Notify(ui.Notification{
			Title:       "Login failed",
			Description: apiclient.UserMessage(err, "Something went wrong. Please try again."),
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.finish(AuthSuccess)
	// The response's role is authoritative; the login page's role is
	// the fallback for backends that omit it.
	if resp.Role.Valid() {
		role = resp.Role
	}
	f.routeAfterLogin(ctx, role)
	return nil
}

// Register creates the account and routes the new user into either
// profile completion or the dashboard.
func (f *AuthFlow) Register(ctx context.Context, form RegistrationForm) error {
	if err := validateRegistration(form); err != nil {
		f.reject(err)
		return err
	}
	if !f.begin() {
		return &ValidationError{Field: "submit", Reason: "a submission is already in flight"}
	}

	resp, err := f.svc.Register(ctx, auth.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
		Name:     form.Name,
		Phone:    form.Phone,
	})
	if err != nil {
		f.finish(AuthFailed)
		f.notifier.Notify(ui.Notification{
			Title:       "Registration failed",
			Description: apiclient.UserMessage(err, "Something went wrong. Please try again."),
			Severity:    ui.SeverityError,
		})
		return err
	}

	f.finish(AuthSuccess)
	f.routeAfterRegistration(form.Role, resp)
	return nil
}

// routeAfterRegistration decides the first view for a brand new
// account. The freshly created account is authoritative here; the
// profile endpoint is not consulted.
func (f *AuthFlow) routeAfterRegistration(role account.Role, resp *auth.Response) {
	// A new nurse always goes through credential upload.
	if role == account.RoleNurse {
		f.navigator.NavigateTo(ui.RouteNurseRegisterInfo)
		return
	}
	if resp.User != nil && !resp.User.ProfileComplete {
		f.navigator.NavigateTo(ui.RoutePatientCompleteProfile)
		return
	}
	f.navigator.NavigateTo(ui.RoutePatientDashboard)
}

// routeAfterLogin checks profile completeness and routes accordingly.
// A failed check falls back to the dashboard rather than blocking the
// login.
func (f *AuthFlow) routeAfterLogin(ctx context.Context, role account.Role) {
	acc, err := f.svc.GetProfile(ctx)
	if err != nil {
		f.logger.Warn("profile check failed after login, falling back", "error", err)
		if role == account.RoleNurse {
			f.navigator.NavigateTo(ui.RouteNurseDashboard)
		} else {
			f.navigator.NavigateTo(ui.RoutePatientDashboard)
		}
		return
	}

	switch {
	case role == account.RoleNurse && !acc.ProfileComplete:
		// Resume incomplete onboarding.
		f.navigator.NavigateTo(ui.RouteNurseRegisterInfo)
	case role == account.RoleNurse:
		f.navigator.NavigateTo(ui.RouteNurseDashboard)
	default:
		f.navigator.NavigateTo(ui.RoutePatientDashboard)
	}
}

func (f *AuthFlow) reject(err error) {
	f.notifier.Notify(ui.Notification{
		Title:       "Check your details",
		Description: err.Error(),
		Severity:    ui.SeverityError,
	})
}

func validateLogin(email, password string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "password is required"}
	}
	return nil
}

// validateRegistration checks the form fields in the order the sign-up
// page surfaces them: terms, password match, password length, name,
// phone.
func validateRegistration(form RegistrationForm) error {
	if !form.TermsAccepted {
		return &ValidationError{Field: "terms", Reason: "terms and conditions must be accepted"}
	}
	if form.Password != form.ConfirmPassword {
		return &ValidationError{Field: "password", Reason: "passwords do not match"}
	}
	if len(form.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	if form.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if form.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "phone number is required"}
	}
	if form.Email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !form.Role.Valid() {
		return &ValidationError{Field: "userType", Reason: "unknown account role"}
	}
	return nil
}
