// Package auth implements login, registration and the session-backed
// account cache on top of the API client.
package auth

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/pkg/logging"
)

var tracer = otel.Tracer("nurse24.internal.auth")

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     account.Role `json:"userType"`
	Name     string       `json:"name,omitempty"`
	Phone    string       `json:"phone,omitempty"`
}

// Response is the payload of a successful login or registration.
type Response struct {
	Token string           `json:"token"`
	User  *account.Account `json:"user"`
	Role  account.Role     `json:"userType"`
}

// ProfileUpdate is the partial profile sent to POST /user/profile.
type ProfileUpdate struct {
	Email           string       `json:"email,omitempty"`
	Role            account.Role `json:"userType,omitempty"`
	Name            string       `json:"name,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	Address         string       `json:"address,omitempty"`
	ProfileComplete bool         `json:"profileComplete"`
}

// Service is the authentication façade. It is stateless; all session
// state lives in the injected store.
type Service struct {
	client   *apiclient.Client
	sessions session.Store
	logger   *logging.Logger
}

// NewService constructs an auth service.
func NewService(client *apiclient.Client, sessions session.Store, logger *logging.Logger) *Service {
	if client == nil {
		panic("auth: api client required")
	}
	if sessions == nil {
		panic("auth: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, sessions: sessions, logger: logger}
}

// Login exchanges credentials for a token and caches the session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Response, error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()
	span.SetAttributes(attribute.String("nurse24.email", req.Email))

	var resp Response
	if err := s.client.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		s.logger.Error("login failed", "email", req.Email, "error", err)
		span.RecordError(err)
		return nil, err
	}

	if resp.Token != "" {
		if err := s.sessions.Save(ctx, session.Snapshot{
			Token:   resp.Token,
			Role:    resp.Role,
			Account: resp.User,
		}); err != nil {
			s.logger.Error("failed to cache session after login", "error", err)
			return nil, err
		}
	}
	s.logger.Info("login successful", "email", req.Email, "role", resp.Role)
	return &resp, nil
}

// Register creates an account, caches the session, and best-effort
// creates the initial profile with the name and phone from the form.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()
	span.SetAttributes(
		attribute.String("nurse24.email", req.Email),
		attribute.String("nurse24.role", string(req.Role)),
	)

	var resp Response
	if err := s.client.Do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		s.logger.Error("registration failed", "email", req.Email, "error", err)
		span.RecordError(err)
		return nil, err
	}

	if resp.Token != "" {
		if err := s.sessions.Save(ctx, session.Snapshot{
			Token:   resp.Token,
			Role:    req.Role,
			Account: resp.User,
		}); err != nil {
			s.logger.Error("failed to cache session after registration", "error", err)
			return nil, err
		}

		// The initial profile carries the name and phone over. Failure
		// here never fails the registration itself.
		if _, err := s.CreateProfile(ctx, ProfileUpdate{
			Email: req.Email,
			Role:  req.Role,
			Name:  req.Name,
			Phone: req.Phone,
		}); err != nil {
			s.logger.Error("failed to create initial profile", "email", req.Email, "error", err)
		}
	}
	s.logger.Info("registration successful", "email", req.Email, "role", req.Role)
	return &resp, nil
}

// CreateProfile merges profile fields server-side and syncs the cache.
func (s *Service) CreateProfile(ctx context.Context, update ProfileUpdate) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "auth.create_profile")
	defer span.End()

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodPost, "/user/profile", update, &acc); err != nil {
		s.logger.Error("create profile failed", "error", err)
		span.RecordError(err)
		return nil, err
	}
	if err := session.MergeAccount(ctx, s.sessions, &acc); err != nil {
		s.logger.Error("failed to merge profile into session", "error", err)
		return nil, err
	}
	return &acc, nil
}

// GetProfile fetches the current account and refreshes the cache.
func (s *Service) GetProfile(ctx context.Context) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "auth.get_profile")
	defer span.End()

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodGet, "/user/profile", nil, &acc); err != nil {
		s.logger.Error("get profile failed", "error", err)
		span.RecordError(err)
		return nil, err
	}

	snap, err := s.sessions.Load(ctx)
	if err == nil {
		snap.Account = &acc
		if err := s.sessions.Save(ctx, snap); err != nil {
			s.logger.Error("failed to refresh cached account", "error", err)
			return nil, err
		}
	}
	return &acc, nil
}

// Logout clears the cached session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session on logout", "error", err)
		return err
	}
	s.logger.Info("logged out")
	return nil
}

// CurrentUser returns the cached account snapshot, if any.
func (s *Service) CurrentUser(ctx context.Context) (*account.Account, error) {
	snap, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Account, nil
}

// IsAuthenticated reports whether a token is cached.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	snap, err := s.sessions.Load(ctx)
	return err == nil && snap.Token != ""
}
