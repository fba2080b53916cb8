// Package profile implements profile completion and avatar upload.
package profile

import (
	"context"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/pkg/logging"
)

var tracer = otel.Tracer("nurse24.internal.profile")

// Completion is the payload of the profile completion step.
type Completion struct {
	Name              string   `json:"name,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	DateOfBirth       string   `json:"dateOfBirth,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	Address           string   `json:"address,omitempty"`
	EmergencyContact  string   `json:"emergencyContact,omitempty"`
	BloodType         string   `json:"bloodType,omitempty"`
	MedicalConditions []string `json:"medicalConditions,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	ProfileImage      string   `json:"profileImage,omitempty"`
}

// Service wraps the user profile endpoints.
type Service struct {
	client   *apiclient.Client
	sessions session.Store
	logger   *logging.Logger
}

// NewService constructs a profile service.
func NewService(client *apiclient.Client, sessions session.Store, logger *logging.Logger) *Service {
	if client == nil {
		panic("profile: api client required")
	}
	if sessions == nil {
		panic("profile: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, sessions: sessions, logger: logger}
}

// Get fetches the current profile and refreshes the cached account.
func (s *Service) Get(ctx context.Context) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "profile.get")
	defer span.End()

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodGet, "/user/profile", nil, &acc); err != nil {
		s.logger.Error("failed to get profile", "error", err)
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

// Complete finalizes the profile. On success the cached account is
// merged with the response and profileComplete is guaranteed true.
func (s *Service) Complete(ctx context.Context, c Completion) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "profile.complete")
	defer span.End()

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodPut, "/user/complete-profile", c, &acc); err != nil {
		s.logger.Error("failed to complete profile", "error", err)
		span.RecordError(err)
		return nil, err
	}
	acc.ProfileComplete = true

	if err := session.MergeAccount(ctx, s.sessions, &acc); err != nil {
		s.logger.Error("failed to merge completed profile into session", "error", err)
		return nil, err
	}
	s.logger.Info("profile completed")
	return &acc, nil
}

// UploadImage uploads an avatar and returns its URL. No session sync:
// callers put the URL into the completion payload themselves.
func (s *Service) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "profile.upload_image")
	defer span.End()

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := s.client.Upload(ctx, "/user/upload-profile-image", "profileImage", filename, file, &out); err != nil {
		s.logger.Error("failed to upload profile image", "error", err)
		span.RecordError(err)
		return "", err
	}
	return out.ImageURL, nil
}
