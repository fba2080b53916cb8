// Package nurse implements the nurse-side operations: keeping the
// professional profile current, toggling availability and working
// incoming requests.
package nurse

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/pkg/logging"
)

var tracer = otel.Tracer("nurse24.internal.nurse")

// ProfileUpdate carries the nurse registration details gathered by the
// onboarding wizard.
type ProfileUpdate struct {
	Name                     string           `json:"name,omitempty"`
	Phone                    string           `json:"phone,omitempty"`
	NationalID               string           `json:"nationalId,omitempty"`
	LicenseID                string           `json:"licenseId,omitempty"`
	FaceVerificationComplete bool             `json:"faceVerificationComplete,omitempty"`
	ProfileImage             string           `json:"profileImage,omitempty"`
	Location                 *geo.Coordinates `json:"location,omitempty"`
}

// Service wraps the nurse endpoints.
type Service struct {
	client   *apiclient.Client
	sessions session.Store
	location geo.Provider
	logger   *logging.Logger
}

// NewService constructs a nurse service. A nil location provider means
// updates go out without coordinates.
func NewService(client *apiclient.Client, sessions session.Store, location geo.Provider, logger *logging.Logger) *Service {
	if client == nil {
		panic("nurse: api client required")
	}
	if sessions == nil {
		panic("nurse: session store required")
	}
	if location == nil {
		location = geo.Unavailable{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, sessions: sessions, location: location, logger: logger}
}

// currentPosition resolves the nurse's position, logging and returning
// nil when the provider fails. Location is an enrichment, not a
// precondition.
func (s *Service) currentPosition(ctx context.Context) *geo.Coordinates {
	pos, err := s.location.Current(ctx)
	if err != nil {
		s.logger.Warn("location unavailable, proceeding without coordinates", "error", err)
		return nil
	}
	return &pos
}

// UpdateProfile submits the nurse's professional details and merges
// the returned account into the session.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "nurse.update_profile")
	defer span.End()

	if u.Location == nil {
		u.Location = s.currentPosition(ctx)
	}

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodPost, "/nurse/profile", u, &acc); err != nil {
		s.logger.Error("failed to update nurse profile", "error", err)
		span.RecordError(err)
		return nil, err
	}
	if err := session.MergeAccount(ctx, s.sessions, &acc); err != nil {
		s.logger.Error("failed to merge nurse profile into session", "error", err)
		return nil, err
	}
	s.logger.Info("nurse profile updated")
	return &acc, nil
}

// SetAvailability flips the nurse on or off duty, attaching the
// current position when going available.
func (s *Service) SetAvailability(ctx context.Context, available bool) (*account.Account, error) {
	ctx, span := tracer.Start(ctx, "nurse.set_availability")
	defer span.End()

	body := struct {
		Available bool             `json:"available"`
		Location  *geo.Coordinates `json:"location,omitempty"`
	}{Available: available}
	if available {
		body.Location = s.currentPosition(ctx)
	}

	var acc account.Account
	if err := s.client.Do(ctx, http.MethodPost, "/nurse/availability", body, &acc); err != nil {
		s.logger.Error("failed to set availability", "error", err, "available", available)
		span.RecordError(err)
		return nil, err
	}
	if err := session.MergeAccount(ctx, s.sessions, &acc); err != nil {
		s.logger.Error("failed to merge availability into session", "error", err)
		return nil, err
	}
	s.logger.Info("availability updated", "available", available)
	return &acc, nil
}

// Requests lists open requests waiting for a nurse.
func (s *Service) Requests(ctx context.Context) ([]*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "nurse.requests")
	defer span.End()

	var reqs []*request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodGet, "/nurse/requests", nil, &reqs); err != nil {
		s.logger.Error("failed to fetch open requests", "error", err)
		span.RecordError(err)
		return nil, err
	}
	return reqs, nil
}

// RequestHistory lists the requests this nurse worked to completion.
func (s *Service) RequestHistory(ctx context.Context) ([]*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "nurse.request_history")
	defer span.End()

	var reqs []*request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodGet, "/nurse/request-history", nil, &reqs); err != nil {
		s.logger.Error("failed to fetch request history", "error", err)
		span.RecordError(err)
		return nil, err
	}
	return reqs, nil
}

// AcceptRequest claims an open request, reporting the nurse's position
// so the patient can track the approach.
func (s *Service) AcceptRequest(ctx context.Context, id string) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "nurse.accept_request")
	defer span.End()

	body := struct {
		Location *geo.Coordinates `json:"location,omitempty"`
	}{Location: s.currentPosition(ctx)}

	var req request.ServiceRequest
	path := fmt.Sprintf("/nurse/requests/%s/accept", id)
	if err := s.client.Do(ctx, http.MethodPost, path, body, &req); err != nil {
		if apiclient.IsConflict(err) {
			s.logger.Warn("request already claimed", "request_id", id)
		} else {
			s.logger.Error("failed to accept request", "error", err, "request_id", id)
		}
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("request accepted", "request_id", req.ID)
	return &req, nil
}

// CompleteService marks an accepted request as finished.
func (s *Service) CompleteService(ctx context.Context, id string) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "nurse.complete_service")
	defer span.End()

	var req request.ServiceRequest
	path := fmt.Sprintf("/nurse/requests/%s/complete", id)
	if err := s.client.Do(ctx, http.MethodPost, path, nil, &req); err != nil {
		s.logger.Error("failed to complete request", "error", err, "request_id", id)
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("service completed", "request_id", req.ID)
	return &req, nil
}
