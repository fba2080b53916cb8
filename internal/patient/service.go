// Package patient implements the patient-side operations: requesting a
// visit, tracking it, paying for it and rating it.
package patient

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/pkg/logging"
)

var tracer = otel.Tracer("nurse24.internal.patient")

// ServiceRequestInput is the form a patient submits to call a nurse.
type ServiceRequestInput struct {
	PatientName string              `json:"patientName"`
	PatientAge  string              `json:"patientAge"`
	Address     string              `json:"address"`
	ServiceType request.ServiceType `json:"serviceType"`
	Details     string              `json:"details"`
	Coordinates *geo.Coordinates    `json:"coordinates,omitempty"`
}

// Payment records how a completed visit was paid.
type Payment struct {
	RequestID         string                `json:"requestId"`
	Method            request.PaymentMethod `json:"method"`
	TransactionNumber string                `json:"transactionNumber,omitempty"`
	Amount            string                `json:"amount,omitempty"`
}

// Rating scores a completed visit from 1 to 5.
type Rating struct {
	RequestID string `json:"requestId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

// Service wraps the patient endpoints.
type Service struct {
	client   *apiclient.Client
	location geo.Provider
	logger   *logging.Logger
}

// NewService constructs a patient service. A nil location provider
// means requests go out without coordinates.
func NewService(client *apiclient.Client, location geo.Provider, logger *logging.Logger) *Service {
	if client == nil {
		panic("patient: api client required")
	}
	if location == nil {
		location = geo.Unavailable{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, location: location, logger: logger}
}

// RequestService submits a new visit request. The caller's position is
// attached when the provider resolves in time; a location failure is
// logged and the request goes out without coordinates.
func (s *Service) RequestService(ctx context.Context, in ServiceRequestInput) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "patient.request_service")
	defer span.End()

	if in.Coordinates == nil {
		pos, err := s.location.Current(ctx)
		if err != nil {
			s.logger.Warn("location unavailable, requesting without coordinates", "error", err)
		} else {
			in.Coordinates = &pos
		}
	}

	var req request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodPost, "/patient/request-service", in, &req); err != nil {
		s.logger.Error("failed to request service", "error", err)
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("service requested", "request_id", req.ID, "service_type", req.ServiceType)
	return &req, nil
}

// CurrentRequest returns the active request, or a 404 API error when
// there is none.
func (s *Service) CurrentRequest(ctx context.Context) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "patient.current_request")
	defer span.End()

	var req request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodGet, "/patient/current-request", nil, &req); err != nil {
		if !apiclient.IsNotFound(err) {
			s.logger.Error("failed to fetch current request", "error", err)
		}
		span.RecordError(err)
		return nil, err
	}
	return &req, nil
}

// RequestHistory lists the patient's completed and rated requests.
func (s *Service) RequestHistory(ctx context.Context) ([]*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "patient.request_history")
	defer span.End()

	var reqs []*request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodGet, "/patient/request-history", nil, &reqs); err != nil {
		s.logger.Error("failed to fetch request history", "error", err)
		span.RecordError(err)
		return nil, err
	}
	return reqs, nil
}

// SubmitPayment records the payment for a visit.
func (s *Service) SubmitPayment(ctx context.Context, p Payment) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "patient.submit_payment")
	defer span.End()

	var req request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodPost, "/patient/payment", p, &req); err != nil {
		s.logger.Error("failed to submit payment", "error", err, "method", p.Method)
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("payment recorded", "request_id", req.ID, "method", p.Method)
	return &req, nil
}

// SubmitRating records the rating for a visit, closing it out.
func (s *Service) SubmitRating(ctx context.Context, r Rating) (*request.ServiceRequest, error) {
	ctx, span := tracer.Start(ctx, "patient.submit_rating")
	defer span.End()

	var req request.ServiceRequest
	if err := s.client.Do(ctx, http.MethodPost, "/patient/rating", r, &req); err != nil {
		s.logger.Error("failed to submit rating", "error", err)
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("rating recorded", "request_id", req.ID, "rating", r.Rating)
	return &req, nil
}
