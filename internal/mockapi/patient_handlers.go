package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/request"
)

func (s *Server) handleRequestService(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PatientName string              `json:"patientName"`
		PatientAge  string              `json:"patientAge"`
		Address     string              `json:"address"`
		ServiceType request.ServiceType `json:"serviceType"`
		Details     string              `json:"details"`
		Coordinates *geo.Coordinates    `json:"coordinates,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if body.PatientName == "" || body.PatientAge == "" || body.Address == "" || body.Details == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if body.ServiceType == "" {
		body.ServiceType = request.ServicePrescribed
	}

	req := s.db.createRequest(&request.ServiceRequest{
		PatientName: body.PatientName,
		PatientAge:  body.PatientAge,
		Address:     body.Address,
		ServiceType: body.ServiceType,
		Details:     body.Details,
		Coordinates: body.Coordinates,
	}, s.clock.Now())
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCurrentRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.db.currentRequest()
	if !ok {
		s.writeError(w, http.StatusNotFound, "No active request")
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	reqs := s.db.historyRequests()
	if reqs == nil {
		reqs = []*request.ServiceRequest{}
	}
	s.writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID         string                `json:"requestId"`
		Method            request.PaymentMethod `json:"method"`
		TransactionNumber string                `json:"transactionNumber,omitempty"`
		Amount            string                `json:"amount,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if !body.Method.Valid() {
		s.writeError(w, http.StatusBadRequest, "Unknown payment method")
		return
	}
	if body.Method.Electronic() && (body.TransactionNumber == "" || body.Amount == "") {
		s.writeError(w, http.StatusBadRequest, "Missing payment details")
		return
	}

	req, err := s.db.payRequest(body.RequestID)
	if errors.Is(err, errRequestNotFound) {
		s.writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not record payment")
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		s.writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	req, err := s.db.rateRequest(body.RequestID, body.Rating)
	if errors.Is(err, errRequestNotFound) {
		s.writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not record rating")
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}
