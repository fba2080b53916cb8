package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/request"
)

func (s *Server) handleNurseProfile(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	acc, err := s.db.mergeByRole(account.RoleNurse, patch, false)
	if errors.Is(err, errAccountNotFound) {
		s.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	s.writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Available bool             `json:"available"`
		Location  *geo.Coordinates `json:"location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	patch := map[string]any{"availabilityStatus": body.Available}
	if body.Location != nil {
		patch["location"] = body.Location
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not update availability")
		return
	}

	acc, err := s.db.mergeByRole(account.RoleNurse, raw, false)
	if errors.Is(err, errAccountNotFound) {
		s.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not update availability")
		return
	}
	s.writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleNurseRequests(w http.ResponseWriter, r *http.Request) {
	reqs := s.db.openRequests()
	if reqs == nil {
		reqs = []*request.ServiceRequest{}
	}
	s.writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleNurseHistory(w http.ResponseWriter, r *http.Request) {
	reqs := s.db.historyRequests()
	if reqs == nil {
		reqs = []*request.ServiceRequest{}
	}
	s.writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	var body struct {
		Location *geo.Coordinates `json:"location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	req, err := s.db.acceptRequest(chi.URLParam(r, "id"), c.Subject, body.Location)
	if errors.Is(err, errRequestNotFound) {
		s.writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if errors.Is(err, errBadTransition) {
		s.writeError(w, http.StatusConflict, "Request already matched")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not accept request")
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.db.completeRequest(chi.URLParam(r, "id"))
	if errors.Is(err, errRequestNotFound) {
		s.writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	if errors.Is(err, errBadTransition) {
		s.writeError(w, http.StatusConflict, "Request is not in progress")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not complete request")
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}
