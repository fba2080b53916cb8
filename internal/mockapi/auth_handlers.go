package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/nurse24/platform/internal/account"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	acc, ok := s.db.authenticate(body.Email, body.Password)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.mintToken(acc, s.clock.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	s.writeJSON(w, http.StatusOK, authPayload{Token: token, User: acc, Role: acc.Role})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string       `json:"email"`
		Password string       `json:"password"`
		Role     account.Role `json:"userType"`
		Name     string       `json:"name"`
		Phone    string       `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if !body.Role.Valid() {
		s.writeError(w, http.StatusBadRequest, "Unknown user type")
		return
	}

	acc, err := s.db.register(body.Email, body.Password, body.Role, body.Name, body.Phone)
	if err != nil {
		s.writeError(w, http.StatusConflict, "User with this email already exists")
		return
	}

	token, err := s.mintToken(acc, s.clock.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	s.writeJSON(w, http.StatusOK, authPayload{Token: token, User: acc, Role: acc.Role})
}
