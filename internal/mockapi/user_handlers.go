package mockapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	// No session table here: the profile is looked up by the token's
	// role claim, so the mock supports one active session per role.
	acc, ok := s.db.firstByRole(c.Role)
	if !ok {
		s.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s.mergeProfile(w, r, false)
}

func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	s.mergeProfile(w, r, true)
}

func (s *Server) mergeProfile(w http.ResponseWriter, r *http.Request, complete bool) {
	c := claimsFrom(r.Context())
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	acc, err := s.db.mergeByRole(c.Role, patch, complete)
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

// handleUploadImage always succeeds with a fresh placeholder URL; no
// bytes are kept.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"imageUrl": avatarURL(uuid.NewString()),
	})
}
