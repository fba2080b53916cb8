// Package mockapi emulates the minimum REST surface the client needs,
// in memory and in process, for development without a real server. It
// covers just enough of the API and fails loudly (501) on everything
// else so missing coverage is visible rather than masked.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/pkg/logging"
)

// defaultLatency approximates a round trip to a real server.
const defaultLatency = 500 * time.Millisecond

type ctxKey string

const claimsKey ctxKey = "mockapi.claims"

// Config configures the mock backend.
type Config struct {
	// Latency applied before every response. Zero uses the default;
	// negative disables the delay.
	Latency time.Duration
	// JWTSecret signs the minted tokens.
	JWTSecret string
	Clock     clock.Clock
	Logger    *logging.Logger
}

// Server is the mock backend dispatcher: an enumerated route table
// over the in-memory store.
type Server struct {
	db      *store
	router  chi.Router
	clock   clock.Clock
	latency time.Duration
	secret  []byte
	logger  *logging.Logger
}

// NewServer creates a seeded mock backend.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ck := cfg.Clock
	if ck == nil {
		ck = clock.New()
	}
	latency := cfg.Latency
	if latency == 0 {
		latency = defaultLatency
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "nurse24-dev-secret"
	}

	s := &Server{
		db:      newStore(),
		clock:   ck,
		latency: latency,
		secret:  []byte(secret),
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the mock as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// routes enumerates every (method, pattern) pair the mock implements.
// Anything else falls through to the 501 handler on purpose.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.simulateLatency)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/user/profile", s.handleGetProfile)
		r.Post("/user/profile", s.handleUpdateProfile)
		r.Put("/user/complete-profile", s.handleCompleteProfile)
		r.Post("/user/upload-profile-image", s.handleUploadImage)

		r.Post("/nurse/profile", s.handleNurseProfile)
		r.Post("/nurse/availability", s.handleAvailability)
		r.Get("/nurse/requests", s.handleNurseRequests)
		r.Get("/nurse/request-history", s.handleNurseHistory)
		r.Post("/nurse/requests/{id}/accept", s.handleAcceptRequest)
		r.Post("/nurse/requests/{id}/complete", s.handleCompleteRequest)

		r.Post("/patient/request-service", s.handleRequestService)
		r.Get("/patient/current-request", s.handleCurrentRequest)
		r.Get("/patient/request-history", s.handlePatientHistory)
		r.Post("/patient/payment", s.handlePayment)
		r.Post("/patient/rating", s.handleRating)
	})

	r.NotFound(s.handleUnimplemented)
	r.MethodNotAllowed(s.handleUnimplemented)
	return r
}

// simulateLatency delays every response by the configured fixed amount,
// through the shared clock so tests are not slowed down.
func (s *Server) simulateLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			if err := s.clock.Sleep(r.Context(), s.latency); err != nil {
				s.writeError(w, http.StatusServiceUnavailable, "Request cancelled")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireToken rejects requests without a valid bearer token and puts
// the token claims on the context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c, err := s.parseToken(raw)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, c)))
	})
}

func claimsFrom(ctx context.Context) *claims {
	c, _ := ctx.Value(claimsKey).(*claims)
	return c
}

func (s *Server) handleUnimplemented(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("mock backend has no handler", "method", r.Method, "path", r.URL.Path)
	s.writeError(w, http.StatusNotImplemented, "Endpoint not implemented in mock backend")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode mock response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// authPayload is the login/register response shape.
type authPayload struct {
	Token string           `json:"token"`
	User  *account.Account `json:"user"`
	Role  account.Role     `json:"userType"`
}
