package mockapi

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/request"
)

var (
	errEmailTaken      = errors.New("mockapi: email already registered")
	errAccountNotFound = errors.New("mockapi: account not found")
	errRequestNotFound = errors.New("mockapi: request not found")
	errBadTransition   = errors.New("mockapi: invalid request transition")
)

// storedAccount pairs an account with its password. The password lives
// outside the Account struct so it can never leak into a response.
type storedAccount struct {
	acc      *account.Account
	password string
}

// store is the in-memory state behind the mock backend: a user list and
// the requests created this session. It exists to unblock development,
// not to model a real backend.
type store struct {
	mu       sync.Mutex
	accounts []*storedAccount
	requests []*request.ServiceRequest
}

// newStore seeds the store with the well-known development test users.
func newStore() *store {
	return &store{
		accounts: []*storedAccount{
			{
				password: "password123",
				acc: &account.Account{
					ID:                "test123",
					Email:             "test@example.com",
					Role:              account.RolePatient,
					Name:              "Test User",
					Phone:             "+1234567890",
					DateOfBirth:       "1990-01-01",
					Gender:            "female",
					Address:           "123 Test Street, Test City",
					EmergencyContact:  "+10987654321",
					BloodType:         "A+",
					MedicalConditions: []string{"Asthma"},
					Allergies:         []string{"Pollen"},
					ProfileComplete:   true,
					ProfileImage:      avatarURL("test@example.com"),
				},
			},
			{
				password: "password123",
				acc: &account.Account{
					ID:              "nurse123",
					Email:           "nurse@example.com",
					Role:            account.RoleNurse,
					Name:            "Nurse Test",
					Phone:           "+1234567891",
					Address:         "456 Nurse Street, Test City",
					ProfileComplete: true,
					ProfileImage:    avatarURL("nurse@example.com"),
				},
			},
		},
	}
}

func avatarURL(seed string) string {
	return "https://i.pravatar.cc/300?u=" + seed
}

// authenticate returns the account matching email+password exactly.
func (s *store) authenticate(email, password string) (*account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.accounts {
		if stored.acc.Email == email && stored.password == password {
			return stored.acc.Clone(), true
		}
	}
	return nil, false
}

// register creates a new incomplete account, rejecting duplicate emails.
func (s *store) register(email, password string, role account.Role, name, phone string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.accounts {
		if stored.acc.Email == email {
			return nil, errEmailTaken
		}
	}

	acc := &account.Account{
		ID:              "user_" + uuid.NewString(),
		Email:           email,
		Role:            role,
		Name:            name,
		Phone:           phone,
		ProfileComplete: false,
		ProfileImage:    avatarURL(email),
	}
	s.accounts = append(s.accounts, &storedAccount{acc: acc, password: password})
	return acc.Clone(), nil
}

// firstByRole returns the first stored account with the given role.
// The mock has no session table, so token identity is reduced to the
// token's role claim: one active session per role.
func (s *store) firstByRole(role account.Role) (*account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.accounts {
		if stored.acc.Role == role {
			return stored.acc.Clone(), true
		}
	}
	return nil, false
}

// mergeByRole shallow-merges the raw JSON patch into the first account
// of the given role. complete forces profileComplete to true.
func (s *store) mergeByRole(role account.Role, patch json.RawMessage, complete bool) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.accounts {
		if stored.acc.Role != role {
			continue
		}
		merged, err := account.MergeJSON(stored.acc, patch)
		if err != nil {
			return nil, err
		}
		// Identity fields are not client-writable.
		merged.ID = stored.acc.ID
		merged.Email = stored.acc.Email
		merged.Role = stored.acc.Role
		if complete {
			merged.ProfileComplete = true
		}
		stored.acc = merged
		return merged.Clone(), nil
	}
	return nil, errAccountNotFound
}

func (s *store) createRequest(req *request.ServiceRequest, now time.Time) *request.ServiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = "req_" + uuid.NewString()
	req.Status = request.StatusRequested
	req.CreatedAt = now
	s.requests = append(s.requests, req)
	return cloneRequest(req)
}

// currentRequest is the most recent request that has not been rated out.
func (s *store) currentRequest() (*request.ServiceRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Status != request.StatusRated {
			return cloneRequest(s.requests[i]), true
		}
	}
	return nil, false
}

// openRequests lists requests still waiting for a nurse.
func (s *store) openRequests() []*request.ServiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*request.ServiceRequest
	for _, r := range s.requests {
		if r.Status == request.StatusRequested {
			out = append(out, cloneRequest(r))
		}
	}
	return out
}

// historyRequests lists requests that reached completion.
func (s *store) historyRequests() []*request.ServiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*request.ServiceRequest
	for _, r := range s.requests {
		if r.Status == request.StatusCompleted || r.Status == request.StatusRated {
			out = append(out, cloneRequest(r))
		}
	}
	return out
}

func (s *store) acceptRequest(id, nurseID string, loc *geo.Coordinates) (*request.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.findRequest(id)
	if err != nil {
		return nil, err
	}
	if r.Status != request.StatusRequested {
		return nil, errBadTransition
	}
	r.Status = request.StatusMatched
	r.NurseID = nurseID
	if loc != nil {
		// The accepting nurse's position also updates the volatile
		// account location.
		for _, stored := range s.accounts {
			if stored.acc.ID == nurseID {
				pos := *loc
				stored.acc.Location = &pos
			}
		}
	}
	return cloneRequest(r), nil
}

func (s *store) completeRequest(id string) (*request.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.findRequest(id)
	if err != nil {
		return nil, err
	}
	if r.Status != request.StatusMatched && r.Status != request.StatusInProgress {
		return nil, errBadTransition
	}
	r.Status = request.StatusCompleted
	return cloneRequest(r), nil
}

func (s *store) payRequest(id string) (*request.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.findRequest(id)
	if err != nil {
		return nil, err
	}
	r.Paid = true
	return cloneRequest(r), nil
}

func (s *store) rateRequest(id string, rating int) (*request.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.findRequest(id)
	if err != nil {
		return nil, err
	}
	r.Rating = rating
	r.Status = request.StatusRated
	return cloneRequest(r), nil
}

// findRequest resolves a request by id; the caller must hold the lock.
// An empty id means "the current request", matching the UI's single
// active request.
func (s *store) findRequest(id string) (*request.ServiceRequest, error) {
	if id == "" {
		for i := len(s.requests) - 1; i >= 0; i-- {
			if s.requests[i].Status != request.StatusRated {
				return s.requests[i], nil
			}
		}
		return nil, errRequestNotFound
	}
	for _, r := range s.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errRequestNotFound
}

func cloneRequest(r *request.ServiceRequest) *request.ServiceRequest {
	out := *r
	if r.Coordinates != nil {
		pos := *r.Coordinates
		out.Coordinates = &pos
	}
	return &out
}
