package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/request"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(Config{Latency: -1})
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func login(t *testing.T, s *Server, email, password string) authPayload {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[authPayload](t, rec)
}

func TestLoginSuccessStripsPassword(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode[authPayload](t, rec)
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, account.RolePatient, payload.Role)
	assert.Equal(t, "test@example.com", payload.User.Email)
	assert.NotContains(t, rec.Body.String(), "password123")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), `"password"`)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestRegisterDuplicateEmailAddsNothing(t *testing.T) {
	s := newTestServer(t)
	before := len(s.db.accounts)

	rec := do(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "test@example.com", "password": "abcdef", "userType": "patient",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, before, len(s.db.accounts))
}

func TestRegisterNewAccount(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "new@x.com", "password": "abcdef", "userType": "patient",
		"name": "New Patient", "phone": "+201000000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode[authPayload](t, rec)
	assert.NotEmpty(t, payload.Token)
	assert.False(t, payload.User.ProfileComplete)
	assert.Equal(t, "New Patient", payload.User.Name)
	assert.Contains(t, payload.User.ProfileImage, "new@x.com")
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/user/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfileReturnsAccountOfTokenRole(t *testing.T) {
	s := newTestServer(t)
	patient := login(t, s, "test@example.com", "password123")
	nurse := login(t, s, "nurse@example.com", "password123")

	rec := do(t, s, http.MethodGet, "/user/profile", patient.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test@example.com", decode[*account.Account](t, rec).Email)

	rec = do(t, s, http.MethodGet, "/user/profile", nurse.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nurse@example.com", decode[*account.Account](t, rec).Email)
}

func TestCompleteProfileMergesAndSetsFlag(t *testing.T) {
	s := newTestServer(t)
	payload := do(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "new@x.com", "password": "abcdef", "userType": "patient",
		"name": "New Patient", "phone": "+201000000000",
	})
	require.Equal(t, http.StatusOK, payload.Code)
	token := decode[authPayload](t, payload).Token

	rec := do(t, s, http.MethodPut, "/user/complete-profile", token, map[string]any{
		"dateOfBirth": "1999-05-04",
		"gender":      "male",
		"address":     "12 Tahrir Sq, Cairo",
		"bloodType":   "O-",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	acc := decode[*account.Account](t, rec)
	assert.True(t, acc.ProfileComplete)
	assert.Equal(t, "1999-05-04", acc.DateOfBirth)
	// Merge, not replace.
	assert.Equal(t, "New Patient", acc.Name)
	assert.Equal(t, "+201000000000", acc.Phone)
}

func TestUpdateProfileCannotRewriteIdentity(t *testing.T) {
	s := newTestServer(t)
	payload := login(t, s, "test@example.com", "password123")

	rec := do(t, s, http.MethodPost, "/user/profile", payload.Token, map[string]any{
		"id": "evil", "email": "evil@x.com", "name": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	acc := decode[*account.Account](t, rec)
	assert.Equal(t, "test123", acc.ID)
	assert.Equal(t, "test@example.com", acc.Email)
	assert.Equal(t, "Renamed", acc.Name)
}

func TestUploadImageAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t)
	payload := login(t, s, "test@example.com", "password123")

	rec := do(t, s, http.MethodPost, "/user/upload-profile-image", payload.Token, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]string](t, rec)
	assert.Contains(t, out["imageUrl"], "https://i.pravatar.cc/300?u=")
}

func TestUnknownRouteFailsClosed(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/auth/reset-password", "", map[string]string{})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "not implemented")

	// Wrong method on a known path fails closed too.
	rec = do(t, s, http.MethodDelete, "/auth/login", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	patient := login(t, s, "test@example.com", "password123")
	nurse := login(t, s, "nurse@example.com", "password123")

	// Patient submits a request.
	rec := do(t, s, http.MethodPost, "/patient/request-service", patient.Token, map[string]any{
		"patientName": "Ahmed Hassan",
		"patientAge":  "45",
		"address":     "123 El-Nasr St, Cairo",
		"serviceType": "prescribed",
		"details":     "Daily insulin injection",
		"coordinates": map[string]float64{"latitude": 30.04, "longitude": 31.23},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[*request.ServiceRequest](t, rec)
	assert.Equal(t, request.StatusRequested, created.Status)
	require.NotEmpty(t, created.ID)

	// Nurse sees it listed.
	rec = do(t, s, http.MethodGet, "/nurse/requests", nurse.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[[]*request.ServiceRequest](t, rec)
	require.Len(t, open, 1)

	// Nurse accepts; double-accept conflicts.
	acceptPath := fmt.Sprintf("/nurse/requests/%s/accept", created.ID)
	rec = do(t, s, http.MethodPost, acceptPath, nurse.Token, map[string]any{
		"location": map[string]float64{"latitude": 30.05, "longitude": 31.24},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, request.StatusMatched, decode[*request.ServiceRequest](t, rec).Status)

	rec = do(t, s, http.MethodPost, acceptPath, nurse.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Patient polls the current request.
	rec = do(t, s, http.MethodGet, "/patient/current-request", patient.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, request.StatusMatched, decode[*request.ServiceRequest](t, rec).Status)

	// Nurse completes.
	rec = do(t, s, http.MethodPost, fmt.Sprintf("/nurse/requests/%s/complete", created.ID), nurse.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, request.StatusCompleted, decode[*request.ServiceRequest](t, rec).Status)

	// Payment and rating close it out.
	rec = do(t, s, http.MethodPost, "/patient/payment", patient.Token, map[string]string{
		"requestId": created.ID, "method": "cash",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[*request.ServiceRequest](t, rec).Paid)

	rec = do(t, s, http.MethodPost, "/patient/rating", patient.Token, map[string]any{
		"requestId": created.ID, "rating": 5, "comment": "very kind",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, request.StatusRated, decode[*request.ServiceRequest](t, rec).Status)

	// Rated requests leave the current slot and enter history.
	rec = do(t, s, http.MethodGet, "/patient/current-request", patient.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/nurse/request-history", nurse.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*request.ServiceRequest](t, rec), 1)
}

func TestRequestServiceValidation(t *testing.T) {
	s := newTestServer(t)
	patient := login(t, s, "test@example.com", "password123")

	rec := do(t, s, http.MethodPost, "/patient/request-service", patient.Token, map[string]string{
		"patientName": "Ahmed", "patientAge": "", "address": "x", "details": "y",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentValidation(t *testing.T) {
	s := newTestServer(t)
	patient := login(t, s, "test@example.com", "password123")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"unknown method", map[string]string{"method": "paypal"}, http.StatusBadRequest},
		{"electronic without details", map[string]string{"method": "vodafone"}, http.StatusBadRequest},
		{"instapay without amount", map[string]string{"method": "instapay", "transactionNumber": "123"}, http.StatusBadRequest},
		{"cash without request", map[string]string{"method": "cash"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/patient/payment", patient.Token, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRatingBounds(t *testing.T) {
	s := newTestServer(t)
	patient := login(t, s, "test@example.com", "password123")

	for _, rating := range []int{0, 6, -1} {
		rec := do(t, s, http.MethodPost, "/patient/rating", patient.Token, map[string]any{
			"rating": rating,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
	}
}

func TestAvailabilityUpdatesNurseAccount(t *testing.T) {
	s := newTestServer(t)
	nurse := login(t, s, "nurse@example.com", "password123")

	rec := do(t, s, http.MethodPost, "/nurse/availability", nurse.Token, map[string]any{
		"available": true,
		"location":  map[string]float64{"latitude": 29.97, "longitude": 31.13},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	acc := decode[*account.Account](t, rec)
	assert.True(t, acc.Available)
	require.NotNil(t, acc.Location)
	assert.Equal(t, 29.97, acc.Location.Latitude)
}
