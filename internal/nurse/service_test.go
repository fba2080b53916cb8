package nurse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/auth"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/mockapi"
	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/patient"
	"github.com/nurse24/platform/internal/request"
	"github.com/nurse24/platform/internal/session"
)

var alexandria = geo.Coordinates{Latitude: 31.2001, Longitude: 29.9187}

// harness wires a nurse service and a patient service against one mock
// backend so tests can drive both sides of a request.
type harness struct {
	nurse    *nurse.Service
	patient  *patient.Service
	sessions session.Store
}

func newHarness(t *testing.T, location geo.Provider) *harness {
	t.Helper()
	mock := mockapi.NewServer(mockapi.Config{Latency: -1})

	patientStore := session.NewMemoryStore()
	patientClient := apiclient.New(apiclient.Config{
		Sessions:  patientStore,
		Transport: mock.Transport(nil),
	})
	_, err := auth.NewService(patientClient, patientStore, nil).Login(context.Background(), auth.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	nurseStore := session.NewMemoryStore()
	nurseClient := apiclient.New(apiclient.Config{
		Sessions:  nurseStore,
		Transport: mock.Transport(nil),
	})
	_, err = auth.NewService(nurseClient, nurseStore, nil).Login(context.Background(), auth.LoginRequest{
		Email:    "nurse@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	return &harness{
		nurse:    nurse.NewService(nurseClient, nurseStore, location, nil),
		patient:  patient.NewService(patientClient, geo.Unavailable{}, nil),
		sessions: nurseStore,
	}
}

func (h *harness) openRequest(t *testing.T) *request.ServiceRequest {
	t.Helper()
	req, err := h.patient.RequestService(context.Background(), patient.ServiceRequestInput{
		PatientName: "Mona Ahmed",
		PatientAge:  "67",
		Address:     "12 Nile St, Cairo",
		ServiceType: request.ServiceEmergency,
		Details:     "Post-surgery wound dressing",
	})
	require.NoError(t, err)
	return req
}

func TestUpdateProfileMergesIntoSession(t *testing.T) {
	h := newHarness(t, geo.Unavailable{})

	acc, err := h.nurse.UpdateProfile(context.Background(), nurse.ProfileUpdate{
		NationalID:               "29901011234567",
		LicenseID:                "EG-RN-55421",
		FaceVerificationComplete: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "EG-RN-55421", acc.LicenseID)
	assert.True(t, acc.FaceVerificationComplete)
	// Untouched fields survive the merge.
	assert.Equal(t, "nurse@example.com", acc.Email)

	snap, err := h.sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "29901011234567", snap.Account.NationalID)
}

func TestSetAvailabilityAttachesLocation(t *testing.T) {
	h := newHarness(t, geo.StaticProvider{Position: alexandria})

	acc, err := h.nurse.SetAvailability(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, acc.Available)
	require.NotNil(t, acc.Location)
	assert.Equal(t, alexandria, *acc.Location)

	acc, err = h.nurse.SetAvailability(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, acc.Available)
}

func TestGoingOfflineUpdatesCachedAccount(t *testing.T) {
	h := newHarness(t, geo.Unavailable{})

	_, err := h.nurse.SetAvailability(context.Background(), true)
	require.NoError(t, err)

	snap, err := h.sessions.Load(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Account.Available)

	_, err = h.nurse.SetAvailability(context.Background(), false)
	require.NoError(t, err)

	snap, err = h.sessions.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Account.Available)
}

func TestAvailabilitySurvivesLocationFailure(t *testing.T) {
	h := newHarness(t, geo.Unavailable{})

	acc, err := h.nurse.SetAvailability(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, acc.Available)
}

func TestAcceptAndCompleteRequest(t *testing.T) {
	h := newHarness(t, geo.StaticProvider{Position: alexandria})
	created := h.openRequest(t)

	open, err := h.nurse.Requests(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)

	accepted, err := h.nurse.AcceptRequest(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusMatched, accepted.Status)
	assert.Equal(t, "nurse123", accepted.NurseID)

	// An accepted request leaves the open list.
	open, err = h.nurse.Requests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)

	done, err := h.nurse.CompleteService(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCompleted, done.Status)

	history, err := h.nurse.RequestHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
}

func TestAcceptRequestTwiceConflicts(t *testing.T) {
	h := newHarness(t, geo.Unavailable{})
	created := h.openRequest(t)

	_, err := h.nurse.AcceptRequest(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = h.nurse.AcceptRequest(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, apiclient.IsConflict(err))
}

func TestCompleteUnknownRequest(t *testing.T) {
	h := newHarness(t, geo.Unavailable{})

	_, err := h.nurse.CompleteService(context.Background(), "req_missing")
	require.Error(t, err)
	assert.True(t, apiclient.IsNotFound(err))
}
