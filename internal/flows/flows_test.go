package flows_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/apiclient"
	"github.com/nurse24/platform/internal/auth"
	"github.com/nurse24/platform/internal/clock"
	"github.com/nurse24/platform/internal/geo"
	"github.com/nurse24/platform/internal/mockapi"
	"github.com/nurse24/platform/internal/nurse"
	"github.com/nurse24/platform/internal/patient"
	"github.com/nurse24/platform/internal/profile"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/internal/ui"
)

// testEnv wires the full client stack against one in-process mock
// backend: separate patient and nurse sessions, a fake clock and a
// recording ui seam per side.
type testEnv struct {
	clock *clock.Fake

	patientRec      *ui.Recorder
	patientAuth     *auth.Service
	patientSvc      *patient.Service
	profileSvc      *profile.Service
	patientSessions session.Store

	nurseRec      *ui.Recorder
	nurseAuth     *auth.Service
	nurseSvc      *nurse.Service
	nurseSessions session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ck := clock.NewFake()
	mock := mockapi.NewServer(mockapi.Config{Latency: -1})

	patientSessions := session.NewMemoryStore()
	patientClient := apiclient.New(apiclient.Config{
		Sessions:  patientSessions,
		Transport: mock.Transport(nil),
	})

	nurseSessions := session.NewMemoryStore()
	nurseClient := apiclient.New(apiclient.Config{
		Sessions:  nurseSessions,
		Transport: mock.Transport(nil),
	})

	pos := geo.StaticProvider{Position: geo.Coordinates{Latitude: 30.0444, Longitude: 31.2357}}
	return &testEnv{
		clock:           ck,
		patientRec:      ui.NewRecorder(),
		patientAuth:     auth.NewService(patientClient, patientSessions, nil),
		patientSvc:      patient.NewService(patientClient, pos, nil),
		profileSvc:      profile.NewService(patientClient, patientSessions, nil),
		patientSessions: patientSessions,
		nurseRec:        ui.NewRecorder(),
		nurseAuth:       auth.NewService(nurseClient, nurseSessions, nil),
		nurseSvc:        nurse.NewService(nurseClient, nurseSessions, pos, nil),
		nurseSessions:   nurseSessions,
	}
}

func (e *testEnv) loginPatient(t *testing.T) {
	t.Helper()
	_, err := e.patientAuth.Login(context.Background(), auth.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
}

func (e *testEnv) loginNurse(t *testing.T) {
	t.Helper()
	_, err := e.nurseAuth.Login(context.Background(), auth.LoginRequest{
		Email:    "nurse@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
}

func (e *testEnv) submitRequest(t *testing.T) string {
	t.Helper()
	req, err := e.patientSvc.RequestService(context.Background(), patient.ServiceRequestInput{
		PatientName: "Mona Ahmed",
		PatientAge:  "67",
		Address:     "12 Nile St, Cairo",
		Details:     "Daily insulin injection",
	})
	require.NoError(t, err)
	return req.ID
}
