package flows_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/flows"
	"github.com/nurse24/platform/internal/ui"
)

func newOnboardingFlow(e *testEnv) *flows.OnboardingFlow {
	return flows.NewOnboardingFlow(flows.OnboardingFlowConfig{
		Nurse:     e.nurseSvc,
		Clock:     e.clock,
		Notifier:  e.nurseRec,
		Navigator: e.nurseRec,
	})
}

// uploadDocuments walks the first two wizard steps to completion.
func uploadDocuments(t *testing.T, e *testEnv, flow *flows.OnboardingFlow) {
	t.Helper()
	require.NoError(t, flow.UploadID("doc_national_id"))
	e.clock.Advance(2 * time.Second)
	require.NoError(t, flow.UploadLicense("doc_license"))
	e.clock.Advance(2 * time.Second)
}

func TestUploadStepsTransition(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)

	require.NoError(t, flow.UploadID("doc_national_id"))
	assert.Equal(t, flows.UploadInFlight, flow.IDUploadState())

	e.clock.Advance(1 * time.Second)
	assert.Equal(t, flows.UploadInFlight, flow.IDUploadState())

	e.clock.Advance(1 * time.Second)
	assert.Equal(t, flows.UploadDone, flow.IDUploadState())
	assert.True(t, e.nurseRec.HasNotification("National ID uploaded"))
}

func TestLicenseRequiresIDFirst(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)

	err := flow.UploadLicense("doc_license")
	require.Error(t, err)
	assert.True(t, flows.IsValidation(err))
	assert.Equal(t, flows.UploadIdle, flow.LicenseUploadState())
}

func TestFaceVerificationNeedsAllFourCaptures(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)
	uploadDocuments(t, e, flow)

	require.NoError(t, flow.Capture(flows.CaptureFront))
	require.NoError(t, flow.Capture(flows.CaptureRight))
	require.NoError(t, flow.Capture(flows.CaptureLeft))
	e.clock.Advance(10 * time.Second)
	assert.False(t, flow.Verified())

	require.NoError(t, flow.Capture(flows.CaptureUp))
	assert.False(t, flow.Verified())

	e.clock.Advance(1500 * time.Millisecond)
	assert.True(t, flow.Verified())
	assert.True(t, e.nurseRec.HasNotification("Face verification complete"))
}

func TestRepeatCaptureIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)
	uploadDocuments(t, e, flow)

	for i := 0; i < 3; i++ {
		require.NoError(t, flow.Capture(flows.CaptureFront))
	}
	e.clock.Advance(10 * time.Second)
	assert.False(t, flow.Verified())
}

func TestCompleteRegistrationRequiresVerification(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)

	err := flow.CompleteRegistration(context.Background())
	require.Error(t, err)
	assert.True(t, flows.IsValidation(err))
	assert.Empty(t, e.nurseRec.Routes())
}

func TestCompleteRegistrationSubmitsCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.loginNurse(t)
	flow := newOnboardingFlow(e)
	uploadDocuments(t, e, flow)

	for _, dir := range []flows.CaptureDirection{
		flows.CaptureFront, flows.CaptureRight, flows.CaptureLeft, flows.CaptureUp,
	} {
		require.NoError(t, flow.Capture(dir))
	}
	e.clock.Advance(2 * time.Second)
	require.True(t, flow.Verified())

	require.NoError(t, flow.CompleteRegistration(context.Background()))
	assert.Equal(t, ui.RouteNurseDashboard, e.nurseRec.LastRoute())

	snap, err := e.nurseSessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "doc_national_id", snap.Account.NationalID)
	assert.Equal(t, "doc_license", snap.Account.LicenseID)
	assert.True(t, snap.Account.FaceVerificationComplete)
}
