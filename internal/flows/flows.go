// Package flows implements the client-side lifecycle state machines:
// authentication, nurse availability, nurse onboarding, service
// execution and patient request tracking. Each flow is a small
// mutex-guarded machine driven by user actions and clock timers,
// talking to the presentational shell only through the ui seams.
package flows

import (
	"errors"
	"fmt"
	"time"
)

// Default timer durations for the simulated real-time events.
const (
	DefaultIncomingRequestDelay = 5 * time.Second
	DefaultRatingRevealDelay    = 3 * time.Second
	DefaultUploadDelay          = 2 * time.Second
	DefaultPaymentUploadDelay   = 1500 * time.Millisecond
	DefaultFaceVerifyDelay      = 1500 * time.Millisecond
)

// ValidationError is a client-side check failure. It blocks dispatch:
// no network call is made for input that fails validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flows: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
