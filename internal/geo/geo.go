// Package geo supplies the device location used to enrich service
// requests and nurse status updates. Lookups are bounded and failure
// is an explicit result, never a reason to abort the call being
// enriched.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable indicates the current position could not be obtained.
var ErrUnavailable = errors.New("geo: location unavailable")

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the position as "lat, long", the free-text form the
// request address field accepts.
func (c Coordinates) String() string {
	return fmt.Sprintf("%g, %g", c.Latitude, c.Longitude)
}

// Provider resolves the device's current position.
type Provider interface {
	Current(ctx context.Context) (Coordinates, error)
}

// StaticProvider always reports a fixed position. Used in development
// and demos where no positioning hardware exists.
type StaticProvider struct {
	Position Coordinates
}

func (s StaticProvider) Current(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return s.Position, nil
}

// Unavailable is a Provider that always fails with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Current(ctx context.Context) (Coordinates, error) {
	return Coordinates{}, ErrUnavailable
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Coordinates, error)

func (f ProviderFunc) Current(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// WithTimeout bounds every lookup through p by d.
func WithTimeout(p Provider, d time.Duration) Provider {
	return ProviderFunc(func(ctx context.Context) (Coordinates, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			pos Coordinates
			err error
		}
		ch := make(chan result, 1)
		go func() {
			pos, err := p.Current(ctx)
			ch <- result{pos, err}
		}()

		select {
		case r := <-ch:
			return r.pos, r.err
		case <-ctx.Done():
			return Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	})
}
