// Package session holds the client-side session cache: the auth token,
// the active role, and the last account snapshot. The three values are
// written as one unit through a single Store so a logout or a 401 can
// never leave a half-cleared session behind.
package session

import (
	"context"
	"errors"

	"github.com/nurse24/platform/internal/account"
)

// ErrNoSession indicates no session has been saved yet.
var ErrNoSession = errors.New("session: no active session")

// Snapshot is the token/role/account triple cached after login or
// registration and refreshed after every profile fetch or update.
type Snapshot struct {
	Token   string           `json:"token"`
	Role    account.Role     `json:"role"`
	Account *account.Account `json:"account,omitempty"`
}

// Store persists the session snapshot. Save and Clear replace the full
// triple atomically; partial writes are not part of the contract.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// MergeAccount shallow-merges resp over the cached account and saves
// the updated snapshot. New fields win; the token and role are kept.
// Without an active session it is a no-op.
func MergeAccount(ctx context.Context, store Store, resp any) error {
	snap, err := store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	merged, err := account.Merge(snap.Account, resp)
	if err != nil {
		return err
	}
	snap.Account = merged
	return store.Save(ctx, snap)
}
