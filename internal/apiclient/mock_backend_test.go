package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/mockapi"
	"github.com/nurse24/platform/internal/session"
)

// Development wiring: no configured server, the mock backend installed
// as the client transport.
func newMockedClient(t *testing.T) (*Client, session.Store) {
	t.Helper()
	mock := mockapi.NewServer(mockapi.Config{Latency: -1})
	store := session.NewMemoryStore()
	c := New(Config{
		Sessions:  store,
		Transport: mock.Transport(nil),
	})
	return c, store
}

func TestMockedClientLogin(t *testing.T) {
	c, _ := newMockedClient(t)

	var out struct {
		Token string           `json:"token"`
		User  *account.Account `json:"user"`
		Role  account.Role     `json:"userType"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/auth/login", map[string]string{
		"email": "test@example.com", "password": "password123",
	}, &out)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, account.RolePatient, out.Role)
}

func TestMockedClientUnimplementedRoute(t *testing.T) {
	c, _ := newMockedClient(t)

	err := c.Do(context.Background(), http.MethodPost, "/auth/reset-password", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, IsUnimplemented(err))
}

func TestMockedClient401TearsDownSession(t *testing.T) {
	c, store := newMockedClient(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, session.Snapshot{Token: "not-a-jwt", Role: account.RolePatient}))

	err := c.Do(ctx, http.MethodGet, "/user/profile", nil, nil)
	assert.True(t, IsAuth(err))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}
