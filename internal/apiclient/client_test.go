package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse24/platform/internal/account"
	"github.com/nurse24/platform/internal/session"
)

func newClientFor(t *testing.T, handler http.HandlerFunc) (*Client, *session.Store, *bool) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var store session.Store = session.NewMemoryStore()
	kicked := false
	c := New(Config{
		BaseURL:        srv.URL,
		Sessions:       store,
		OnUnauthorized: func() { kicked = true },
	})
	return c, &store, &kicked
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, storePtr, _ := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	ctx := context.Background()
	require.NoError(t, (*storePtr).Save(ctx, session.Snapshot{Token: "tok-42", Role: account.RolePatient}))

	require.NoError(t, c.Do(ctx, http.MethodGet, "/user/profile", nil, nil))
	assert.Equal(t, "Bearer tok-42", gotAuth)
}

func TestDoOmitsBearerWithoutSession(t *testing.T) {
	var gotAuth string
	c, _, _ := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/user/profile", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestDoDecodesErrorEnvelope(t *testing.T) {
	c, _, _ := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "User with this email already exists"})
	})

	err := c.Do(context.Background(), http.MethodPost, "/auth/register", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User with this email already exists", apiErr.Message)
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	c, storePtr, kicked := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
	})

	ctx := context.Background()
	require.NoError(t, (*storePtr).Save(ctx, session.Snapshot{Token: "stale", Role: account.RoleNurse}))

	err := c.Do(ctx, http.MethodGet, "/user/profile", nil, nil)
	assert.True(t, IsAuth(err))
	assert.True(t, *kicked)

	_, err = (*storePtr).Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestNetworkFailure(t *testing.T) {
	store := session.NewMemoryStore()
	c := New(Config{BaseURL: "http://127.0.0.1:1", Sessions: store})

	err := c.Do(context.Background(), http.MethodGet, "/user/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsAuth(err))
}

func TestDoDecodesResponse(t *testing.T) {
	c, _, _ := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"imageUrl": "https://i.pravatar.cc/300?u=x"})
	})

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/user/upload-profile-image", nil, &out))
	assert.Equal(t, "https://i.pravatar.cc/300?u=x", out.ImageURL)
}

func TestUploadSendsMultipart(t *testing.T) {
	var contentType string
	var field, filename, contents string
	c, _, _ := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for name, headers := range r.MultipartForm.File {
			field = name
			filename = headers[0].Filename
			f, err := headers[0].Open()
			require.NoError(t, err)
			defer f.Close()
			var b strings.Builder
			_, err = io.Copy(&b, f)
			require.NoError(t, err)
			contents = b.String()
		}
		json.NewEncoder(w).Encode(map[string]string{"imageUrl": "u"})
	})

	err := c.Upload(context.Background(), "/user/upload-profile-image", "profileImage", "avatar.png", strings.NewReader("fake-bytes"), nil)
	require.NoError(t, err)
	assert.Contains(t, contentType, "multipart/form-data")
	assert.Equal(t, "profileImage", field)
	assert.Equal(t, "avatar.png", filename)
	assert.Equal(t, "fake-bytes", contents)
}

func TestUserMessage(t *testing.T) {
	err := &Error{Status: 404, Message: "User not found"}
	assert.Equal(t, "User not found", UserMessage(err, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(&Error{Status: 500}, "fallback"))
}
