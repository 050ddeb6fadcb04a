package schoolapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tomlstore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/toml"
	"github.com/aabid-khan7222/myschool-sub002/internal/credentials"
	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/gateway"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *credentials.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credentials.NewStore(tomlstore.NewStore(filepath.Join(t.TempDir(), "credentials.toml")), zerolog.Nop())
	gw, err := gateway.New(gateway.Options{
		BuildMode:   "development",
		DefaultURL:  server.URL + "/api",
		Credentials: store,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	return NewClient(gw, store), store
}

func recordingHandler(t *testing.T, seen chan<- recordedRequest, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if r.ContentLength > 0 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		}
		seen <- recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Auth:   r.Header.Get("Authorization"),
			Body:   string(raw),
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestLoginStoresSessionAndAuthorizesLaterRequests(t *testing.T) {
	seen := make(chan recordedRequest, 2)
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if r.ContentLength > 0 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		}
		seen <- recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(raw)}

		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":7,"username":"ada","role":"teacher"}}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	ctx := context.Background()
	user, err := client.Login(ctx, "ada", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("7"), user.ID)
	assert.Equal(t, domain.RoleTeacher, user.Role)

	login := <-seen
	assert.Equal(t, http.MethodPost, login.Method)
	assert.Equal(t, "/api/auth/login", login.Path)
	assert.Empty(t, login.Auth)
	assert.JSONEq(t, `{"username":"ada","password":"secret"}`, login.Body)

	creds := store.Get(ctx)
	assert.Equal(t, "tok-1", creds.Token)
	require.NotNil(t, creds.User)
	assert.Equal(t, "ada", creds.User.Username)

	_, err = client.List(ctx, ResourceStudents)
	require.NoError(t, err)

	list := <-seen
	assert.Equal(t, "/api/students", list.Path)
	assert.Equal(t, "Bearer tok-1", list.Auth)
}

func TestLoginWithoutTokenLeavesStoreEmpty(t *testing.T) {
	seen := make(chan recordedRequest, 1)
	client, store := newTestClient(t, recordingHandler(t, seen, http.StatusOK, `{"message":"ok"}`))

	_, err := client.Login(context.Background(), "ada", "secret")
	require.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, store.Get(context.Background()).HasToken())
}

func TestLoginRejectedByBackend(t *testing.T) {
	seen := make(chan recordedRequest, 1)
	client, store := newTestClient(t, recordingHandler(t, seen, http.StatusUnauthorized, `{"message":"bad credentials"}`))

	_, err := client.Login(context.Background(), "ada", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.OutcomeUnauthorized, domain.KindOf(err))
	assert.False(t, store.Get(context.Background()).HasToken())
}

func TestLogoutClearsSession(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "tok-1", domain.User{ID: "1"}))

	require.NoError(t, client.Logout(ctx))
	assert.False(t, store.Get(ctx).HasToken())
}

func TestRecordOperationsUseExpectedRoutes(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Client) (domain.Payload, error)
		method   string
		path     string
		wantBody string
	}{
		{
			name:   "get",
			call:   func(c *Client) (domain.Payload, error) { return c.Get(context.Background(), ResourceTeachers, "12") },
			method: http.MethodGet,
			path:   "/api/teachers/12",
		},
		{
			name: "create",
			call: func(c *Client) (domain.Payload, error) {
				return c.Create(context.Background(), ResourceNotices, map[string]string{"title": "Closed"})
			},
			method:   http.MethodPost,
			path:     "/api/notices",
			wantBody: `{"title":"Closed"}`,
		},
		{
			name: "update",
			call: func(c *Client) (domain.Payload, error) {
				return c.Update(context.Background(), ResourceFees, "3", map[string]int{"amount": 100})
			},
			method:   http.MethodPut,
			path:     "/api/fees/3",
			wantBody: `{"amount":100}`,
		},
		{
			name:   "delete",
			call:   func(c *Client) (domain.Payload, error) { return c.Delete(context.Background(), ResourceHolidays, "a b") },
			method: http.MethodDelete,
			path:   "/api/holidays/a%20b",
		},
		{
			name:   "dashboard",
			call:   func(c *Client) (domain.Payload, error) { return c.Dashboard(context.Background(), domain.RoleParent) },
			method: http.MethodGet,
			path:   "/api/dashboard/parent",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen := make(chan recordedRequest, 1)
			client, _ := newTestClient(t, recordingHandler(t, seen, http.StatusOK, `{"ok":true}`))

			payload, err := tc.call(client)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true}`, payload.String())

			got := <-seen
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, tc.path, got.Path)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, got.Body)
			}
		})
	}
}

func TestRecordOperationsRequireID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	_, err := client.Get(context.Background(), ResourceStudents, "  ")
	require.ErrorIs(t, err, ErrMissingID)
	_, err = client.Delete(context.Background(), ResourceStudents, "")
	require.ErrorIs(t, err, ErrMissingID)
}

func TestParseResource(t *testing.T) {
	got, err := ParseResource(" /Teachers/ ")
	require.NoError(t, err)
	assert.Equal(t, ResourceTeachers, got)

	_, err = ParseResource("payroll")
	require.ErrorIs(t, err, ErrUnknownResource)

	assert.Len(t, Resources(), 14)
}

func TestParseRole(t *testing.T) {
	got, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got)

	_, err = ParseRole("principal")
	require.ErrorIs(t, err, ErrUnknownRole)
}
