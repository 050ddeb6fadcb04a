package outcome

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSuccessfulListing(t *testing.T) {
	output, err := Render(Report{
		Endpoint: "/students",
		Elapsed:  1234 * time.Microsecond,
		Payload:  domain.Payload(`[{"id":1,"name":"Ada"},{"id":2,"name":"Lin"}]`),
	})

	require.NoError(t, err)
	assert.Contains(t, output, "GET /students")
	assert.Contains(t, output, "outcome: success")
	assert.Contains(t, output, "elapsed: 1ms")
	assert.Contains(t, output, "records: 2")
	assert.Contains(t, output, `"name": "Ada"`)
}

func TestRenderObjectPayloadHasNoRecordCount(t *testing.T) {
	output, err := Render(Report{Method: http.MethodPost, Endpoint: "/notices", Payload: domain.Payload(`{"id":9}`)})

	require.NoError(t, err)
	assert.Contains(t, output, "POST /notices")
	assert.NotContains(t, output, "records:")
	assert.Contains(t, output, `"id": 9`)
}

func TestRenderFailureOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantHint string
	}{
		{
			name:     "unauthorized",
			err:      &domain.HTTPError{Status: http.StatusUnauthorized, Body: "expired"},
			wantKind: "unauthorized",
			wantHint: "sga login",
		},
		{
			name:     "rate limited",
			err:      &domain.RateLimitedError{Message: "slow down"},
			wantKind: "rate_limited",
			wantHint: "try again shortly",
		},
		{
			name:     "transport",
			err:      &domain.TransportError{Err: errors.New("connection refused")},
			wantKind: "transport",
			wantHint: "sga config",
		},
		{
			name:     "http",
			err:      &domain.HTTPError{Status: http.StatusNotFound, Body: "missing"},
			wantKind: "http_error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := Render(Report{Endpoint: "/teachers", Err: tc.err})

			require.NoError(t, err)
			assert.Contains(t, output, "outcome: "+tc.wantKind)
			assert.Contains(t, output, tc.err.Error())
			if tc.wantHint != "" {
				assert.Contains(t, output, tc.wantHint)
			}
		})
	}
}

func TestRenderSessionSignedIn(t *testing.T) {
	output, err := RenderSession(SessionReport{
		BaseURL: "https://school.example.com/api",
		Credentials: domain.Credentials{
			Token: "tok",
			User:  &domain.User{ID: "7", Username: "ada", Name: "Ada Lovelace", Role: domain.RoleTeacher},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "api: https://school.example.com/api")
	assert.Contains(t, output, "user: Ada Lovelace (ada)")
	assert.Contains(t, output, "role: teacher")
	assert.NotContains(t, output, "tok\n")
}

func TestRenderSessionSignedOut(t *testing.T) {
	output, err := RenderSession(SessionReport{})

	require.NoError(t, err)
	assert.Contains(t, output, "Not signed in.")
	assert.Contains(t, output, "sga login")
}

func TestRenderSessionWithoutUserRecord(t *testing.T) {
	output, err := RenderSession(SessionReport{Credentials: domain.Credentials{Token: "tok"}})

	require.NoError(t, err)
	assert.Contains(t, output, "token: stored")
	assert.Contains(t, output, "user record missing")
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héll...", truncate("héllo", 4))
	assert.Equal(t, "hé", truncate("hé", 4))
}
