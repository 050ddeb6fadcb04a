package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetUsesPassInsertUnderPrefix(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		prefix: "sga",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "-m", "-f", "sga/auth/token"}, args)
			assert.Equal(t, "bearer-123\n", input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Set(context.Background(), "auth/token", "bearer-123"))
	assert.True(t, called)
}

func TestStoreGetTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "sga",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "sga/auth/token"}, args)
			assert.Empty(t, input)
			return "bearer-123\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "auth/token")
	require.NoError(t, err)
	assert.Equal(t, "bearer-123", value)
}

func TestStoreGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "sga",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: sga/auth/user is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "auth/user")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageKeyNotFound)
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "sga",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "auth/token")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "sga/auth/token")
	assert.ErrorContains(t, err, "gpg: decryption failed")
	assert.NotErrorIs(t, err, domain.ErrStorageKeyNotFound)
}

func TestStoreRemoveIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", "auth/token"}, args)
			return "", "Error: auth/token is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Remove(context.Background(), "auth/token"))
}

func TestUnavailableIsStorageUnavailable(t *testing.T) {
	assert.ErrorIs(t, ErrUnavailable, domain.ErrStorageUnavailable)
}
