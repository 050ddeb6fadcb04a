// Package credentials persists the bearer token and the signed-in user
// under two fixed storage keys.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/rs/zerolog"
)

const (
	TokenKey = "auth/token"
	UserKey  = "auth/user"
)

type Store struct {
	storage ports.Storage
	logger  zerolog.Logger
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(storage ports.Storage, logger zerolog.Logger) *Store {
	return &Store{storage: storage, logger: logger.With().Str("component", "credentials").Logger()}
}

// Get never fails: unreadable storage is reported as absent credentials.
// Token and user are read independently and not cross-checked.
func (s *Store) Get(ctx context.Context) domain.Credentials {
	var creds domain.Credentials

	token, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.logReadFailure(TokenKey, err)
	} else {
		creds.Token = token
	}

	rawUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		s.logReadFailure(UserKey, err)
		return creds
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Debug().Err(err).Str("key", UserKey).Msg("stored user record is not valid json")
		return creds
	}
	creds.User = &user

	return creds
}

func (s *Store) Set(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return errors.New("token is required")
	}

	encodedUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	if err := s.storage.Set(ctx, UserKey, string(encodedUser)); err != nil {
		if rollbackErr := s.storage.Remove(ctx, TokenKey); rollbackErr != nil {
			return fmt.Errorf("store user record and rollback token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("store user record: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	var errs error
	if err := s.storage.Remove(ctx, TokenKey); err != nil {
		errs = errors.Join(errs, fmt.Errorf("remove token: %w", err))
	}
	if err := s.storage.Remove(ctx, UserKey); err != nil {
		errs = errors.Join(errs, fmt.Errorf("remove user record: %w", err))
	}

	return errs
}

func (s *Store) logReadFailure(key string, err error) {
	if errors.Is(err, domain.ErrStorageKeyNotFound) {
		return
	}
	s.logger.Debug().Err(err).Str("key", key).Msg("credential storage unavailable, treating as absent")
}
