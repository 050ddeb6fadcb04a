package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/rs/zerolog"
)

// Store layers a preferred backend over a fallback one. Writes land in the
// first backend that accepts them and a successful primary write drops any
// older fallback copy, so a key never lives in both places for long. Reads
// prefer primary. Remove always clears both.
type Store struct {
	primary  ports.Storage
	fallback ports.Storage
	logger   zerolog.Logger
}

var _ ports.Storage = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary storage is nil")
	errNilFallbackStore = errors.New("fallback storage is nil")
)

func NewStore(primary ports.Storage, fallback ports.Storage, logger zerolog.Logger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "storage_chain").Logger(),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if isContextErr(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	switch {
	case fallbackErr == nil:
		s.logger.Debug().Err(err).Str("key", key).Msg("storage item served from fallback backend")
		return fallbackValue, nil
	case isNotFound(err) && isNotFound(fallbackErr):
		return "", fmt.Errorf("storage item %q: %w", key, domain.ErrStorageKeyNotFound)
	default:
		return "", errors.Join(
			fmt.Errorf("primary storage get: %w", err),
			fmt.Errorf("fallback storage get: %w", fallbackErr),
		)
	}
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	err := s.primary.Set(ctx, key, value)
	if err == nil {
		if removeErr := s.fallback.Remove(ctx, key); removeErr != nil {
			s.logger.Debug().Err(removeErr).Str("key", key).Msg("stale fallback copy not removed")
		}
		return nil
	}
	if isContextErr(err) {
		return err
	}

	s.logger.Warn().Err(err).Str("key", key).Msg("primary storage rejected write, using fallback backend")

	if fallbackErr := s.fallback.Set(ctx, key, value); fallbackErr != nil {
		return errors.Join(
			fmt.Errorf("primary storage set: %w", err),
			fmt.Errorf("fallback storage set: %w", fallbackErr),
		)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.primary.Remove(ctx, key)
	if isContextErr(err) {
		return err
	}

	fallbackErr := s.fallback.Remove(ctx, key)
	if err == nil && fallbackErr == nil {
		return nil
	}

	return errors.Join(wrapBackendErr("primary storage remove", err), wrapBackendErr("fallback storage remove", fallbackErr))
}

func wrapBackendErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrStorageKeyNotFound)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
