package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
)

const (
	storeDirMode = 0o700
	itemFileMode = 0o600
)

var errEmptyKey = errors.New("storage key is empty")

// Store maps every key to a file below root, so "auth/token" lives at
// <root>/auth/token. Writes replace the file atomically.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.Storage = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("storage item %q: %w", key, domain.ErrStorageKeyNotFound)
	case err != nil:
		return "", fmt.Errorf("read storage item %q: %w", key, err)
	}

	return string(data), nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("stage storage item %q: %w", key, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(itemFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("stage storage item %q: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write storage item %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write storage item %q: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("commit storage item %q: %w", key, err)
	}

	committed = true
	return nil
}

// Remove deletes key and any directories it leaves empty. Missing keys are
// not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove storage item %q: %w", key, err)
	}

	s.pruneEmptyParents(filepath.Dir(path))
	return nil
}

func (s *Store) pruneEmptyParents(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root+string(filepath.Separator)) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func (s *Store) resolve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errEmptyKey
	}

	local := filepath.Clean(filepath.FromSlash(trimmed))
	if !filepath.IsLocal(local) || local == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(s.root, local), nil
}
