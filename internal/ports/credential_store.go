package ports

import (
	"context"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
)

type CredentialStore interface {
	Get(ctx context.Context) domain.Credentials
	Set(ctx context.Context, token string, user domain.User) error
	Clear(ctx context.Context) error
}
