// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/okarpov/articles-api/internal/model"
)

// CredentialRepository provides access to user credentials and the combined
// user+credential registration write.
type CredentialRepository interface {
	// FindByLogin loads credentials by login.
	FindByLogin(ctx context.Context, login string) (*model.Credential, error)
	// FindByUserID loads credentials by owning user ID.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Credential, error)
	// CreateUserWithCredential inserts the user profile and its credential
	// row in a single transaction. A duplicate login maps to ErrAlreadyExists.
	CreateUserWithCredential(ctx context.Context, u *model.User, c *model.Credential) error
	// SetRefreshToken overwrites the stored refresh token digest
	// unconditionally; nil clears the session. Returns rows affected.
	SetRefreshToken(ctx context.Context, userID uuid.UUID, digest *string) (int64, error)
	// RotateRefreshToken swaps the digest only if the stored value still
	// equals oldDigest. Returns rows affected; zero means the token was
	// already rotated by a concurrent refresh.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldDigest, newDigest string) (int64, error)
}
