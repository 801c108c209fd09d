package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/model"
)

// CredentialRepo implements CredentialRepository using PostgreSQL.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

const credentialColumns = `id, user_id, login, password, refresh_token, created_at, updated_at`

// FindByLogin selects credentials by login.
func (r *CredentialRepo) FindByLogin(ctx context.Context, login string) (*model.Credential, error) {
	const q = `
SELECT ` + credentialColumns + `
FROM user_credentials WHERE login=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, login))
}

// FindByUserID selects credentials by owning user.
func (r *CredentialRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Credential, error) {
	const q = `
SELECT ` + credentialColumns + `
FROM user_credentials WHERE user_id=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, userID))
}

func (r *CredentialRepo) scanOne(row pgx.Row) (*model.Credential, error) {
	var c model.Credential
	err := row.Scan(&c.ID, &c.UserID, &c.Login, &c.PasswordHash, &c.RefreshTokenHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

// CreateUserWithCredential inserts the user and credential rows atomically.
// Registration is the one multi-row write; both rows commit or neither does.
func (r *CredentialRepo) CreateUserWithCredential(ctx context.Context, u *model.User, c *model.Credential) error {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insUser = `
INSERT INTO users (id, first_name, last_name)
VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insUser, u.ID, u.FirstName, u.LastName); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	const insCred = `
INSERT INTO user_credentials (id, user_id, login, password, refresh_token)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insCred, c.ID, c.UserID, c.Login, c.PasswordHash, c.RefreshTokenHash); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	return tx.Commit(ctx)
}

// SetRefreshToken overwrites the stored refresh token digest; nil clears it.
func (r *CredentialRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, digest *string) (int64, error) {
	const q = `
UPDATE user_credentials
SET refresh_token = $2, updated_at = now()
WHERE user_id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, digest)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RotateRefreshToken replaces the digest only while it still equals oldDigest.
// The conditional write serializes concurrent refreshes on the same token:
// exactly one caller sees a row affected.
func (r *CredentialRepo) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldDigest, newDigest string) (int64, error) {
	const q = `
UPDATE user_credentials
SET refresh_token = $3, updated_at = now()
WHERE user_id = $1 AND refresh_token = $2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, oldDigest, newDigest)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
