// Package service contains application services for authentication and articles.
package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/limiter"
	"github.com/okarpov/articles-api/internal/model"
	"github.com/okarpov/articles-api/internal/repository"
)

// Hasher is the one-way digest primitive used for passwords and refresh tokens.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs access/refresh token pairs for (userID, login).
type TokenIssuer interface {
	Pair(userID uuid.UUID, login string) (model.Tokens, error)
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Login     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService owns the refresh-token rotation invariant: each credential is
// either without a session (nil digest) or holds the digest of exactly the
// latest issued refresh token.
type AuthService interface {
	// Register creates the user and credential atomically and opens a session.
	Register(ctx context.Context, in RegisterInput) (model.Tokens, error)
	// Login verifies credentials and re-rotates the session.
	Login(ctx context.Context, login, password, ip string) (model.Tokens, error)
	// RefreshTokens trades a valid refresh token for a new pair, invalidating
	// the presented one.
	RefreshTokens(ctx context.Context, userID uuid.UUID, refreshToken string) (model.Tokens, error)
	// Logout closes the session unconditionally.
	Logout(ctx context.Context, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	creds  repository.CredentialRepository
	hasher Hasher
	issuer TokenIssuer
	lim    limiter.Limiter
	log    *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(creds repository.CredentialRepository, hasher Hasher, issuer TokenIssuer, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{creds: creds, hasher: hasher, issuer: issuer, lim: lim, log: log}
}

// Register creates the user plus credential in one transaction. Tokens are
// issued up front so the refresh digest lands in the same write; any failure
// rolls the whole registration back.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (model.Tokens, error) {
	userID, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}
	credID, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}

	tokens, err := s.issuer.Pair(userID, in.Login)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("issue tokens: %w", err)
	}
	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("hash password: %w", err)
	}
	refreshHash, err := s.hasher.Hash(tokens.RefreshToken)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("hash refresh token: %w", err)
	}

	u := &model.User{ID: userID, FirstName: in.FirstName, LastName: in.LastName}
	c := &model.Credential{
		ID:               credID,
		UserID:           userID,
		Login:            in.Login,
		PasswordHash:     passwordHash,
		RefreshTokenHash: &refreshHash,
	}
	if err := s.creds.CreateUserWithCredential(ctx, u, c); err != nil {
		return model.Tokens{}, err
	}

	s.log.Info("user registered", zap.String("userID", userID.String()))
	return tokens, nil
}

// Login authenticates with rate limiting by (login, ip). Unknown login and
// wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, login, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, login, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	c, err := s.creds.FindByLogin(ctx, login)
	if err != nil || !s.hasher.Verify(password, c.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, login, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		// lookup failure and password mismatch collapse to one answer
		return model.Tokens{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, login, ipHash)

	tokens, err := s.rotate(ctx, c.UserID, c.Login)
	if err != nil {
		return model.Tokens{}, err
	}
	return tokens, nil
}

// RefreshTokens implements rotation-on-use: the presented token must match
// the stored digest, and the swap to the new digest is conditional on that
// digest still being current. A concurrent refresh with the same token loses
// the swap and is rejected.
func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, userID uuid.UUID, refreshToken string) (model.Tokens, error) {
	c, err := s.creds.FindByUserID(ctx, userID)
	if err != nil {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	if c.RefreshTokenHash == nil {
		// no session: token was already invalidated by logout or reuse
		return model.Tokens{}, errs.ErrUnauthorized
	}
	if !s.hasher.Verify(refreshToken, *c.RefreshTokenHash) {
		return model.Tokens{}, errs.ErrUnauthorized
	}

	tokens, err := s.issuer.Pair(c.UserID, c.Login)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("issue tokens: %w", err)
	}
	newDigest, err := s.hasher.Hash(tokens.RefreshToken)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("hash refresh token: %w", err)
	}
	n, err := s.creds.RotateRefreshToken(ctx, userID, *c.RefreshTokenHash, newDigest)
	if err != nil {
		return model.Tokens{}, err
	}
	if n == 0 {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	return tokens, nil
}

// Logout transitions the credential to the no-session state.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	n, err := s.creds.SetRefreshToken(ctx, userID, nil)
	if err != nil {
		return err
	}
	if n == 0 {
		// authenticated caller without a credential row
		return errs.ErrInternal
	}
	return nil
}

// rotate issues a fresh pair and stores the new refresh digest unconditionally
// (login path: a previous session is simply superseded).
func (s *AuthServiceImpl) rotate(ctx context.Context, userID uuid.UUID, login string) (model.Tokens, error) {
	tokens, err := s.issuer.Pair(userID, login)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("issue tokens: %w", err)
	}
	digest, err := s.hasher.Hash(tokens.RefreshToken)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("hash refresh token: %w", err)
	}
	n, err := s.creds.SetRefreshToken(ctx, userID, &digest)
	if err != nil {
		return model.Tokens{}, err
	}
	if n == 0 {
		return model.Tokens{}, errs.ErrInternal
	}
	return tokens, nil
}
