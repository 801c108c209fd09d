// Package token issues and verifies the signed access/refresh token pair.
package token

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/model"
)

// Claims is the signed statement carried by both token kinds: the subject
// user plus their login. Access and refresh differ only in expiry.
type Claims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 access/refresh tokens with configured lifetimes.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer constructs an Issuer.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Pair issues a fresh access+refresh token pair for (userID, login).
func (i *Issuer) Pair(userID uuid.UUID, login string) (model.Tokens, error) {
	access, err := i.sign(userID, login, i.accessTTL)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(userID, login, i.refreshTTL)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(userID uuid.UUID, login string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Login: login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Parse verifies signature and expiry and returns the subject and login.
// Any verification failure maps to errs.ErrUnauthorized.
func (i *Issuer) Parse(raw string) (uuid.UUID, string, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, "", errs.ErrUnauthorized
	}
	userID, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errs.ErrUnauthorized
	}
	return userID, claims.Login, nil
}
