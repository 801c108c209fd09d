// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials or
	// an invalid/reused refresh token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not permitted to mutate the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (login taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrInternal indicates the store reported an unexpected zero/empty result.
	ErrInternal = errors.New("internal error")
)
