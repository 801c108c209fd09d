// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is a profile record. Credentials are stored separately.
type User struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Credential holds login secrets for a user. RefreshTokenHash is nil while
// no session is active; login/refresh rotate it, logout nulls it.
type Credential struct {
	ID               uuid.UUID
	UserID           uuid.UUID // FK -> users.id, cascade delete
	Login            string    // unique
	PasswordHash     string    // bcrypt digest
	RefreshTokenHash *string   // bcrypt digest of the current refresh token
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Article is a single authored article.
type Article struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID // FK -> users.id, cascade delete
	Title       string
	Description *string
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Author is the public projection of a user attached to article reads.
type Author struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// ArticleWithAuthor is the read model returned by article queries.
type ArticleWithAuthor struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      Author    `json:"author"`
}

// ArticleList pairs a page of articles with the total match count.
type ArticleList struct {
	Data  []ArticleWithAuthor `json:"data"`
	Total int                 `json:"total"`
}

// CreateArticle is the validated payload for article creation.
type CreateArticle struct {
	Title       string
	Description *string
	PublishedAt time.Time
}

// UpdateArticle carries a partial article patch; nil fields are untouched.
type UpdateArticle struct {
	Title       *string
	Description *string
	PublishedAt *time.Time
}

// SortDir is an ordering direction in list queries.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// FilterCondition is one predicate over a single field. Exactly one operator
// is expected to be set; when several are set the first in declaration order
// wins.
type FilterCondition struct {
	Equals     *string    `json:"equals,omitempty"`
	In         []string   `json:"in,omitempty"`
	NotIn      []string   `json:"notIn,omitempty"`
	Lt         *float64   `json:"lt,omitempty"`
	Lte        *float64   `json:"lte,omitempty"`
	Gt         *float64   `json:"gt,omitempty"`
	Gte        *float64   `json:"gte,omitempty"`
	Contains   *string    `json:"contains,omitempty"`
	StartsWith *string    `json:"startsWith,omitempty"`
	EndsWith   *string    `json:"endsWith,omitempty"`
	LtDate     *time.Time `json:"ltDate,omitempty"`
	LteDate    *time.Time `json:"lteDate,omitempty"`
	GtDate     *time.Time `json:"gtDate,omitempty"`
	GteDate    *time.Time `json:"gteDate,omitempty"`
}

// ArticleFilter restricts list results. Field names mirror the read model.
type ArticleFilter struct {
	Title       *FilterCondition `json:"title,omitempty"`
	Description *FilterCondition `json:"description,omitempty"`
	PublishedAt *FilterCondition `json:"publishedAt,omitempty"`
	AuthorID    *FilterCondition `json:"authorId,omitempty"`
	CreatedAt   *FilterCondition `json:"createdAt,omitempty"`
}

// ArticleOrder selects ordering for list results.
type ArticleOrder struct {
	PublishedAt *SortDir `json:"publishedAt,omitempty"`
	Title       *SortDir `json:"title,omitempty"`
	CreatedAt   *SortDir `json:"createdAt,omitempty"`
	UpdatedAt   *SortDir `json:"updatedAt,omitempty"`
}

// ListQuery is a normalized article list request: pagination, filter, order.
// It doubles as the cache discriminant for the list cache family.
type ListQuery struct {
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Where   *ArticleFilter `json:"where,omitempty"`
	OrderBy *ArticleOrder  `json:"orderBy,omitempty"`
}

// List pagination bounds.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)
