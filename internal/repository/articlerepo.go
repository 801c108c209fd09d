package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/okarpov/articles-api/internal/model"
)

// ArticleRepository provides CRUD access to articles.
type ArticleRepository interface {
	// FindByID loads a bare article row by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	// FindByIDWithAuthor loads the article read model joined with its author.
	FindByIDWithAuthor(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error)
	// FindAndCountAll returns a filtered, ordered page plus the total count.
	FindAndCountAll(ctx context.Context, q model.ListQuery) ([]model.ArticleWithAuthor, int, error)
	// Create inserts a new article and returns its ID.
	Create(ctx context.Context, authorID uuid.UUID, data model.CreateArticle) (uuid.UUID, error)
	// Update applies a patch scoped to (id, authorID). Returns rows affected.
	Update(ctx context.Context, id, authorID uuid.UUID, patch model.UpdateArticle) (int64, error)
	// Delete removes an article scoped to (id, authorID). Returns rows affected.
	Delete(ctx context.Context, id, authorID uuid.UUID) (int64, error)
}
