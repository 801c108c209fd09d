package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/model"
)

// ArticleRepo implements ArticleRepository using PostgreSQL.
type ArticleRepo struct{ db *DB }

// NewArticleRepo constructs an article repository.
func NewArticleRepo(db *DB) *ArticleRepo { return &ArticleRepo{db: db} }

// FindByID selects a bare article row, ignoring soft-deleted rows.
func (r *ArticleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	const q = `
SELECT id, author_id, title, description, published_at, created_at, updated_at
FROM articles
WHERE id=$1 AND deleted_at IS NULL`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var a model.Article
	if err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Description, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

const articleWithAuthorSelect = `
SELECT a.id, a.title, a.description, a.published_at, a.created_at,
       u.id, u.first_name, u.last_name
FROM articles a
JOIN users u ON u.id = a.author_id`

// FindByIDWithAuthor selects the article read model joined with its author.
func (r *ArticleRepo) FindByIDWithAuthor(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error) {
	q := articleWithAuthorSelect + `
WHERE a.id=$1 AND a.deleted_at IS NULL`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var a model.ArticleWithAuthor
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.PublishedAt, &a.CreatedAt,
		&a.Author.ID, &a.Author.FirstName, &a.Author.LastName)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

// FindAndCountAll returns a filtered, ordered page plus the total match count.
func (r *ArticleRepo) FindAndCountAll(ctx context.Context, query model.ListQuery) ([]model.ArticleWithAuthor, int, error) {
	where, args := buildWhere(query.Where, 1)

	countQ := `SELECT count(*) FROM articles a WHERE a.deleted_at IS NULL` + where
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	pageQ := fmt.Sprintf(`%s
WHERE a.deleted_at IS NULL%s
%s
LIMIT $%d OFFSET $%d`, articleWithAuthorSelect, where, buildOrderBy(query.OrderBy), len(args)+1, len(args)+2)
	rows, err := r.db.Pool.Query(ctx, pageQ, append(args, query.Limit, query.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("select articles: %w", err)
	}
	defer rows.Close()

	items := make([]model.ArticleWithAuthor, 0, query.Limit)
	for rows.Next() {
		var a model.ArticleWithAuthor
		err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.PublishedAt, &a.CreatedAt,
			&a.Author.ID, &a.Author.FirstName, &a.Author.LastName)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a new article and returns the generated ID.
func (r *ArticleRepo) Create(ctx context.Context, authorID uuid.UUID, data model.CreateArticle) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	const q = `
INSERT INTO articles (id, author_id, title, description, published_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Pool.Exec(ctx, q, id, authorID, data.Title, data.Description, data.PublishedAt); err != nil {
		return uuid.Nil, fmt.Errorf("insert article: %w", err)
	}
	return id, nil
}

// Update applies the non-nil patch fields scoped to (id, authorID).
func (r *ArticleRepo) Update(ctx context.Context, id, authorID uuid.UUID, patch model.UpdateArticle) (int64, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, authorID}
	next := 3

	set := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, next))
		args = append(args, v)
		next++
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.PublishedAt != nil {
		set("published_at", *patch.PublishedAt)
	}

	q := fmt.Sprintf(`
UPDATE articles
SET %s
WHERE id = $1 AND author_id = $2 AND deleted_at IS NULL`, strings.Join(sets, ", "))
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes an article scoped to (id, authorID).
func (r *ArticleRepo) Delete(ctx context.Context, id, authorID uuid.UUID) (int64, error) {
	const q = `DELETE FROM articles WHERE id = $1 AND author_id = $2`
	tag, err := r.db.Pool.Exec(ctx, q, id, authorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
