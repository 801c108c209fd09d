package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/okarpov/articles-api/internal/cache"
	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/model"
	"github.com/okarpov/articles-api/internal/repository"
)

// ArticleService serves article reads through the cache and keeps the cache
// coherent with the store on every mutation. The store is authoritative; the
// cache is best-effort and may never fail a request.
type ArticleService interface {
	// GetByID returns one article, from cache when fresh.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error)
	// List returns a filtered page, cached per normalized query.
	List(ctx context.Context, q model.ListQuery) (*model.ArticleList, error)
	// Create persists a new article and sweeps the list cache.
	Create(ctx context.Context, data model.CreateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error)
	// Update patches an author-owned article and invalidates its cache entries.
	Update(ctx context.Context, id uuid.UUID, data model.UpdateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error)
	// Delete removes an author-owned article and invalidates its cache entries.
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type ArticleServiceImpl struct {
	articles repository.ArticleRepository
	cache    cache.Cache
	ttl      time.Duration
	log      *zap.Logger
}

// NewArticleService constructs ArticleService with the cache entry TTL.
func NewArticleService(articles repository.ArticleRepository, c cache.Cache, ttl time.Duration, log *zap.Logger) *ArticleServiceImpl {
	return &ArticleServiceImpl{articles: articles, cache: c, ttl: ttl, log: log}
}

// GetByID is the read-through path: a hit is trusted as-is, a miss goes to
// the store and populates the cache best-effort.
func (s *ArticleServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.ArticleWithAuthor, error) {
	key := cache.ArticleKey(id)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var a model.ArticleWithAuthor
		if jerr := json.Unmarshal([]byte(raw), &a); jerr == nil {
			return &a, nil
		}
		s.log.Warn("corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	a, err := s.articles.FindByIDWithAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, key, a)
	return a, nil
}

// List mirrors GetByID with the query fingerprint as the key.
func (s *ArticleServiceImpl) List(ctx context.Context, q model.ListQuery) (*model.ArticleList, error) {
	key, err := cache.ArticleListKey(q)
	if err != nil {
		return nil, err
	}
	if raw, cerr := s.cache.Get(ctx, key); cerr == nil {
		var list model.ArticleList
		if jerr := json.Unmarshal([]byte(raw), &list); jerr == nil {
			return &list, nil
		}
		s.log.Warn("corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(cerr, cache.ErrCacheMiss) {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(cerr))
	}

	items, total, err := s.articles.FindAndCountAll(ctx, q)
	if err != nil {
		return nil, err
	}
	list := &model.ArticleList{Data: items, Total: total}
	s.populate(ctx, key, list)
	return list, nil
}

// Create persists the article and, once the write is committed, sweeps the
// whole list family: a new row can change any list's contents or count.
func (s *ArticleServiceImpl) Create(ctx context.Context, data model.CreateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error) {
	id, err := s.articles.Create(ctx, authorID, data)
	if err != nil {
		s.log.Error("create article", zap.Error(err))
		return nil, errs.ErrInternal
	}
	created, err := s.articles.FindByIDWithAuthor(ctx, id)
	if err != nil {
		return nil, errs.ErrInternal
	}

	s.log.Info("article created", zap.String("articleID", id.String()))
	s.invalidateLists(ctx)
	return created, nil
}

// Update requires ownership: missing articles are 404, foreign articles 403.
// Invalidation runs only after the scoped update committed.
func (s *ArticleServiceImpl) Update(ctx context.Context, id uuid.UUID, data model.UpdateArticle, authorID uuid.UUID) (*model.ArticleWithAuthor, error) {
	existing, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != authorID {
		return nil, errs.ErrForbidden
	}

	n, err := s.articles.Update(ctx, id, authorID, data)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errs.ErrNotFound
	}
	updated, err := s.articles.FindByIDWithAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// Delete mirrors Update's ownership policy; a scoped delete that touches
// nothing after the ownership check is a store inconsistency.
func (s *ArticleServiceImpl) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	existing, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return errs.ErrForbidden
	}

	n, err := s.articles.Delete(ctx, id, authorID)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrInternal
	}

	s.invalidate(ctx, id)
	return nil
}

// populate writes a cache entry best-effort; failures are logged, never
// returned, and the entry self-expires via TTL regardless.
func (s *ArticleServiceImpl) populate(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.SetTTL(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops the single-article key and sweeps the list family.
func (s *ArticleServiceImpl) invalidate(ctx context.Context, id uuid.UUID) {
	if _, err := s.cache.Del(ctx, cache.ArticleKey(id)); err != nil {
		s.log.Warn("cache del failed", zap.String("articleID", id.String()), zap.Error(err))
	}
	s.invalidateLists(ctx)
}

// invalidateLists drops every list entry. Fire-and-forget: TTL bounds the
// staleness if the sweep fails.
func (s *ArticleServiceImpl) invalidateLists(ctx context.Context) {
	keys, err := s.cache.Keys(ctx, cache.ArticleListPattern())
	if err != nil {
		s.log.Warn("cache keys failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if _, err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn("cache sweep failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
