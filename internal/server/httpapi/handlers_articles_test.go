package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/model"
)

func sampleArticle(id, authorID uuid.UUID) *model.ArticleWithAuthor {
	desc := "about go"
	return &model.ArticleWithAuthor{
		ID:          id,
		Title:       "go in practice",
		Description: &desc,
		PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Author:      model.Author{ID: authorID, FirstName: "Alice", LastName: "Smith"},
	}
}

func TestListDefaultsPagination(t *testing.T) {
	var got model.ListQuery
	articles := &fakeArticleService{
		listFn: func(_ context.Context, q model.ListQuery) (*model.ArticleList, error) {
			got = q
			return &model.ArticleList{Data: []model.ArticleWithAuthor{}, Total: 0}, nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodGet, "/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.DefaultListLimit, got.Limit)
	require.Equal(t, 0, got.Offset)
	require.Nil(t, got.Where)
	require.Nil(t, got.OrderBy)
}

func TestListParsesFilterAndOrder(t *testing.T) {
	var got model.ListQuery
	articles := &fakeArticleService{
		listFn: func(_ context.Context, q model.ListQuery) (*model.ArticleList, error) {
			got = q
			return &model.ArticleList{Data: []model.ArticleWithAuthor{}, Total: 0}, nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	where := url.QueryEscape(`{"title":{"contains":"go"}}`)
	orderBy := url.QueryEscape(`{"publishedAt":"desc"}`)
	rec := doRequest(t, h, http.MethodGet,
		"/articles?limit=5&offset=10&where="+where+"&orderBy="+orderBy, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, 5, got.Limit)
	require.Equal(t, 10, got.Offset)
	require.NotNil(t, got.Where)
	require.NotNil(t, got.Where.Title)
	require.NotNil(t, got.Where.Title.Contains)
	require.Equal(t, "go", *got.Where.Title.Contains)
	require.NotNil(t, got.OrderBy)
	require.NotNil(t, got.OrderBy.PublishedAt)
	require.Equal(t, model.SortDesc, *got.OrderBy.PublishedAt)
}

func TestListRejectsBadParams(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric limit", "limit=abc"},
		{"zero limit", "limit=0"},
		{"limit above max", "limit=101"},
		{"negative offset", "offset=-1"},
		{"broken where json", "where=%7Bnope"},
		{"broken orderBy json", "orderBy=%7Bnope"},
		{"bad sort direction", "orderBy=" + url.QueryEscape(`{"title":"sideways"}`)},
		{"numeric op on text field", "where=" + url.QueryEscape(`{"title":{"lt":3}}`)},
		{"date op on text field", "where=" + url.QueryEscape(`{"description":{"gtDate":"2025-01-01T00:00:00Z"}}`)},
		{"string op on date field", "where=" + url.QueryEscape(`{"publishedAt":{"equals":"2025-06-01"}}`)},
		{"pattern op on date field", "where=" + url.QueryEscape(`{"createdAt":{"contains":"2025"}}`)},
		{"pattern op on authorId", "where=" + url.QueryEscape(`{"authorId":{"startsWith":"ab"}}`)},
		{"non-uuid authorId equals", "where=" + url.QueryEscape(`{"authorId":{"equals":"nope"}}`)},
		{"non-uuid authorId in", "where=" + url.QueryEscape(`{"authorId":{"in":["nope"]}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, "/articles?"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListAcceptsTypedFilters(t *testing.T) {
	var got model.ListQuery
	articles := &fakeArticleService{
		listFn: func(_ context.Context, q model.ListQuery) (*model.ArticleList, error) {
			got = q
			return &model.ArticleList{Data: []model.ArticleWithAuthor{}, Total: 0}, nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	authorID := uuid.Must(uuid.NewV4())
	where := url.QueryEscape(`{"authorId":{"equals":"` + authorID.String() + `"},` +
		`"publishedAt":{"gteDate":"2025-01-01T00:00:00Z"}}`)
	rec := doRequest(t, h, http.MethodGet, "/articles?where="+where, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, got.Where)
	require.NotNil(t, got.Where.AuthorID)
	require.Equal(t, authorID.String(), *got.Where.AuthorID.Equals)
	require.NotNil(t, got.Where.PublishedAt)
	require.NotNil(t, got.Where.PublishedAt.GteDate)
}

func TestGetArticleByID(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	authorID := uuid.Must(uuid.NewV4())
	articles := &fakeArticleService{
		getByIDFn: func(_ context.Context, gotID uuid.UUID) (*model.ArticleWithAuthor, error) {
			require.Equal(t, id, gotID)
			return sampleArticle(id, authorID), nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodGet, "/articles/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.ArticleWithAuthor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, id, got.ID)
	require.Equal(t, "Alice", got.Author.FirstName)
}

func TestGetArticleInvalidID(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})

	rec := doRequest(t, h, http.MethodGet, "/articles/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArticleNotFound(t *testing.T) {
	articles := &fakeArticleService{
		getByIDFn: func(context.Context, uuid.UUID) (*model.ArticleWithAuthor, error) {
			return nil, errs.ErrNotFound
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodGet, "/articles/"+uuid.Must(uuid.NewV4()).String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Article not found", decodeError(t, rec).Message)
}

func TestCreateArticle(t *testing.T) {
	authorID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	articles := &fakeArticleService{
		createFn: func(_ context.Context, data model.CreateArticle, gotAuthor uuid.UUID) (*model.ArticleWithAuthor, error) {
			require.Equal(t, authorID, gotAuthor)
			require.Equal(t, "go in practice", data.Title)
			return sampleArticle(id, authorID), nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	body := map[string]any{
		"title":       "go in practice",
		"description": "about go",
		"publishedAt": "2025-06-01T12:00:00Z",
	}
	rec := doRequest(t, h, http.MethodPost, "/articles", body,
		header{"Authorization", "Bearer " + accessToken(t, authorID)})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.ArticleWithAuthor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, id, got.ID)
}

func TestCreateArticleValidation(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})
	auth := header{"Authorization", "Bearer " + accessToken(t, uuid.Must(uuid.NewV4()))}

	rec := doRequest(t, h, http.MethodPost, "/articles",
		map[string]any{"publishedAt": "2025-06-01T12:00:00Z"}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "title should not be empty", decodeError(t, rec).Message)

	rec = doRequest(t, h, http.MethodPost, "/articles",
		map[string]any{"title": "x"}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "publishedAt should not be empty", decodeError(t, rec).Message)
}

func TestUpdateArticle(t *testing.T) {
	authorID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	articles := &fakeArticleService{
		updateFn: func(_ context.Context, gotID uuid.UUID, patch model.UpdateArticle, gotAuthor uuid.UUID) (*model.ArticleWithAuthor, error) {
			require.Equal(t, id, gotID)
			require.Equal(t, authorID, gotAuthor)
			require.NotNil(t, patch.Title)
			require.Equal(t, "revised", *patch.Title)
			require.Nil(t, patch.Description)
			return sampleArticle(id, authorID), nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodPatch, "/articles/"+id.String(),
		map[string]any{"title": "revised"},
		header{"Authorization", "Bearer " + accessToken(t, authorID)})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateArticleEmptyPatch(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeArticleService{})

	rec := doRequest(t, h, http.MethodPatch, "/articles/"+uuid.Must(uuid.NewV4()).String(),
		map[string]any{},
		header{"Authorization", "Bearer " + accessToken(t, uuid.Must(uuid.NewV4()))})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "at least one field must be provided", decodeError(t, rec).Message)
}

func TestUpdateArticleForbidden(t *testing.T) {
	articles := &fakeArticleService{
		updateFn: func(context.Context, uuid.UUID, model.UpdateArticle, uuid.UUID) (*model.ArticleWithAuthor, error) {
			return nil, errs.ErrForbidden
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodPatch, "/articles/"+uuid.Must(uuid.NewV4()).String(),
		map[string]any{"title": "revised"},
		header{"Authorization", "Bearer " + accessToken(t, uuid.Must(uuid.NewV4()))})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "You are not permitted to update this article", decodeError(t, rec).Message)
}

func TestDeleteArticle(t *testing.T) {
	authorID := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	articles := &fakeArticleService{
		deleteFn: func(_ context.Context, gotID, gotAuthor uuid.UUID) error {
			require.Equal(t, id, gotID)
			require.Equal(t, authorID, gotAuthor)
			return nil
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodDelete, "/articles/"+id.String(), nil,
		header{"Authorization", "Bearer " + accessToken(t, authorID)})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteArticleForbidden(t *testing.T) {
	articles := &fakeArticleService{
		deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
			return errs.ErrForbidden
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodDelete, "/articles/"+uuid.Must(uuid.NewV4()).String(), nil,
		header{"Authorization", "Bearer " + accessToken(t, uuid.Must(uuid.NewV4()))})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "You are not permitted to delete this article", decodeError(t, rec).Message)
}

func TestDeleteArticleNotFound(t *testing.T) {
	articles := &fakeArticleService{
		deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
			return errs.ErrNotFound
		},
	}
	h := newTestRouter(&fakeAuthService{}, articles)

	rec := doRequest(t, h, http.MethodDelete, "/articles/"+uuid.Must(uuid.NewV4()).String(), nil,
		header{"Authorization", "Bearer " + accessToken(t, uuid.Must(uuid.NewV4()))})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Article not found", decodeError(t, rec).Message)
}
