package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/okarpov/articles-api/internal/model"
	"github.com/okarpov/articles-api/internal/service"
)

// ArticleHandler wires the article service into HTTP endpoints.
type ArticleHandler struct {
	articles service.ArticleService
}

// NewArticleHandler constructs an ArticleHandler.
func NewArticleHandler(articles service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// List handles GET /articles. Pagination comes as plain limit/offset params;
// where and orderBy are JSON-encoded params matching the filter DSL.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	q, msg := parseListQuery(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	list, err := h.articles.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, err, "Article not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByID handles GET /articles/{id}.
func (h *ArticleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	a, err := h.articles.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Article not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create handles POST /articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.articles.Create(r.Context(), req.toModel(), authorID)
	if err != nil {
		writeServiceError(w, err, "Article not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PATCH /articles/{id}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	authorID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.articles.Update(r.Context(), id, req.toModel(), authorID)
	if err != nil {
		writeServiceError(w, err, "Article not found", "You are not permitted to update this article")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authorID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), id, authorID); err != nil {
		writeServiceError(w, err, "Article not found", "You are not permitted to delete this article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func articleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseListQuery(r *http.Request) (model.ListQuery, string) {
	q := model.ListQuery{Limit: model.DefaultListLimit, Offset: 0}
	params := r.URL.Query()

	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return q, "limit must be a positive number"
		}
		if n > model.MaxListLimit {
			return q, "limit must not be greater than " + strconv.Itoa(model.MaxListLimit)
		}
		q.Limit = n
	}
	if raw := params.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, "offset must not be less than 0"
		}
		q.Offset = n
	}
	if raw := params.Get("where"); raw != "" {
		var f model.ArticleFilter
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return q, "where must be a valid filter object"
		}
		if msg := validateFilter(&f); msg != "" {
			return q, msg
		}
		q.Where = &f
	}
	if raw := params.Get("orderBy"); raw != "" {
		var o model.ArticleOrder
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return q, "orderBy must be a valid order object"
		}
		if msg := validateOrder(&o); msg != "" {
			return q, msg
		}
		q.OrderBy = &o
	}
	return q, ""
}

// validateFilter checks each condition's operators against the field's type,
// so a mismatched filter fails here instead of inside the database.
func validateFilter(f *model.ArticleFilter) string {
	for _, fc := range []struct {
		name string
		cond *model.FilterCondition
	}{
		{"title", f.Title},
		{"description", f.Description},
	} {
		if fc.cond == nil {
			continue
		}
		c := fc.cond
		if c.Lt != nil || c.Lte != nil || c.Gt != nil || c.Gte != nil ||
			c.LtDate != nil || c.LteDate != nil || c.GtDate != nil || c.GteDate != nil {
			return fc.name + " supports only equals, in, notIn, contains, startsWith and endsWith"
		}
	}

	for _, fc := range []struct {
		name string
		cond *model.FilterCondition
	}{
		{"publishedAt", f.PublishedAt},
		{"createdAt", f.CreatedAt},
	} {
		if fc.cond == nil {
			continue
		}
		c := fc.cond
		if c.Equals != nil || len(c.In) > 0 || len(c.NotIn) > 0 ||
			c.Lt != nil || c.Lte != nil || c.Gt != nil || c.Gte != nil ||
			c.Contains != nil || c.StartsWith != nil || c.EndsWith != nil {
			return fc.name + " supports only ltDate, lteDate, gtDate and gteDate"
		}
	}

	if c := f.AuthorID; c != nil {
		if c.Lt != nil || c.Lte != nil || c.Gt != nil || c.Gte != nil ||
			c.Contains != nil || c.StartsWith != nil || c.EndsWith != nil ||
			c.LtDate != nil || c.LteDate != nil || c.GtDate != nil || c.GteDate != nil {
			return "authorId supports only equals, in and notIn"
		}
		vals := c.In
		if c.Equals != nil {
			vals = append([]string{*c.Equals}, vals...)
		}
		vals = append(vals, c.NotIn...)
		for _, v := range vals {
			if _, err := uuid.FromString(v); err != nil {
				return "authorId values must be UUIDs"
			}
		}
	}
	return ""
}

func validateOrder(o *model.ArticleOrder) string {
	for _, d := range []*model.SortDir{o.PublishedAt, o.Title, o.CreatedAt, o.UpdatedAt} {
		if d != nil && *d != model.SortAsc && *d != model.SortDesc {
			return "order direction must be asc or desc"
		}
	}
	return ""
}
