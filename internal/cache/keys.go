package cache

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gofrs/uuid/v5"

	"github.com/okarpov/articles-api/internal/model"
)

// Key families under a shared namespace prefix. Single-article entries are
// invalidated precisely; list entries only by prefix sweep, since the set of
// query shapes is unbounded.
const (
	keyPrefix         = "qtim:"
	articlePrefix     = "article"
	articleListPrefix = "article_list"
)

// ArticleKey returns the cache key for a single article.
func ArticleKey(id uuid.UUID) string {
	return keyPrefix + articlePrefix + ":" + id.String()
}

// ArticleListPattern matches every list-cache entry.
func ArticleListPattern() string {
	return keyPrefix + articleListPrefix + ":*"
}

// ArticleListKey returns the cache key for a list query: the whole normalized
// query is the discriminant. Serialization goes through the ListQuery struct,
// so field order is fixed and the fingerprint is deterministic for a given
// logical query.
func ArticleListKey(q model.ListQuery) (string, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return keyPrefix + articleListPrefix + ":" + base64.StdEncoding.EncodeToString(raw), nil
}
