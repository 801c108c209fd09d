package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/articles-api/internal/model"
)

func strp(s string) *string               { return &s }
func dirp(d model.SortDir) *model.SortDir { return &d }

func TestBuildWhere_Operators(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &model.ArticleFilter{
		Title:       &model.FilterCondition{StartsWith: strp("Go")},
		Description: &model.FilterCondition{EndsWith: strp("tail")},
		PublishedAt: &model.FilterCondition{GteDate: &ts},
		AuthorID:    &model.FilterCondition{In: []string{"a", "b"}},
		CreatedAt:   &model.FilterCondition{LtDate: &ts},
	}

	where, args := buildWhere(f, 1)
	require.Equal(t,
		" AND a.title ILIKE $1 AND a.description ILIKE $2 AND a.published_at >= $3"+
			" AND a.author_id = ANY($4) AND a.created_at < $5",
		where)
	require.Len(t, args, 5)
	require.Equal(t, "Go%", args[0])
	require.Equal(t, "%tail", args[1])
}

func TestBuildWhere_InAndNotIn(t *testing.T) {
	t.Parallel()

	where, args := buildWhere(&model.ArticleFilter{
		AuthorID: &model.FilterCondition{In: []string{"x"}},
	}, 1)
	require.Equal(t, " AND a.author_id = ANY($1)", where)
	require.Equal(t, []any{[]string{"x"}}, args)

	where, args = buildWhere(&model.ArticleFilter{
		AuthorID: &model.FilterCondition{NotIn: []string{"x", "y"}},
	}, 3)
	require.Equal(t, " AND NOT (a.author_id = ANY($3))", where)
	require.Len(t, args, 1)
}

func TestBuildWhere_SkipsEmptyOperands(t *testing.T) {
	t.Parallel()

	where, args := buildWhere(&model.ArticleFilter{
		Title:    &model.FilterCondition{},
		AuthorID: &model.FilterCondition{In: []string{}},
	}, 1)
	require.Empty(t, where)
	require.Empty(t, args)

	where, _ = buildWhere(nil, 1)
	require.Empty(t, where)
}

func TestBuildWhere_FirstOperatorWins(t *testing.T) {
	t.Parallel()

	eq := "exact"
	where, args := buildWhere(&model.ArticleFilter{
		Title: &model.FilterCondition{Equals: &eq, Contains: strp("partial")},
	}, 1)
	require.Equal(t, " AND a.title = $1", where)
	require.Equal(t, []any{"exact"}, args)
}

func TestBuildOrderBy(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ORDER BY a.created_at DESC", buildOrderBy(nil))
	require.Equal(t, "ORDER BY a.created_at DESC", buildOrderBy(&model.ArticleOrder{}))

	got := buildOrderBy(&model.ArticleOrder{
		PublishedAt: dirp(model.SortDesc),
		Title:       dirp(model.SortAsc),
	})
	require.Equal(t, "ORDER BY a.published_at DESC, a.title ASC", got)
}
