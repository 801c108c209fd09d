package postgres

import (
	"fmt"
	"strings"

	"github.com/okarpov/articles-api/internal/model"
)

// filterColumns maps read-model field names to article table columns.
// Anything outside this set never reaches SQL.
var filterColumns = []struct {
	name string
	col  string
	cond func(f *model.ArticleFilter) *model.FilterCondition
}{
	{"title", "a.title", func(f *model.ArticleFilter) *model.FilterCondition { return f.Title }},
	{"description", "a.description", func(f *model.ArticleFilter) *model.FilterCondition { return f.Description }},
	{"publishedAt", "a.published_at", func(f *model.ArticleFilter) *model.FilterCondition { return f.PublishedAt }},
	{"authorId", "a.author_id", func(f *model.ArticleFilter) *model.FilterCondition { return f.AuthorID }},
	{"createdAt", "a.created_at", func(f *model.ArticleFilter) *model.FilterCondition { return f.CreatedAt }},
}

var orderColumns = []struct {
	col string
	dir func(o *model.ArticleOrder) *model.SortDir
}{
	{"a.published_at", func(o *model.ArticleOrder) *model.SortDir { return o.PublishedAt }},
	{"a.title", func(o *model.ArticleOrder) *model.SortDir { return o.Title }},
	{"a.created_at", func(o *model.ArticleOrder) *model.SortDir { return o.CreatedAt }},
	{"a.updated_at", func(o *model.ArticleOrder) *model.SortDir { return o.UpdatedAt }},
}

// buildWhere renders filter conditions as ANDed predicates with positional
// placeholders starting at nextArg. Returns the fragment (empty when no
// conditions apply) and the collected arguments.
func buildWhere(f *model.ArticleFilter, nextArg int) (string, []any) {
	if f == nil {
		return "", nil
	}
	var preds []string
	var args []any

	add := func(pred string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i := range vals {
			placeholders[i] = fmt.Sprintf("$%d", nextArg)
			args = append(args, vals[i])
			nextArg++
		}
		preds = append(preds, fmt.Sprintf(pred, placeholders...))
	}

	for _, fc := range filterColumns {
		c := fc.cond(f)
		if c == nil {
			continue
		}
		col := fc.col
		switch {
		case c.Equals != nil:
			add(col+" = %s", *c.Equals)
		case len(c.In) > 0:
			add(col+" = ANY(%s)", c.In)
		case len(c.NotIn) > 0:
			add("NOT ("+col+" = ANY(%s))", c.NotIn)
		case c.Lt != nil:
			add(col+" < %s", *c.Lt)
		case c.Lte != nil:
			add(col+" <= %s", *c.Lte)
		case c.Gt != nil:
			add(col+" > %s", *c.Gt)
		case c.Gte != nil:
			add(col+" >= %s", *c.Gte)
		case c.Contains != nil:
			add(col+" ILIKE %s", "%"+*c.Contains+"%")
		case c.StartsWith != nil:
			add(col+" ILIKE %s", *c.StartsWith+"%")
		case c.EndsWith != nil:
			add(col+" ILIKE %s", "%"+*c.EndsWith)
		case c.LtDate != nil:
			add(col+" < %s", *c.LtDate)
		case c.LteDate != nil:
			add(col+" <= %s", *c.LteDate)
		case c.GtDate != nil:
			add(col+" > %s", *c.GtDate)
		case c.GteDate != nil:
			add(col+" >= %s", *c.GteDate)
		}
	}

	if len(preds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(preds, " AND "), args
}

// buildOrderBy renders the ORDER BY clause; default is newest first.
func buildOrderBy(o *model.ArticleOrder) string {
	if o == nil {
		return "ORDER BY a.created_at DESC"
	}
	var parts []string
	for _, oc := range orderColumns {
		d := oc.dir(o)
		if d == nil {
			continue
		}
		dir := "ASC"
		if *d == model.SortDesc {
			dir = "DESC"
		}
		parts = append(parts, oc.col+" "+dir)
	}
	if len(parts) == 0 {
		return "ORDER BY a.created_at DESC"
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}
