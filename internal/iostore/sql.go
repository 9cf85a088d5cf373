package iostore

import (
	"fmt"
	"strings"

	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/eufgis/fgrdb/pkg/store"
)

// numericRe matches decimal strings that can be cast to float8.
const numericRe = `^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`

// sqlArgs collects bound parameters of a statement.
type sqlArgs struct {
	vals []any
}

// add appends a parameter and returns its placeholder.
func (a *sqlArgs) add(v any) string {
	a.vals = append(a.vals, v)
	return fmt.Sprintf("$%d", len(a.vals))
}

// renderer converts predicates into SQL conditions over the doc column.
// Field names and values are always bound, only placeholders and fixed
// SQL are written into the statement.
type renderer struct {
	args       *sqlArgs
	textConfig string
}

func newRenderer(textConfig string) *renderer {
	return &renderer{args: &sqlArgs{}, textConfig: textConfig}
}

// where renders scope predicates joined by AND together with query
// predicates joined by the query operator.
func (r *renderer) where(q store.Query) string {
	var parts []string
	for _, p := range q.Scope {
		parts = append(parts, r.predicate(p))
	}

	if len(q.Predicates) > 0 {
		sep := " AND "
		if q.Op == filter.Or {
			sep = " OR "
		}
		preds := make([]string, len(q.Predicates))
		for i, p := range q.Predicates {
			preds[i] = r.predicate(p)
		}
		parts = append(parts, "("+strings.Join(preds, sep)+")")
	}

	if len(parts) == 0 {
		return "TRUE"
	}
	return strings.Join(parts, " AND ")
}

func (r *renderer) predicate(p filter.Predicate) string {
	switch p.Kind {
	case filter.KindIn, filter.KindAny:
		f := r.field(p.Field)
		return fmt.Sprintf(
			"(jsonb_typeof(%[1]s) IN ('string', 'array') AND %[1]s ?| %[2]s::text[])",
			f, r.args.add(p.Values),
		)

	case filter.KindAll:
		f := r.field(p.Field)
		return fmt.Sprintf(
			"(jsonb_typeof(%[1]s) IN ('string', 'array') AND %[1]s ?& %[2]s::text[])",
			f, r.args.add(p.Values),
		)

	case filter.KindLike:
		f := r.field(p.Field)
		return fmt.Sprintf(
			"(jsonb_typeof(%[1]s) = 'string' AND (%[1]s #>> '{}') LIKE %[2]s::text)",
			f, r.args.add(likePattern(p.Pattern)),
		)

	case filter.KindText:
		if len(p.Tokens) == 0 {
			return "FALSE"
		}
		cfg := r.args.add(r.textConfig)
		text := r.text(p.Field, p.Language)
		// any token matches
		query := r.args.add(strings.Join(p.Tokens, " | "))
		return fmt.Sprintf(
			"(to_tsvector(%[1]s::text::regconfig, %[2]s) @@ to_tsquery(%[1]s::text::regconfig, %[3]s::text))",
			cfg, text, query,
		)

	case filter.KindRange:
		var conds []string
		if p.Lower != nil {
			conds = append(conds, r.bound(p.Field, p.Lower, true))
		}
		if p.Upper != nil {
			upper := p.UpperField
			if upper == "" {
				upper = p.Field
			}
			conds = append(conds, r.bound(upper, p.Upper, false))
		}
		if len(conds) == 0 {
			return "FALSE"
		}
		return "(" + strings.Join(conds, " AND ") + ")"
	}
	return "FALSE"
}

// likePattern escapes a trailing lone backslash, which PostgreSQL
// rejects, so it matches a literal backslash.
func likePattern(p string) string {
	escaped := false
	for _, r := range p {
		escaped = !escaped && r == '\\'
	}
	if escaped {
		return p + `\`
	}
	return p
}

// field renders the JSONB value of a document field.
func (r *renderer) field(name string) string {
	return fmt.Sprintf("(doc -> %s::text)", r.args.add(name))
}

// text flattens a string, a list of strings or a multilingual object
// into one text.
func (r *renderer) text(name, lang string) string {
	f := r.field(name)
	obj := fmt.Sprintf(
		"(SELECT string_agg(value, ' ') FROM jsonb_each_text(%s))", f,
	)
	if lang != "" {
		obj = fmt.Sprintf("(%s ->> %s::text)", f, r.args.add(lang))
	}
	return fmt.Sprintf(`CASE jsonb_typeof(%[1]s)
  WHEN 'string' THEN %[1]s #>> '{}'
  WHEN 'array' THEN (SELECT string_agg(value, ' ') FROM jsonb_array_elements_text(%[1]s))
  WHEN 'object' THEN %[2]s
  ELSE ''
END`, f, obj)
}

// bound compares strings byte-wise and numbers numerically. Numeric
// bounds also accept strings that look like numbers.
func (r *renderer) bound(name string, b *filter.Bound, lower bool) string {
	op := "<"
	if lower {
		op = ">"
	}
	if b.Inclusive {
		op += "="
	}
	f := r.field(name)

	switch v := b.Value.(type) {
	case string:
		return fmt.Sprintf(
			`(jsonb_typeof(%[1]s) = 'string' AND (%[1]s #>> '{}') COLLATE "C" %[2]s %[3]s::text)`,
			f, op, r.args.add(v),
		)
	case float64:
		return fmt.Sprintf(`(CASE
  WHEN jsonb_typeof(%[1]s) = 'number' THEN (%[1]s #>> '{}')::float8
  WHEN jsonb_typeof(%[1]s) = 'string' AND (%[1]s #>> '{}') ~ '%[4]s' THEN (%[1]s #>> '{}')::float8
END %[2]s %[3]s::float8)`,
			f, op, r.args.add(v), numericRe,
		)
	}
	return "FALSE"
}

// orderBy renders sort keys: missing values first, then numbers, then
// strings, all reversed for descending order. Ties keep key order.
func (r *renderer) orderBy(s store.Sort) string {
	dir := ""
	if s.Desc {
		dir = " DESC"
	}

	var res []string
	for _, name := range s.Fields {
		f := r.field(name)
		res = append(res,
			fmt.Sprintf(`CASE jsonb_typeof(%[1]s)
  WHEN 'number' THEN 1
  WHEN 'string' THEN 2
  WHEN 'null' THEN 0
  WHEN 'object' THEN 3
  WHEN 'array' THEN 3
  WHEN 'boolean' THEN 3
  ELSE 0
END%[2]s`, f, dir),
			fmt.Sprintf(
				"(CASE WHEN jsonb_typeof(%[1]s) = 'number' THEN (%[1]s #>> '{}')::float8 END)%[2]s",
				f, dir),
			fmt.Sprintf(
				`(CASE WHEN jsonb_typeof(%[1]s) = 'string' THEN %[1]s #>> '{}' END) COLLATE "C"%[2]s`,
				f, dir),
		)
	}
	res = append(res, "key")
	return strings.Join(res, ", ")
}

// searchSQL renders a search over a document table. The page is taken
// in key order and sorted afterwards.
func searchSQL(
	table, cols string,
	q store.Query,
	textConfig string,
) (string, []any) {
	r := newRenderer(textConfig)
	where := r.where(q)

	var limit any
	if q.Page.Limit > 0 {
		limit = q.Page.Limit
	}
	offset := r.args.add(max(q.Page.Start, 0))
	lim := r.args.add(limit)
	order := r.orderBy(q.Sort)

	sql := fmt.Sprintf(`SELECT %[1]s FROM (
  SELECT key, rev, doc FROM %[2]s
  WHERE %[3]s
  ORDER BY key
  OFFSET %[4]s::bigint LIMIT %[5]s::bigint
) AS page
ORDER BY %[6]s`, cols, table, where, offset, lim, order)

	return sql, r.args.vals
}
