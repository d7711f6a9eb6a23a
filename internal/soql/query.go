package soql

import (
	"sort"
	"strconv"
	"strings"
)

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Query is a single SELECT statement.
type Query struct {
	Object    string
	Fields    []string
	Where     Condition
	OrderBy   []Order
	Limit     int
	Offset    int
	CountOnly bool
}

// String renders the statement.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.CountOnly {
		b.WriteString("COUNT()")
	} else {
		b.WriteString(strings.Join(q.Fields, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(q.Object)

	if q.Where != nil {
		if where := q.Where.SOQL(); where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
		}
	}
	if q.CountOnly {
		return b.String()
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms = append(terms, o.Field+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(q.Offset))
	}
	return b.String()
}

// Apply evaluates the query against in-memory records. It returns the selected page and the
// total number of matching records before LIMIT/OFFSET.
func (q Query) Apply(records []map[string]any) ([]map[string]any, int) {
	matched := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if q.Where == nil || q.Where.Match(r) {
			matched = append(matched, r)
		}
	}
	total := len(matched)
	if q.CountOnly {
		return nil, total
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range q.OrderBy {
				a, _ := Lookup(matched[i], o.Field)
				b, _ := Lookup(matched[j], o.Field)
				as, bs := stringify(a), stringify(b)
				if as == bs {
					continue
				}
				if o.Desc {
					return as > bs
				}
				return as < bs
			}
			return false
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []map[string]any{}, total
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]map[string]any, 0, len(matched))
	for _, r := range matched {
		out = append(out, project(r, q.Fields))
	}
	return out, total
}

func project(record map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return record
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		root, _, _ := strings.Cut(f, ".")
		if v, ok := record[root]; ok {
			out[root] = v
		}
	}
	return out
}
