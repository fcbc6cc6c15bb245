// Package listquery turns list query parameters into filter, search and ordering
// clauses, restricted to what each resource declares.
package listquery

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Query parameter names shared by every list endpoint.
const (
	SearchParam   = "search"
	OrderingParam = "ordering"
	LimitParam    = "limit"
	OffsetParam   = "offset"

	DefaultLimit = 20
	MaxLimit     = 100
)

// Kind is the value type a filter parses its parameter as.
type Kind int

const (
	String Kind = iota
	Int
)

// Filter maps one query key to a condition. Where, when set, is used verbatim
// with the value as its single placeholder; otherwise Column = value.
type Filter struct {
	Column string
	Where  string
	Kind   Kind
}

// Spec declares what a resource may be filtered, searched and ordered by.
type Spec struct {
	Filters map[string]Filter
	// Search entries are columns matched case-insensitively, or predicates
	// containing one placeholder that receives the lowered %term% pattern.
	Search []string
	// Ordering maps a public ordering key to its column.
	Ordering map[string]string
	// Default is used when no valid ordering key was requested, e.g. "-published_date".
	Default string
	// TieBreak is appended to every ordering, e.g. "posts.id".
	TieBreak string
}

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset, clamping them to sane bounds.
func ParsePage(q url.Values) Page {
	p := Page{Limit: DefaultLimit}
	if v, err := strconv.Atoi(q.Get(LimitParam)); err == nil && v > 0 {
		p.Limit = min(v, MaxLimit)
	}
	if v, err := strconv.Atoi(q.Get(OffsetParam)); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}

// ParseOptionalPage is ParsePage for endpoints that return the whole set
// unless the caller asks for a window. Without limit or offset it returns
// the zero Page.
func ParseOptionalPage(q url.Values) Page {
	if q.Get(LimitParam) == "" && q.Get(OffsetParam) == "" {
		return Page{}
	}
	return ParsePage(q)
}

// Scope applies the window to db. A zero Limit leaves the query unbounded.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	return db.Limit(p.Limit).Offset(p.Offset)
}

// Apply scopes db by the filters, search term, ordering and page found in q.
// Undeclared keys and malformed int values are ignored.
func (s Spec) Apply(db *gorm.DB, q url.Values) *gorm.DB {
	db = s.Filter(db, q)
	db = s.ApplySearch(db, q.Get(SearchParam))
	db = s.Order(db, q.Get(OrderingParam))
	return ParsePage(q).Scope(db)
}

// Filter applies every declared filter present in q.
func (s Spec) Filter(db *gorm.DB, q url.Values) *gorm.DB {
	keys := make([]string, 0, len(s.Filters))
	for key := range s.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f := s.Filters[key]
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		var value any = raw
		if f.Kind == Int {
			n, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			value = n
		}
		if f.Where != "" {
			db = db.Where(f.Where, value)
		} else {
			db = db.Where(f.Column+" = ?", value)
		}
	}
	return db
}

// ApplySearch ORs a case-insensitive substring match across the search columns.
func (s Spec) ApplySearch(db *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(s.Search) == 0 {
		return db
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	clauses := make([]string, 0, len(s.Search))
	args := make([]any, 0, len(s.Search))
	for _, col := range s.Search {
		if strings.Contains(col, "?") {
			clauses = append(clauses, col)
		} else {
			clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		}
		args = append(args, pattern)
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// Order applies a comma-separated list of ordering keys; "-key" sorts descending.
func (s Spec) Order(db *gorm.DB, raw string) *gorm.DB {
	terms := s.orderTerms(raw)
	if len(terms) == 0 {
		terms = s.orderTerms(s.Default)
	}
	desc := false
	for i, t := range terms {
		if i == 0 {
			desc = strings.HasSuffix(t, " DESC")
		}
		db = db.Order(t)
	}
	if s.TieBreak != "" {
		if desc {
			db = db.Order(s.TieBreak + " DESC")
		} else {
			db = db.Order(s.TieBreak)
		}
	}
	return db
}

func (s Spec) orderTerms(raw string) []string {
	var terms []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		desc := strings.HasPrefix(key, "-")
		col, ok := s.Ordering[strings.TrimPrefix(key, "-")]
		if !ok {
			continue
		}
		if desc {
			col += " DESC"
		}
		terms = append(terms, col)
	}
	return terms
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
