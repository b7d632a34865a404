// Package listfilter turns raw list query parameters into search and
// exclude predicates, an ordering and a page window. Handlers declare the
// fields and orderings a resource allows; anything else is dropped with a
// warning rather than rejected.
package listfilter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// FieldKind selects the filter operators a field supports.
type FieldKind int

const (
	Number FieldKind = iota
	String
)

// Field describes one filterable field of a resource.
type Field struct {
	Column string
	Kind   FieldKind
}

// Allowed declares the filter surface of one resource.
type Allowed struct {
	// Fields maps the API field name to its column and kind.
	Fields map[string]Field
	// Ordering lists the API field names that may be ordered on.
	Ordering []string
	// DefaultOrder is the API field name used when none is sent.
	DefaultOrder string
}

// Predicate is one column condition ready to apply to a query.
type Predicate struct {
	Expr  string
	Value any
}

// Result is the parsed filter set for one list request.
type Result struct {
	Search   []Predicate
	Exclude  []Predicate
	Order    string // API-facing order value, e.g. "-created"
	OrderSQL string
	Page     int
	Limit    int
	Warnings []string
}

// Parse reads search[...], exclude[...], order, page and limit parameters
// against the allowed surface. Unknown fields and operators produce
// warnings, never errors.
func Parse(values url.Values, allowed Allowed) *Result {
	res := &Result{
		Page:  intParam(values.Get("page"), 0),
		Limit: intParam(values.Get("limit"), defaultLimit),
	}
	if res.Page < 0 {
		res.Page = 0
	}
	if res.Limit <= 0 {
		res.Limit = defaultLimit
	}
	if res.Limit > maxLimit {
		res.Limit = maxLimit
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "search[") && strings.HasSuffix(key, "]"):
			res.addPredicate(&res.Search, key[len("search["):len(key)-1], vals[0], allowed)
		case strings.HasPrefix(key, "exclude[") && strings.HasSuffix(key, "]"):
			res.addPredicate(&res.Exclude, key[len("exclude["):len(key)-1], vals[0], allowed)
		}
	}

	res.parseOrder(values.Get("order"), allowed)
	return res
}

func (r *Result) addPredicate(dst *[]Predicate, spec, value string, allowed Allowed) {
	name := spec
	op := ""
	// Field names may themselves contain "__" (joined fields such as
	// circuit_class__name), so the whole spec is tried as a field name
	// before an operator is split off the end.
	if _, plain := allowed.Fields[spec]; !plain {
		if i := strings.LastIndex(spec, "__"); i >= 0 {
			name, op = spec[:i], spec[i+2:]
		}
	}
	field, ok := allowed.Fields[name]
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unknown filter field %q", name))
		return
	}
	pred, ok := buildPredicate(field, op, value)
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unsupported operator %q for field %q", op, name))
		return
	}
	*dst = append(*dst, pred)
}

func buildPredicate(field Field, op, value string) (Predicate, bool) {
	switch op {
	case "":
		return Predicate{Expr: field.Column + " = ?", Value: value}, true
	case "in":
		return Predicate{Expr: field.Column + " IN ?", Value: strings.Split(value, ",")}, true
	}
	switch field.Kind {
	case Number:
		switch op {
		case "gt":
			return Predicate{Expr: field.Column + " > ?", Value: value}, true
		case "gte":
			return Predicate{Expr: field.Column + " >= ?", Value: value}, true
		case "lt":
			return Predicate{Expr: field.Column + " < ?", Value: value}, true
		case "lte":
			return Predicate{Expr: field.Column + " <= ?", Value: value}, true
		}
	case String:
		switch op {
		case "icontains":
			return Predicate{Expr: "LOWER(" + field.Column + ") LIKE ?", Value: "%" + strings.ToLower(value) + "%"}, true
		case "istartswith":
			return Predicate{Expr: "LOWER(" + field.Column + ") LIKE ?", Value: strings.ToLower(value) + "%"}, true
		case "iendswith":
			return Predicate{Expr: "LOWER(" + field.Column + ") LIKE ?", Value: "%" + strings.ToLower(value)}, true
		}
	}
	return Predicate{}, false
}

func (r *Result) parseOrder(order string, allowed Allowed) {
	if order == "" {
		order = allowed.DefaultOrder
	}
	name := strings.TrimPrefix(order, "-")
	permitted := false
	for _, o := range allowed.Ordering {
		if o == name {
			permitted = true
			break
		}
	}
	if !permitted {
		if order != allowed.DefaultOrder {
			r.Warnings = append(r.Warnings, fmt.Sprintf("unknown ordering %q", order))
		}
		order = allowed.DefaultOrder
		name = strings.TrimPrefix(order, "-")
	}

	field, ok := allowed.Fields[name]
	if !ok {
		// Default orders always name a declared field; nothing to do if
		// the resource declared none.
		r.Order = order
		r.OrderSQL = ""
		return
	}
	r.Order = order
	if strings.HasPrefix(order, "-") {
		r.OrderSQL = field.Column + " DESC"
	} else {
		r.OrderSQL = field.Column + " ASC"
	}
}

// Apply adds the search and exclude predicates to a query. Ordering and
// paging are applied separately so callers can count matches first.
func (r *Result) Apply(db *gorm.DB) *gorm.DB {
	for _, p := range r.Search {
		db = db.Where(p.Expr, p.Value)
	}
	for _, p := range r.Exclude {
		db = db.Not(p.Expr, p.Value)
	}
	return db
}

// ApplyPage adds the ordering and the offset/limit window to a query.
func (r *Result) ApplyPage(db *gorm.DB) *gorm.DB {
	if r.OrderSQL != "" {
		db = db.Order(r.OrderSQL)
	}
	return db.Offset(r.Page * r.Limit).Limit(r.Limit)
}

// Metadata is the list envelope metadata returned alongside content.
type Metadata struct {
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
	Order        string   `json:"order"`
	TotalRecords int64    `json:"total_records"`
	Warnings     []string `json:"warnings"`
}

// MetadataFor builds the envelope metadata for a completed list query.
func (r *Result) MetadataFor(total int64) Metadata {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Metadata{
		Page:         r.Page,
		Limit:        r.Limit,
		Order:        r.Order,
		TotalRecords: total,
		Warnings:     warnings,
	}
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
