// Package listquery holds the query model of a list view and the controller
// that turns query edits into backend fetches.
package listquery

import (
	"maps"
	"strings"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Desc {
		return Asc
	}
	return Desc
}

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == Asc || o == Desc
}

// ParseSortOrder accepts asc/desc case-insensitively.
func ParseSortOrder(s string) (SortOrder, bool) {
	o := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	return o, o.Valid()
}

// Query is the parameter set of one list request. Filters never hold a
// view's "all" sentinel; a cleared filter is simply absent.
type Query struct {
	Page      int
	PageSize  int
	Search    string
	Filters   map[string]string
	SortField string
	SortOrder SortOrder
}

// Filter returns the value of a named filter or "".
func (q Query) Filter(name string) string {
	return q.Filters[name]
}

// Clone returns a copy that shares no maps with q.
func (q Query) Clone() Query {
	out := q
	out.Filters = maps.Clone(q.Filters)
	if out.Filters == nil {
		out.Filters = map[string]string{}
	}
	return out
}

// Filter describes one filter of a view.
type Filter struct {
	Name string
	// Sentinel is the "all" value shown when the filter is cleared.
	Sentinel string
}

// View carries the defaults and allowed values of a list view.
type View struct {
	PageSize   int
	SortField  string
	SortOrder  SortOrder
	SortFields []string
	Filters    []Filter
}

// DefaultPageSize is used when a view does not set one.
const DefaultPageSize = 10

// Initial builds the query a view starts with.
func (v View) Initial() Query {
	size := v.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	order := v.SortOrder
	if !order.Valid() {
		order = Asc
	}
	return Query{
		Page:      1,
		PageSize:  size,
		Filters:   map[string]string{},
		SortField: v.SortField,
		SortOrder: order,
	}
}

func (v View) filter(name string) (Filter, bool) {
	for _, f := range v.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

func (v View) sortable(field string) bool {
	if len(v.SortFields) == 0 {
		return field == v.SortField
	}
	for _, f := range v.SortFields {
		if f == field {
			return true
		}
	}
	return false
}
