package gateway

import (
	"github.com/oarkflow/mebel/internal/listquery"
)

// Image describes how a mutation changes a record's image.
type Image struct {
	// Set is false when the mutation leaves the image alone.
	Set bool
	// URL is nil when the image is being cleared.
	URL *string
}

// Schema is the mapping table that specializes Live for one resource.
type Schema[R, F any] struct {
	// Resource is the collection path segment, e.g. "products".
	Resource string

	// SortFields maps view sort fields onto backend sort_by values;
	// unknown fields fall back to DefaultSort.
	SortFields  map[string]string
	DefaultSort string
	Filters     []FilterParam

	// StatusField is the body key of a status change.
	StatusField string
	// StatusFallback retries a status change as PUT on the record when the
	// dedicated PATCH endpoint answers 404 or 405.
	StatusFallback bool

	UploadPrefix string
	UploadLabel  string
	Placeholder  string

	Decode       func(Row) R
	ImageInput   func(F) *string
	EncodeCreate func(F, Image) map[string]any
	EncodeUpdate func(F, Image) map[string]any

	Messages Messages
}

// View builds the listquery view matching this schema.
func (s Schema[R, F]) View(pageSize int, order listquery.SortOrder) listquery.View {
	fields := make([]string, 0, len(s.SortFields))
	for f := range s.SortFields {
		fields = append(fields, f)
	}
	filters := make([]listquery.Filter, 0, len(s.Filters))
	for _, f := range s.Filters {
		filters = append(filters, f.View())
	}
	return listquery.View{
		PageSize:   pageSize,
		SortField:  s.DefaultSort,
		SortOrder:  order,
		SortFields: fields,
		Filters:    filters,
	}
}

func (s Schema[R, F]) sortParam(field string) string {
	if backend, ok := s.SortFields[field]; ok {
		return backend
	}
	if backend, ok := s.SortFields[s.DefaultSort]; ok {
		return backend
	}
	return s.DefaultSort
}
