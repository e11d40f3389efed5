package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/modio-client/pkg/logging"
	"github.com/rs/zerolog"
)

// FilterSet is an ordered collection of field filters plus an optional
// sort directive. It renders into the query string understood by the API.
//
// A FilterSet is built per query and is not safe for concurrent mutation.
type FilterSet struct {
	sortField     string
	sortAscending bool

	// fields keeps insertion order so Render is deterministic.
	fields  []string
	filters map[string][]FieldFilter

	search string
	offset int
	limit  int

	logger zerolog.Logger
}

// New returns an empty FilterSet.
func New() *FilterSet {
	return &FilterSet{
		filters: make(map[string][]FieldFilter),
		logger:  logging.NewLogger("filter"),
	}
}

// WithLogger replaces the logger used to report rejected filters.
func (s *FilterSet) WithLogger(logger zerolog.Logger) *FilterSet {
	s.logger = logger
	return s
}

// SortBy sets the sort field. An empty field clears sorting.
func (s *FilterSet) SortBy(field string, ascending bool) *FilterSet {
	s.sortField = field
	s.sortAscending = ascending
	return s
}

// SetPagination sets the result window. Zero values are not rendered.
func (s *FilterSet) SetPagination(offset, limit int) *FilterSet {
	if offset < 0 || limit < 0 {
		s.logger.Warn().
			Int("offset", offset).
			Int("limit", limit).
			Msg("Ignoring negative pagination")
		return s
	}
	s.offset = offset
	s.limit = limit
	return s
}

// SetSearch sets a full-text search query.
func (s *FilterSet) SetSearch(query string) *FilterSet {
	s.search = query
	return s
}

// AddFieldFilter attaches filter to field. If the field already holds a
// filter with the same operator, that filter is removed and the new one is
// appended; filters with other operators keep their position.
//
// An empty field name, a nil filter or a filter without a value is
// logged and ignored.
func (s *FilterSet) AddFieldFilter(field string, filter FieldFilter) *FilterSet {
	if field == "" {
		s.logger.Warn().Msg("Ignoring field filter with empty field name")
		return s
	}
	if filter == nil {
		s.logger.Warn().Str("field", field).Msg("Ignoring nil field filter")
		return s
	}
	if filter.empty() {
		s.logger.Warn().
			Str("field", field).
			Stringer("operator", filter.Operator()).
			Msg("Ignoring field filter without value")
		return s
	}

	existing, ok := s.filters[field]
	if !ok {
		s.fields = append(s.fields, field)
	}
	for i, f := range existing {
		if f.Operator() == filter.Operator() {
			existing = append(existing[:i:i], existing[i+1:]...)
			break
		}
	}
	s.filters[field] = append(existing, filter)
	return s
}

// Filters returns the filters attached to field in render order.
func (s *FilterSet) Filters(field string) []FieldFilter {
	out := make([]FieldFilter, len(s.filters[field]))
	copy(out, s.filters[field])
	return out
}

// Len returns the number of attached field filters.
func (s *FilterSet) Len() int {
	n := 0
	for _, list := range s.filters {
		n += len(list)
	}
	return n
}

// Render builds the query string, without a leading '?'.
//
// Format: _sort=[-]field&f1<op>v&f2<op>v&_q=..&_offset=N&_limit=N
func (s *FilterSet) Render() string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	if s.sortField != "" {
		b.WriteString("_sort=")
		if !s.sortAscending {
			b.WriteByte('-')
		}
		b.WriteString(s.sortField)
		b.WriteByte('&')
	}

	for _, field := range s.fields {
		for _, f := range s.filters[field] {
			b.WriteString(f.Render(field))
			b.WriteByte('&')
		}
	}

	if s.search != "" {
		b.WriteString("_q=")
		b.WriteString(url.QueryEscape(s.search))
		b.WriteByte('&')
	}
	if s.offset > 0 {
		b.WriteString("_offset=")
		b.WriteString(strconv.Itoa(s.offset))
		b.WriteByte('&')
	}
	if s.limit > 0 {
		b.WriteString("_limit=")
		b.WriteString(strconv.Itoa(s.limit))
		b.WriteByte('&')
	}

	return strings.TrimSuffix(b.String(), "&")
}

// String implements fmt.Stringer.
func (s *FilterSet) String() string {
	return s.Render()
}
