package filter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSet_Render(t *testing.T) {
	tests := []struct {
		name  string
		build func() *FilterSet
		want  string
	}{
		{
			name:  "empty",
			build: New,
			want:  "",
		},
		{
			name: "sort descending",
			build: func() *FilterSet {
				return New().SortBy("date_live", false)
			},
			want: "_sort=-date_live",
		},
		{
			name: "sort ascending with filters",
			build: func() *FilterSet {
				return New().
					SortBy("name", true).
					AddFieldFilter("name", Like("*map*")).
					AddFieldFilter("id", Min(3))
			},
			want: "_sort=name&name-lk=*map*&id-min=3",
		},
		{
			name: "fields render in insertion order",
			build: func() *FilterSet {
				return New().
					AddFieldFilter("zeta", EqualTo(1)).
					AddFieldFilter("alpha", EqualTo(2)).
					AddFieldFilter("zeta", Max(9))
			},
			want: "zeta=1&zeta-max=9&alpha=2",
		},
		{
			name: "pagination and search",
			build: func() *FilterSet {
				return New().
					AddFieldFilter("game_id", EqualTo(5)).
					SetSearch("rocket league").
					SetPagination(100, 50)
			},
			want: "game_id=5&_q=rocket+league&_offset=100&_limit=50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.build().Render())
		})
	}
}

func TestFilterSet_ReplacesSameOperator(t *testing.T) {
	fs := New().
		AddFieldFilter("x", EqualTo(1)).
		AddFieldFilter("x", EqualTo(2))

	got := fs.Render()
	assert.Equal(t, "x=2", got)
	assert.Equal(t, 1, strings.Count(got, "x="))
	assert.Equal(t, 1, fs.Len())
}

func TestFilterSet_ReplacementKeepsOtherOperators(t *testing.T) {
	fs := New().
		AddFieldFilter("x", Min(1)).
		AddFieldFilter("x", Max(10)).
		AddFieldFilter("x", NotEqualTo(5)).
		AddFieldFilter("x", Min(2))

	filters := fs.Filters("x")
	require.Len(t, filters, 3)
	assert.Equal(t, OpMaximum, filters[0].Operator())
	assert.Equal(t, OpNotEqual, filters[1].Operator())
	assert.Equal(t, OpMinimum, filters[2].Operator())
	assert.Equal(t, "x-max=10&x-not=5&x-min=2", fs.Render())
}

func TestFilterSet_RejectsInvalidFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	fs := New().WithLogger(zerolog.New(buf))

	fs.AddFieldFilter("", EqualTo(1))
	fs.AddFieldFilter("name", nil)
	fs.AddFieldFilter("name", EqualTo(""))
	fs.AddFieldFilter("tags", In[string](nil))

	assert.Equal(t, 0, fs.Len())
	assert.Equal(t, "", fs.Render())
	assert.Equal(t, 4, strings.Count(buf.String(), `"level":"warn"`))
}

func TestFilterSet_NegativePaginationIgnored(t *testing.T) {
	fs := New().WithLogger(zerolog.Nop()).SetPagination(-1, 10)
	assert.Equal(t, "", fs.Render())
}

func TestFilterSet_NilRender(t *testing.T) {
	var fs *FilterSet
	assert.Equal(t, "", fs.Render())
}
