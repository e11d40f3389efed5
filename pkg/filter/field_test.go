package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldFilter_Render(t *testing.T) {
	tests := []struct {
		name   string
		filter FieldFilter
		want   string
	}{
		{"equal", EqualTo(5), "id=5"},
		{"not equal", NotEqualTo("abc"), "id-not=abc"},
		{"minimum", Min(10), "id-min=10"},
		{"greater than", GreaterThan(10), "id-gt=10"},
		{"maximum", Max(2.5), "id-max=2.5"},
		{"less than keeps st token", LessThan(20), "id-st=20"},
		{"bitwise and", BitwiseAnd(uint8(6)), "id-bitwise-and=6"},
		{"like", Like("*map*"), "id-lk=*map*"},
		{"not like", NotLike("test*"), "id-not-lk=test*"},
		{"set equals", SetEquals([]int{1, 2, 3}), "id=1,2,3"},
		{"in", In([]string{"a", "b"}), "id-in=a,b"},
		{"not in", NotIn([]int64{7}), "id-not-in=7"},
		{"empty array keeps operator", In([]int{}), "id-in="},
		{"bool value", EqualTo(true), "id=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Render("id"))
		})
	}
}

func TestFieldFilter_Empty(t *testing.T) {
	assert.True(t, EqualTo("").empty())
	assert.True(t, In[int](nil).empty())
	assert.False(t, In([]int{}).empty())
	assert.False(t, EqualTo(0).empty(), "zero numbers are valid values")
}

func TestOperator_Token(t *testing.T) {
	assert.Equal(t, "-st=", OpLessThan.Token())
	assert.Equal(t, "-gt=", OpGreaterThan.Token())
	assert.Equal(t, "=", OpSetEquals.Token())
	assert.Equal(t, "less_than", OpLessThan.String())
	assert.Equal(t, "unknown", Operator(99).String())
}
