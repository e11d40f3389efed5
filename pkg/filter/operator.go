package filter

// Operator identifies how a FieldFilter constrains its field.
type Operator int

const (
	// OpEqual matches values equal to the filter value.
	OpEqual Operator = iota
	// OpNotEqual excludes values equal to the filter value.
	OpNotEqual
	// OpMinimum matches values greater than or equal to the filter value.
	OpMinimum
	// OpGreaterThan matches values strictly greater than the filter value.
	OpGreaterThan
	// OpMaximum matches values less than or equal to the filter value.
	OpMaximum
	// OpLessThan matches values strictly less than the filter value.
	OpLessThan
	// OpBitwiseAnd matches values whose bitwise AND with the filter value is non-zero.
	OpBitwiseAnd
	// OpLike matches strings against a wildcard pattern.
	OpLike
	// OpNotLike excludes strings matching a wildcard pattern.
	OpNotLike
	// OpSetEquals matches values equal to one of a comma separated list.
	OpSetEquals
	// OpIn matches values contained in a comma separated list.
	OpIn
	// OpNotIn excludes values contained in a comma separated list.
	OpNotIn
)

// Token returns the suffix appended to the field name on the wire,
// including the trailing '='.
//
// OpLessThan renders as "-st=" rather than "-lt=". The server contract
// has only been observed with "-st=", so it is kept as is.
func (o Operator) Token() string {
	switch o {
	case OpEqual, OpSetEquals:
		return "="
	case OpNotEqual:
		return "-not="
	case OpMinimum:
		return "-min="
	case OpGreaterThan:
		return "-gt="
	case OpMaximum:
		return "-max="
	case OpLessThan:
		return "-st="
	case OpBitwiseAnd:
		return "-bitwise-and="
	case OpLike:
		return "-lk="
	case OpNotLike:
		return "-not-lk="
	case OpIn:
		return "-in="
	case OpNotIn:
		return "-not-in="
	default:
		return "="
	}
}

// String returns a readable operator name for logs.
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpNotEqual:
		return "not_equal"
	case OpMinimum:
		return "minimum"
	case OpGreaterThan:
		return "greater_than"
	case OpMaximum:
		return "maximum"
	case OpLessThan:
		return "less_than"
	case OpBitwiseAnd:
		return "bitwise_and"
	case OpLike:
		return "like"
	case OpNotLike:
		return "not_like"
	case OpSetEquals:
		return "set_equals"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not_in"
	default:
		return "unknown"
	}
}
