package criteria

import (
	"strings"
)

// Operator is one of the comparison operators a criterion may use.
// The set is closed: anything else is rejected during parsing and translation.
type Operator string

const (
	OpEq        Operator = "="
	OpNeq       Operator = "!="
	OpGt        Operator = ">"
	OpGte       Operator = ">="
	OpLt        Operator = "<"
	OpLte       Operator = "<="
	OpLike      Operator = "like"
	OpOrLike    Operator = "orLike"
	OpNotLike   Operator = "not like"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not in"
	OpIsNull    Operator = "is null"
	OpIsNotNull Operator = "is not null"
)

var operatorsByName = map[string]Operator{
	"=":           OpEq,
	"!=":          OpNeq,
	"<>":          OpNeq,
	">":           OpGt,
	">=":          OpGte,
	"<":           OpLt,
	"<=":          OpLte,
	"like":        OpLike,
	"orlike":      OpOrLike,
	"not like":    OpNotLike,
	"in":          OpIn,
	"not in":      OpNotIn,
	"is null":     OpIsNull,
	"is not null": OpIsNotNull,
}

// ParseOperator normalizes s (case, surrounding and repeated whitespace)
// and maps it onto the closed operator set.
func ParseOperator(s string) (Operator, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	op, ok := operatorsByName[key]
	return op, ok
}

// Valid reports whether op belongs to the operator set.
func (op Operator) Valid() bool {
	_, ok := builders[op]
	return ok
}

// Unary operators take no value.
func (op Operator) Unary() bool {
	return op == OpIsNull || op == OpIsNotNull
}

// Multi operators bind a sequence of values.
func (op Operator) Multi() bool {
	return op == OpIn || op == OpNotIn
}
