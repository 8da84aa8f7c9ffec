// Package criteria turns caller-supplied search criteria into SQL predicates
// with named parameters.
//
// Criteria come in four shapes:
//
//	"enabled": true                       // field = value
//	"roles": []any{"like", "%ADMIN%"}     // field op value
//	"id": []any{"in", []int{1, 2}, "p"}   // field op value, alias override
//	[]any{"!=", "id", 999}                // positional: op field value
//	[]any{"u.name like @name", map[string]any{"name": "%iv%"}} // raw expression
//
// The first two are keyed by field name (FromMap), the last two are
// positional (FromList). Typed constructors build the same values directly.
package criteria

import (
	"errors"
	"regexp"
)

var (
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrMalformedCriterion = errors.New("malformed criterion")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrDuplicateParam     = errors.New("duplicate parameter name")
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Criterion is a single search condition. Either Expr is set (raw
// expression with its own Params) or Field/Operator/Value are.
type Criterion struct {
	Field    string
	Operator Operator
	Value    any
	// Alias overrides the base alias for this criterion only.
	Alias string

	Expr   string
	Params map[string]any
}

func (c Criterion) IsRaw() bool {
	return c.Expr != ""
}

type Criteria []Criterion

// HasRaw reports whether any criterion is a raw expression.
func (cs Criteria) HasRaw() bool {
	for _, c := range cs {
		if c.IsRaw() {
			return true
		}
	}
	return false
}

// Eq matches field = value. A nil value matches NULL.
func Eq(field string, value any) Criterion {
	return Criterion{Field: field, Operator: OpEq, Value: value}
}

// Op matches field against value with op.
func Op(field string, op Operator, value any) Criterion {
	return Criterion{Field: field, Operator: op, Value: value}
}

// OpAlias is Op on a joined entity reachable through alias.
func OpAlias(alias, field string, op Operator, value any) Criterion {
	return Criterion{Field: field, Operator: op, Value: value, Alias: alias}
}

// Explicit is the positional [op, field, value] form. It always uses the
// base alias.
func Explicit(op Operator, field string, value any) Criterion {
	return Criterion{Field: field, Operator: op, Value: value}
}

// Raw adds a free-form boolean expression. Parameters are referenced as
// @name inside expr. The expression is trusted as-is, so it must never be
// built from request input.
func Raw(expr string, params map[string]any) Criterion {
	return Criterion{Expr: expr, Params: params}
}
