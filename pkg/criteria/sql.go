package criteria

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Conjunction string

const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)

// Predicate is one boolean condition with the named arguments it binds.
// Placeholders use pgx named-argument syntax (@name).
type Predicate struct {
	Conj Conjunction
	SQL  string
	Args pgx.NamedArgs
}

type buildFunc func(col, param string, value any) (string, pgx.NamedArgs, error)

type builder struct {
	conj  Conjunction
	build buildFunc
}

var builders = map[Operator]builder{
	OpEq:        {And, compare("=", "IS NULL")},
	OpNeq:       {And, compare("<>", "IS NOT NULL")},
	OpGt:        {And, compare(">", "")},
	OpGte:       {And, compare(">=", "")},
	OpLt:        {And, compare("<", "")},
	OpLte:       {And, compare("<=", "")},
	OpLike:      {And, like("LIKE")},
	OpOrLike:    {Or, like("LIKE")},
	OpNotLike:   {And, like("NOT LIKE")},
	OpIn:        {And, in("IN", "FALSE")},
	OpNotIn:     {And, in("NOT IN", "TRUE")},
	OpIsNull:    {And, null("IS NULL")},
	OpIsNotNull: {And, null("IS NOT NULL")},
}

func compare(sqlOp, nilForm string) buildFunc {
	return func(col, param string, value any) (string, pgx.NamedArgs, error) {
		if value == nil {
			if nilForm == "" {
				return "", nil, invalid(ErrMalformedCriterion, "criteria %q: %s needs a value", col, sqlOp)
			}
			return col + " " + nilForm, pgx.NamedArgs{}, nil
		}
		return fmt.Sprintf("%s %s @%s", col, sqlOp, param), pgx.NamedArgs{param: value}, nil
	}
}

func like(sqlOp string) buildFunc {
	return func(col, param string, value any) (string, pgx.NamedArgs, error) {
		if value == nil {
			return "", nil, invalid(ErrMalformedCriterion, "criteria %q: like needs a pattern", col)
		}
		return fmt.Sprintf("lower(%s) %s lower(@%s)", col, sqlOp, param), pgx.NamedArgs{param: value}, nil
	}
}

func in(sqlOp, emptyForm string) buildFunc {
	return func(col, param string, value any) (string, pgx.NamedArgs, error) {
		values, ok := asList(value)
		if !ok {
			return "", nil, invalid(ErrMalformedCriterion, "criteria %q: %s needs a list of values", col, strings.ToLower(sqlOp))
		}
		if len(values) == 0 {
			return emptyForm, pgx.NamedArgs{}, nil
		}

		args := make(pgx.NamedArgs, len(values))
		placeholders := make([]string, len(values))
		for i, v := range values {
			name := fmt.Sprintf("%s_%d", param, i)
			placeholders[i] = "@" + name
			args[name] = v
		}
		return fmt.Sprintf("%s %s (%s)", col, sqlOp, strings.Join(placeholders, ", ")), args, nil
	}
}

func null(form string) buildFunc {
	return func(col, _ string, _ any) (string, pgx.NamedArgs, error) {
		return col + " " + form, pgx.NamedArgs{}, nil
	}
}

// Translate renders criteria as predicates against baseAlias. Every
// criterion gets the position-based parameter prefix p<N>, so the same field
// may appear any number of times.
func Translate(cs Criteria, baseAlias string) ([]Predicate, error) {
	if baseAlias != "" && !validIdent(baseAlias) {
		return nil, invalid(ErrInvalidIdentifier, "alias %q is not a valid identifier", baseAlias)
	}

	used := make(map[string]struct{})
	preds := make([]Predicate, 0, len(cs))

	for i, c := range cs {
		p, err := translateOne(c, baseAlias, i+1)
		if err != nil {
			return nil, err
		}
		for name := range p.Args {
			if _, dup := used[name]; dup {
				return nil, invalid(ErrDuplicateParam, "parameter %q is bound twice", name)
			}
			used[name] = struct{}{}
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func translateOne(c Criterion, baseAlias string, n int) (Predicate, error) {
	if c.IsRaw() {
		args := make(pgx.NamedArgs, len(c.Params))
		for name, v := range c.Params {
			name = strings.TrimPrefix(strings.TrimSpace(name), "@")
			if !validIdent(name) {
				return Predicate{}, invalid(ErrInvalidIdentifier, "parameter %q is not a valid identifier", name)
			}
			args[name] = v
		}
		return Predicate{Conj: And, SQL: c.Expr, Args: args}, nil
	}

	if !validIdent(c.Field) {
		return Predicate{}, invalid(ErrInvalidIdentifier, "field %q is not a valid identifier", c.Field)
	}
	b, ok := builders[c.Operator]
	if !ok {
		return Predicate{}, invalid(ErrUnknownOperator, "criteria %q: operator %q is not supported", c.Field, string(c.Operator))
	}

	alias := baseAlias
	if c.Alias != "" {
		if !validIdent(c.Alias) {
			return Predicate{}, invalid(ErrInvalidIdentifier, "alias %q is not a valid identifier", c.Alias)
		}
		alias = c.Alias
	}
	col := c.Field
	if alias != "" {
		col = alias + "." + c.Field
	}

	sql, args, err := b.build(col, fmt.Sprintf("p%d_%s", n, c.Field), c.Value)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Conj: b.conj, SQL: sql, Args: args}, nil
}
