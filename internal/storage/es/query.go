package es

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// ErrRawUnsupported rejects raw SQL expressions, which have no query DSL
// form.
var ErrRawUnsupported = errors.New("raw expressions are not supported by elasticsearch")

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `%`, `*`, `_`, `?`)

// BuildQuery renders criteria as a query folded the same way SQL clauses
// are: each criterion joins everything before it with AND, or OR for
// orLike. Empty criteria match all documents. An alias override becomes the
// parent object of the field: "author.name".
func BuildQuery(cs criteria.Criteria) (*types.Query, error) {
	var acc *types.Query
	for _, c := range cs {
		q, conj, err := criterionQuery(c)
		if err != nil {
			return nil, err
		}
		switch {
		case acc == nil:
			acc = q
		case conj == criteria.Or:
			acc = &types.Query{Bool: &types.BoolQuery{
				Should:             []types.Query{*acc, *q},
				MinimumShouldMatch: 1,
			}}
		default:
			acc = &types.Query{Bool: &types.BoolQuery{Must: []types.Query{*acc, *q}}}
		}
	}
	if acc == nil {
		return &types.Query{MatchAll: &types.MatchAllQuery{}}, nil
	}
	return acc, nil
}

func criterionQuery(c criteria.Criterion) (*types.Query, criteria.Conjunction, error) {
	if c.IsRaw() {
		return nil, "", apperr.NewValidationWrap("criteria: raw expression", ErrRawUnsupported)
	}

	field := c.Field
	if c.Alias != "" {
		field = c.Alias + "." + c.Field
	}
	if !fieldPattern.MatchString(field) {
		return nil, "", invalid(criteria.ErrInvalidIdentifier, "field %q is not a valid identifier", field)
	}
	if !c.Operator.Valid() {
		return nil, "", invalid(criteria.ErrUnknownOperator, "criteria %q: operator %q is not supported", c.Field, string(c.Operator))
	}

	switch c.Operator {
	case criteria.OpEq:
		if c.Value == nil {
			return not(exists(field)), criteria.And, nil
		}
		return term(field, c.Value), criteria.And, nil
	case criteria.OpNeq:
		if c.Value == nil {
			return exists(field), criteria.And, nil
		}
		return not(term(field, c.Value)), criteria.And, nil
	case criteria.OpGt, criteria.OpGte, criteria.OpLt, criteria.OpLte:
		q, err := rangeQuery(field, c.Operator, c.Value)
		return q, criteria.And, err
	case criteria.OpLike, criteria.OpOrLike, criteria.OpNotLike:
		pattern, ok := c.Value.(string)
		if !ok {
			return nil, "", invalid(criteria.ErrMalformedCriterion, "criteria %q: %s needs a string pattern", c.Field, c.Operator)
		}
		q := wildcard(field, pattern)
		switch c.Operator {
		case criteria.OpNotLike:
			return not(q), criteria.And, nil
		case criteria.OpOrLike:
			return q, criteria.Or, nil
		}
		return q, criteria.And, nil
	case criteria.OpIn, criteria.OpNotIn:
		values, err := fieldValues(c.Field, c.Value)
		if err != nil {
			return nil, "", err
		}
		if len(values) == 0 {
			if c.Operator == criteria.OpIn {
				return &types.Query{MatchNone: &types.MatchNoneQuery{}}, criteria.And, nil
			}
			return &types.Query{MatchAll: &types.MatchAllQuery{}}, criteria.And, nil
		}
		q := &types.Query{Terms: &types.TermsQuery{
			TermsQuery: map[string]types.TermsQueryField{field: values},
		}}
		if c.Operator == criteria.OpNotIn {
			return not(q), criteria.And, nil
		}
		return q, criteria.And, nil
	case criteria.OpIsNull:
		return not(exists(field)), criteria.And, nil
	default: // criteria.OpIsNotNull
		return exists(field), criteria.And, nil
	}
}

func term(field string, value any) *types.Query {
	return &types.Query{Term: map[string]types.TermQuery{
		field: {Value: value},
	}}
}

func exists(field string) *types.Query {
	return &types.Query{Exists: &types.ExistsQuery{Field: field}}
}

func not(q *types.Query) *types.Query {
	return &types.Query{Bool: &types.BoolQuery{MustNot: []types.Query{*q}}}
}

// wildcard matches a SQL LIKE pattern case-insensitively.
func wildcard(field, pattern string) *types.Query {
	value := likeEscaper.Replace(pattern)
	ci := true
	return &types.Query{Wildcard: map[string]types.WildcardQuery{
		field: {Value: &value, CaseInsensitive: &ci},
	}}
}

func rangeQuery(field string, op criteria.Operator, value any) (*types.Query, error) {
	if value == nil {
		return nil, invalid(criteria.ErrMalformedCriterion, "criteria %q: %s needs a value", field, op)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, invalid(criteria.ErrMalformedCriterion, "criteria %q: %v", field, err)
	}

	r := types.UntypedRangeQuery{}
	switch op {
	case criteria.OpGt:
		r.Gt = raw
	case criteria.OpGte:
		r.Gte = raw
	case criteria.OpLt:
		r.Lt = raw
	default:
		r.Lte = raw
	}
	return &types.Query{Range: map[string]types.RangeQuery{field: r}}, nil
}

func fieldValues(field string, value any) ([]types.FieldValue, error) {
	v := reflect.ValueOf(value)
	if value == nil || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return nil, invalid(criteria.ErrMalformedCriterion, "criteria %q: in needs a list", field)
	}
	out := make([]types.FieldValue, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out, nil
}

func invalid(sentinel error, format string, args ...any) error {
	return apperr.NewValidationWrap(fmt.Sprintf(format, args...), sentinel)
}
