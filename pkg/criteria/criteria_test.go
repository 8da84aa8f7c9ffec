package criteria_test

import (
	"errors"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_EqualityAndIn(t *testing.T) {
	cs, err := criteria.FromMap(map[string]any{
		"status": "active",
		"age":    []any{"in", []any{18, 19, 20}},
	})
	require.NoError(t, err)

	preds, err := criteria.Translate(cs, "u")
	require.NoError(t, err)
	require.Len(t, preds, 2)

	// keys are sorted: age first
	assert.Equal(t, "u.age IN (@p1_age_0, @p1_age_1, @p1_age_2)", preds[0].SQL)
	assert.Equal(t, pgx.NamedArgs{"p1_age_0": 18, "p1_age_1": 19, "p1_age_2": 20}, preds[0].Args)
	assert.Equal(t, "u.status = @p2_status", preds[1].SQL)
	assert.Equal(t, pgx.NamedArgs{"p2_status": "active"}, preds[1].Args)
}

func TestTranslate_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		criteria criteria.Criteria
		alias    string
		wantSQL  string
		wantArgs pgx.NamedArgs
		wantConj criteria.Conjunction
	}{
		{
			name:     "scalar equality binds one param",
			criteria: criteria.Criteria{criteria.Eq("enabled", true)},
			alias:    "u",
			wantSQL:  "u.enabled = @p1_enabled",
			wantArgs: pgx.NamedArgs{"p1_enabled": true},
			wantConj: criteria.And,
		},
		{
			name:     "nil scalar is null",
			criteria: criteria.Criteria{criteria.Eq("deleted_at", nil)},
			alias:    "u",
			wantSQL:  "u.deleted_at IS NULL",
			wantArgs: pgx.NamedArgs{},
			wantConj: criteria.And,
		},
		{
			name:     "not equal",
			criteria: criteria.Criteria{criteria.Op("id", criteria.OpNeq, 999)},
			alias:    "u",
			wantSQL:  "u.id <> @p1_id",
			wantArgs: pgx.NamedArgs{"p1_id": 999},
			wantConj: criteria.And,
		},
		{
			name:     "like is case-insensitive",
			criteria: criteria.Criteria{criteria.Op("roles", criteria.OpLike, "%ADMIN%")},
			alias:    "u",
			wantSQL:  "lower(u.roles) LIKE lower(@p1_roles)",
			wantArgs: pgx.NamedArgs{"p1_roles": "%ADMIN%"},
			wantConj: criteria.And,
		},
		{
			name:     "orLike joins with OR",
			criteria: criteria.Criteria{criteria.Op("name", criteria.OpOrLike, "%iv%")},
			alias:    "u",
			wantSQL:  "lower(u.name) LIKE lower(@p1_name)",
			wantArgs: pgx.NamedArgs{"p1_name": "%iv%"},
			wantConj: criteria.Or,
		},
		{
			name:     "alias override",
			criteria: criteria.Criteria{criteria.OpAlias("p", "id", criteria.OpIn, []int{1, 2})},
			alias:    "u",
			wantSQL:  "p.id IN (@p1_id_0, @p1_id_1)",
			wantArgs: pgx.NamedArgs{"p1_id_0": 1, "p1_id_1": 2},
			wantConj: criteria.And,
		},
		{
			name:     "no base alias",
			criteria: criteria.Criteria{criteria.Op("age", criteria.OpGte, 18)},
			wantSQL:  "age >= @p1_age",
			wantArgs: pgx.NamedArgs{"p1_age": 18},
			wantConj: criteria.And,
		},
		{
			name:     "empty in matches nothing",
			criteria: criteria.Criteria{criteria.Op("id", criteria.OpIn, []int{})},
			alias:    "u",
			wantSQL:  "FALSE",
			wantArgs: pgx.NamedArgs{},
			wantConj: criteria.And,
		},
		{
			name:     "empty not in matches everything",
			criteria: criteria.Criteria{criteria.Op("id", criteria.OpNotIn, []string{})},
			alias:    "u",
			wantSQL:  "TRUE",
			wantArgs: pgx.NamedArgs{},
			wantConj: criteria.And,
		},
		{
			name:     "is not null",
			criteria: criteria.Criteria{criteria.Op("email", criteria.OpIsNotNull, nil)},
			alias:    "u",
			wantSQL:  "u.email IS NOT NULL",
			wantArgs: pgx.NamedArgs{},
			wantConj: criteria.And,
		},
		{
			name:     "raw expression",
			criteria: criteria.Criteria{criteria.Raw("u.name ilike @name", map[string]any{"name": "%iv%"})},
			alias:    "u",
			wantSQL:  "u.name ilike @name",
			wantArgs: pgx.NamedArgs{"name": "%iv%"},
			wantConj: criteria.And,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds, err := criteria.Translate(tt.criteria, tt.alias)
			require.NoError(t, err)
			require.Len(t, preds, 1)
			assert.Equal(t, tt.wantSQL, preds[0].SQL)
			assert.Equal(t, tt.wantArgs, preds[0].Args)
			assert.Equal(t, tt.wantConj, preds[0].Conj)
		})
	}
}

func TestTranslate_SameFieldTwiceHasDistinctParams(t *testing.T) {
	cs := criteria.Criteria{
		criteria.Op("age", criteria.OpGte, 18),
		criteria.Op("age", criteria.OpLt, 65),
		criteria.Op("age", criteria.OpNotIn, []int{30, 40}),
	}

	preds, err := criteria.Translate(cs, "u")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, p := range preds {
		for name := range p.Args {
			assert.False(t, seen[name], "parameter %s bound twice", name)
			seen[name] = true
		}
	}
	assert.Len(t, seen, 4)
}

func TestTranslate_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		criteria criteria.Criteria
		alias    string
		want     error
	}{
		{
			name:     "unknown operator",
			criteria: criteria.Criteria{criteria.Op("age", criteria.Operator("~~"), 1)},
			want:     criteria.ErrUnknownOperator,
		},
		{
			name:     "field injection",
			criteria: criteria.Criteria{criteria.Eq("id; DROP TABLE users", 1)},
			want:     criteria.ErrInvalidIdentifier,
		},
		{
			name:     "bad alias",
			criteria: criteria.Criteria{criteria.Eq("id", 1)},
			alias:    "u.x",
			want:     criteria.ErrInvalidIdentifier,
		},
		{
			name:     "in without list",
			criteria: criteria.Criteria{criteria.Op("id", criteria.OpIn, 5)},
			want:     criteria.ErrMalformedCriterion,
		},
		{
			name:     "range with nil",
			criteria: criteria.Criteria{criteria.Op("age", criteria.OpGt, nil)},
			want:     criteria.ErrMalformedCriterion,
		},
		{
			name: "raw param collides with generated name",
			criteria: criteria.Criteria{
				criteria.Eq("status", "active"),
				criteria.Raw("u.status <> @p1_status", map[string]any{"p1_status": "x"}),
			},
			want: criteria.ErrDuplicateParam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := criteria.Translate(tt.criteria, tt.alias)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var ve *apperr.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestParse_Shapes(t *testing.T) {
	cs, err := criteria.Parse(
		criteria.Entry{Key: "enabled", Value: true},
		criteria.Entry{Key: "roles", Value: []any{"LIKE", "%ADMIN%"}},
		criteria.Entry{Key: "id", Value: []any{"in", []int{1, 2}, "p"}},
		criteria.Entry{Key: 0, Value: []any{"!=", "id", 999}},
		criteria.Entry{Key: 1, Value: []any{"u.name like @name", map[string]any{"name": "%iv%"}}},
		criteria.Entry{Key: "email", Value: []any{"is  NOT null"}},
	)
	require.NoError(t, err)
	require.Len(t, cs, 6)

	assert.Equal(t, criteria.Eq("enabled", true), cs[0])
	assert.Equal(t, criteria.Op("roles", criteria.OpLike, "%ADMIN%"), cs[1])
	assert.Equal(t, criteria.OpAlias("p", "id", criteria.OpIn, []int{1, 2}), cs[2])
	assert.Equal(t, criteria.Explicit(criteria.OpNeq, "id", 999), cs[3])
	assert.True(t, cs[4].IsRaw())
	assert.Equal(t, "u.name like @name", cs[4].Expr)
	assert.Equal(t, criteria.OpIsNotNull, cs[5].Operator)
	assert.True(t, cs.HasRaw())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		entry criteria.Entry
		want  error
	}{
		{name: "mapping value", entry: criteria.Entry{Key: "age", Value: map[string]any{"gt": 1}}, want: criteria.ErrMalformedCriterion},
		{name: "four elements", entry: criteria.Entry{Key: "age", Value: []any{"=", 1, "u", "x"}}, want: criteria.ErrMalformedCriterion},
		{name: "unknown operator", entry: criteria.Entry{Key: "age", Value: []any{"between", 1}}, want: criteria.ErrUnknownOperator},
		{name: "operator not a string", entry: criteria.Entry{Key: "age", Value: []any{1, 1}}, want: criteria.ErrMalformedCriterion},
		{name: "alias not a string", entry: criteria.Entry{Key: "age", Value: []any{"=", 1, 2}}, want: criteria.ErrMalformedCriterion},
		{name: "binary operator without value", entry: criteria.Entry{Key: "age", Value: []any{">"}}, want: criteria.ErrMalformedCriterion},
		{name: "positional scalar", entry: criteria.Entry{Key: 0, Value: "x"}, want: criteria.ErrMalformedCriterion},
		{name: "positional empty expression", entry: criteria.Entry{Key: 0, Value: []any{" ", nil}}, want: criteria.ErrMalformedCriterion},
		{name: "positional bad params", entry: criteria.Entry{Key: 0, Value: []any{"a = b", 5}}, want: criteria.ErrMalformedCriterion},
		{name: "bad key type", entry: criteria.Entry{Key: 1.5, Value: 1}, want: criteria.ErrMalformedCriterion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := criteria.Parse(tt.entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromJSON(t *testing.T) {
	cs, err := criteria.FromJSON([]byte(`{"age": [">=", 18], "score": ["<", 2.5], "deleted_at": null}`))
	require.NoError(t, err)
	require.Len(t, cs, 3)

	assert.Equal(t, criteria.Op("age", criteria.OpGte, int64(18)), cs[0])
	assert.Equal(t, criteria.Op("deleted_at", criteria.OpIsNull, nil), cs[1])
	assert.Equal(t, criteria.Op("score", criteria.OpLt, 2.5), cs[2])

	list, err := criteria.FromJSON([]byte(`[["=", "id", 7]]`))
	require.NoError(t, err)
	assert.Equal(t, criteria.Criteria{criteria.Explicit(criteria.OpEq, "id", int64(7))}, list)

	empty, err := criteria.FromJSON([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = criteria.FromJSON([]byte(`"status"`))
	assert.ErrorIs(t, err, criteria.ErrMalformedCriterion)

	_, err = criteria.FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	clause, err := criteria.Build(criteria.Criteria{
		criteria.Eq("status", "active"),
		criteria.Op("name", criteria.OpOrLike, "%iv%"),
		criteria.Op("age", criteria.OpGt, 18),
	}, "u")
	require.NoError(t, err)

	assert.Equal(t,
		"((u.status = @p1_status) OR (lower(u.name) LIKE lower(@p2_name))) AND (u.age > @p3_age)",
		clause.SQL)
	assert.Equal(t, pgx.NamedArgs{"p1_status": "active", "p2_name": "%iv%", "p3_age": 18}, clause.Args)
}

func TestCompose_Empty(t *testing.T) {
	clause := criteria.Compose(nil)
	assert.True(t, clause.IsEmpty())
	assert.Empty(t, clause.Args)
}

func TestClause_And(t *testing.T) {
	base, err := criteria.Build(criteria.Criteria{criteria.Eq("status", "active")}, "a")
	require.NoError(t, err)

	extended, err := base.And(criteria.Predicate{Conj: criteria.And, SQL: "a.id > @last_id", Args: pgx.NamedArgs{"last_id": 10}})
	require.NoError(t, err)
	assert.Equal(t, "(a.status = @p1_status) AND (a.id > @last_id)", extended.SQL)
	assert.Len(t, extended.Args, 2)

	fromEmpty, err := criteria.Clause{}.And(criteria.Predicate{Conj: criteria.And, SQL: "TRUE"})
	require.NoError(t, err)
	assert.Equal(t, "TRUE", fromEmpty.SQL)
}

func TestClause_AndRejectsRebinding(t *testing.T) {
	base, err := criteria.Build(criteria.Criteria{criteria.Eq("title", "go")}, "a")
	require.NoError(t, err)

	tests := []struct {
		name  string
		preds []criteria.Predicate
	}{
		{
			name:  "name from translated criteria",
			preds: []criteria.Predicate{{Conj: criteria.And, SQL: "a.title <> @p1_title", Args: pgx.NamedArgs{"p1_title": "x"}}},
		},
		{
			name: "name repeated across predicates",
			preds: []criteria.Predicate{
				{Conj: criteria.And, SQL: "a.tenant = @t", Args: pgx.NamedArgs{"t": 1}},
				{Conj: criteria.Or, SQL: "a.owner = @t", Args: pgx.NamedArgs{"t": 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.And(tt.preds...)
			assert.ErrorIs(t, err, criteria.ErrDuplicateParam)
			assert.Equal(t, "go", base.Args["p1_title"])
		})
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want criteria.Operator
		ok   bool
	}{
		{"=", criteria.OpEq, true},
		{"<>", criteria.OpNeq, true},
		{" NOT   IN ", criteria.OpNotIn, true},
		{"orLike", criteria.OpOrLike, true},
		{"ORLIKE", criteria.OpOrLike, true},
		{"between", "", false},
	}
	for _, tt := range tests {
		got, ok := criteria.ParseOperator(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if ok {
			assert.True(t, got.Valid())
		}
	}
	assert.True(t, criteria.OpIn.Multi())
	assert.True(t, criteria.OpIsNull.Unary())
	assert.False(t, criteria.Operator("~").Valid())
}
