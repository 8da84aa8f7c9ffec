package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

// recorder captures the statements a manager sends.
type recorder struct {
	sql   string
	args  []any
	count int64
	tag   string
}

func (r *recorder) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.sql, r.args = sql, args
	return nil, errStop
}

func (r *recorder) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	r.sql, r.args = sql, args
	return countRow{n: r.count}
}

func (r *recorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag(r.tag), nil
}

type countRow struct {
	n int64
}

func (c countRow) Scan(dest ...any) error {
	switch d := dest[0].(type) {
	case *int64:
		*d = c.n
	case **int64:
		if c.n == 0 {
			*d = nil
			return nil
		}
		n := c.n
		*d = &n
	}
	return nil
}

type article struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

func newTestManager(t *testing.T, db Querier, opts ...Option[article]) *Manager[article] {
	t.Helper()
	m, err := NewManager[article](db, "articles", opts...)
	require.NoError(t, err)
	return m
}

func namedArgs(t *testing.T, args []any) pgx.NamedArgs {
	t.Helper()
	require.Len(t, args, 1)
	na, ok := args[0].(pgx.NamedArgs)
	require.True(t, ok)
	return na
}

func TestNewManager_RejectsTable(t *testing.T) {
	_, err := NewManager[article](&recorder{}, "articles; drop")
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = NewManager[article](&recorder{}, "public.articles")
	assert.NoError(t, err)
}

func TestManager_PageSQL(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(t, rec)

	cs := criteria.Criteria{
		criteria.Eq("language", "english"),
		criteria.Op("title", criteria.OpLike, "%go%"),
	}
	_, err := m.Page(context.Background(), cs, "a", 10, 20)
	require.ErrorIs(t, err, errStop)

	assert.Equal(t,
		"SELECT a.* FROM articles AS a WHERE (a.language = @p1_language) AND (lower(a.title) LIKE lower(@p2_title))"+
			" ORDER BY a.id LIMIT 10 OFFSET 20",
		rec.sql)
	args := namedArgs(t, rec.args)
	assert.Equal(t, "english", args["p1_language"])
	assert.Equal(t, "%go%", args["p2_title"])
}

func TestManager_SearchWithoutCriteria(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(t, rec, WithOrderBy[article]("{alias}.created_at DESC"))

	_, err := m.Search(context.Background(), nil, "")
	require.ErrorIs(t, err, errStop)

	assert.Equal(t, "SELECT e.* FROM articles AS e ORDER BY e.created_at DESC", rec.sql)
}

func TestManager_Count(t *testing.T) {
	rec := &recorder{count: 42}
	m := newTestManager(t, rec)

	n, err := m.Count(context.Background(), criteria.Criteria{criteria.Op("id", criteria.OpIn, []int{1, 2})}, "")
	require.NoError(t, err)

	assert.EqualValues(t, 42, n)
	assert.Equal(t, "SELECT COUNT(*) FROM articles AS e WHERE e.id IN (@p1_id_0, @p1_id_1)", rec.sql)
}

func TestManager_Hooks(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(t, rec,
		WithPreSearch[article](func(_ context.Context, _ string, cs criteria.Criteria) (criteria.Criteria, error) {
			return append(cs, criteria.Eq("deleted", false)), nil
		}),
		WithPostSearch[article](func(_ context.Context, alias string, _ criteria.Criteria) ([]criteria.Predicate, error) {
			return []criteria.Predicate{{
				Conj: criteria.And,
				SQL:  alias + ".tenant_id = @tenant",
				Args: pgx.NamedArgs{"tenant": 7},
			}}, nil
		}),
	)

	_, err := m.Count(context.Background(), criteria.Criteria{criteria.Eq("language", "english")}, "")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM articles AS e WHERE ((e.language = @p1_language) AND (e.deleted = @p2_deleted)) AND (e.tenant_id = @tenant)",
		rec.sql)
	args := namedArgs(t, rec.args)
	assert.Equal(t, 7, args["tenant"])
	assert.Equal(t, false, args["p2_deleted"])
}

func TestManager_PostSearchCannotRebindParams(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(t, rec,
		WithPostSearch[article](func(_ context.Context, alias string, _ criteria.Criteria) ([]criteria.Predicate, error) {
			return []criteria.Predicate{{
				Conj: criteria.And,
				SQL:  alias + ".title <> @p1_title",
				Args: pgx.NamedArgs{"p1_title": "hidden"},
			}}, nil
		}),
	)

	_, err := m.Count(context.Background(), criteria.Criteria{criteria.Eq("title", "go")}, "")

	assert.ErrorIs(t, err, criteria.ErrDuplicateParam)
	assert.Empty(t, rec.sql)
}

func TestManager_PreSearchError(t *testing.T) {
	boom := errors.New("boom")
	m := newTestManager(t, &recorder{},
		WithPreSearch[article](func(context.Context, string, criteria.Criteria) (criteria.Criteria, error) {
			return nil, boom
		}),
	)

	_, err := m.Search(context.Background(), nil, "")
	assert.ErrorIs(t, err, boom)
}

func TestManager_InvalidCriteria(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(t, rec)

	_, err := m.Count(context.Background(), criteria.Criteria{criteria.Eq("bad field", 1)}, "")
	assert.ErrorIs(t, err, criteria.ErrInvalidIdentifier)
	assert.Empty(t, rec.sql)
}

func TestManager_LastID(t *testing.T) {
	tests := []struct {
		name string
		max  int64
		want int64
	}{
		{name: "empty table", max: 0, want: 1},
		{name: "next after max", max: 41, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{count: tt.max}
			m := newTestManager(t, rec)

			got, err := m.LastID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "SELECT MAX(id) FROM articles", rec.sql)
		})
	}
}

func TestManager_Delete(t *testing.T) {
	rec := &recorder{tag: "DELETE 1"}
	m := newTestManager(t, rec)

	require.NoError(t, m.Delete(context.Background(), 5))
	assert.Equal(t, "DELETE FROM articles WHERE id = @id", rec.sql)
	assert.Equal(t, 5, namedArgs(t, rec.args)["id"])

	rec.tag = "DELETE 0"
	assert.ErrorIs(t, m.Delete(context.Background(), 6), ErrNotFound)
}

func TestManager_Insert(t *testing.T) {
	rec := &recorder{count: 12}
	m := newTestManager(t, rec)

	id, err := m.Insert(context.Background(), map[string]any{"title": "Go", "author": nil})
	require.NoError(t, err)

	assert.EqualValues(t, 12, id)
	assert.Equal(t, "INSERT INTO articles (author, title) VALUES (@author, @title) RETURNING id", rec.sql)
	args := namedArgs(t, rec.args)
	assert.Equal(t, "Go", args["title"])
	assert.Nil(t, args["author"])

	_, err = m.Insert(context.Background(), map[string]any{"title)--": 1})
	assert.ErrorIs(t, err, criteria.ErrInvalidIdentifier)
}
