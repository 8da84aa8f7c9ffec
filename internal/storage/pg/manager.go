// Package pg runs criteria-driven queries against PostgreSQL tables.
package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

// DefaultAlias is the table alias used when a search passes none.
const DefaultAlias = "e"

var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidTable = errors.New("invalid table name")
)

var (
	tablePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Querier is the part of pgxpool.Pool, pgx.Conn and pgx.Tx the manager uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PreSearchFunc may rewrite criteria before they are translated.
type PreSearchFunc func(ctx context.Context, alias string, cs criteria.Criteria) (criteria.Criteria, error)

// PostSearchFunc returns predicates ANDed after the translated criteria.
type PostSearchFunc func(ctx context.Context, alias string, cs criteria.Criteria) ([]criteria.Predicate, error)

// Manager reads and deletes rows of one table mapped onto T by column name
// (db struct tags). The table must have an integer id column.
type Manager[T any] struct {
	db         Querier
	table      string
	entity     string
	orderBy    string
	preSearch  PreSearchFunc
	postSearch PostSearchFunc
	logger     *slog.Logger
}

type Option[T any] func(*Manager[T])

// WithOrderBy sets the ORDER BY of searches, written against the alias:
// "{alias}.created_at DESC". Defaults to "{alias}.id".
func WithOrderBy[T any](order string) Option[T] {
	return func(m *Manager[T]) {
		m.orderBy = order
	}
}

func WithPreSearch[T any](fn PreSearchFunc) Option[T] {
	return func(m *Manager[T]) {
		m.preSearch = fn
	}
}

func WithPostSearch[T any](fn PostSearchFunc) Option[T] {
	return func(m *Manager[T]) {
		m.postSearch = fn
	}
}

func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(m *Manager[T]) {
		m.logger = l
	}
}

// WithEntity names the entity in log messages. Defaults to the table name.
func WithEntity[T any](name string) Option[T] {
	return func(m *Manager[T]) {
		m.entity = name
	}
}

func NewManager[T any](db Querier, table string, opts ...Option[T]) (*Manager[T], error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	m := &Manager[T]{
		db:      db,
		table:   table,
		entity:  table,
		orderBy: "{alias}.id",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GetByID returns the row with id, or nil when there is none.
func (m *Manager[T]) GetByID(ctx context.Context, id any) (*T, error) {
	sql := fmt.Sprintf("SELECT e.* FROM %s AS e WHERE e.id = @id LIMIT 1", m.table)
	return m.one(ctx, sql, pgx.NamedArgs{"id": id})
}

// FindOneBy returns the first row matching cs against DefaultAlias, or nil.
func (m *Manager[T]) FindOneBy(ctx context.Context, cs criteria.Criteria) (*T, error) {
	clause, err := m.where(ctx, cs, DefaultAlias)
	if err != nil {
		return nil, err
	}
	sql := m.selectSQL(DefaultAlias, clause) + " LIMIT 1"
	return m.one(ctx, sql, clause.Args)
}

// Search returns every row matching cs, ordered.
func (m *Manager[T]) Search(ctx context.Context, cs criteria.Criteria, alias string) ([]T, error) {
	return m.Page(ctx, cs, alias, 0, 0)
}

// Page returns limit rows matching cs after skipping offset. A limit of 0
// returns everything from offset on.
func (m *Manager[T]) Page(ctx context.Context, cs criteria.Criteria, alias string, limit, offset int) ([]T, error) {
	alias = orDefault(alias)
	clause, err := m.where(ctx, cs, alias)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(m.selectSQL(alias, clause))
	if m.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.ReplaceAll(m.orderBy, "{alias}", alias))
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", offset)
	}

	rows, err := m.db.Query(ctx, sb.String(), clause.Args)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to search %s", m.entity)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to scan %s", m.entity)
	}
	return items, nil
}

// Count returns the number of rows matching cs.
func (m *Manager[T]) Count(ctx context.Context, cs criteria.Criteria, alias string) (int64, error) {
	alias = orDefault(alias)
	clause, err := m.where(ctx, cs, alias)
	if err != nil {
		return 0, err
	}

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s AS %s", m.table, alias)
	if !clause.IsEmpty() {
		sql += " WHERE " + clause.SQL
	}

	var total int64
	if err := m.db.QueryRow(ctx, sql, clause.Args).Scan(&total); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to count %s", m.entity)
	}
	return total, nil
}

// LastID is the id the next row would get: MAX(id)+1, or 1 for an empty
// table.
func (m *Manager[T]) LastID(ctx context.Context) (int64, error) {
	var last *int64
	sql := fmt.Sprintf("SELECT MAX(id) FROM %s", m.table)
	if err := m.db.QueryRow(ctx, sql).Scan(&last); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read last %s id", m.entity)
	}
	if last == nil {
		return 1, nil
	}
	return *last + 1, nil
}

// Insert adds a row and returns its id. Column names must be plain
// identifiers.
func (m *Manager[T]) Insert(ctx context.Context, values map[string]any) (int64, error) {
	if len(values) == 0 {
		return 0, apperr.NewValidation("nothing to insert")
	}
	cols := make([]string, 0, len(values))
	for col := range values {
		if !columnPattern.MatchString(col) {
			return 0, apperr.NewValidationWrap(fmt.Sprintf("column %q is not a valid identifier", col), criteria.ErrInvalidIdentifier)
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)

	params := make([]string, len(cols))
	args := make(pgx.NamedArgs, len(cols))
	for i, col := range cols {
		params[i] = "@" + col
		args[col] = values[col]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		m.table, strings.Join(cols, ", "), strings.Join(params, ", "))

	var id int64
	if err := m.db.QueryRow(ctx, sql, args).Scan(&id); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to insert %s", m.entity)
	}
	m.Info("Inserted", "id", id)
	return id, nil
}

// Delete removes the row with id. ErrNotFound when nothing was deleted.
func (m *Manager[T]) Delete(ctx context.Context, id any) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = @id", m.table)
	tag, err := m.db.Exec(ctx, sql, pgx.NamedArgs{"id": id})
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to delete %s", m.entity)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %v: %w", m.entity, id, ErrNotFound)
	}
	m.Info("Deleted", "id", id)
	return nil
}

// Source binds cs to the manager for paged listing.
func (m *Manager[T]) Source(cs criteria.Criteria, alias string) *Query[T] {
	return &Query[T]{m: m, criteria: cs, alias: alias}
}

func (m *Manager[T]) where(ctx context.Context, cs criteria.Criteria, alias string) (criteria.Clause, error) {
	if m.preSearch != nil {
		rewritten, err := m.preSearch(ctx, alias, cs)
		if err != nil {
			return criteria.Clause{}, err
		}
		cs = rewritten
	}

	clause, err := criteria.Build(cs, alias)
	if err != nil {
		return criteria.Clause{}, err
	}

	if m.postSearch != nil {
		extra, err := m.postSearch(ctx, alias, cs)
		if err != nil {
			return criteria.Clause{}, err
		}
		if clause, err = clause.And(extra...); err != nil {
			return criteria.Clause{}, err
		}
	}
	return clause, nil
}

func (m *Manager[T]) selectSQL(alias string, clause criteria.Clause) string {
	sql := fmt.Sprintf("SELECT %s.* FROM %s AS %s", alias, m.table, alias)
	if !clause.IsEmpty() {
		sql += " WHERE " + clause.SQL
	}
	return sql
}

func (m *Manager[T]) one(ctx context.Context, sql string, args pgx.NamedArgs) (*T, error) {
	rows, err := m.db.Query(ctx, sql, args)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load %s", m.entity)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to scan %s", m.entity)
	}
	return item, nil
}

func (m *Manager[T]) Info(message string, args ...any) {
	m.logger.Info(m.entity+": "+message, args...)
}

func (m *Manager[T]) Error(message string, args ...any) {
	m.logger.Error(m.entity+": "+message, args...)
}

// Warning logs err as "message(file:line)".
func (m *Manager[T]) Warning(err error) {
	m.logger.Warn(m.entity + ": " + apperr.CriticalText(err, ""))
}

func (m *Manager[T]) Critical(ctx context.Context, err error) {
	apperr.Critical(ctx, err, m.entity+":")
}

func orDefault(alias string) string {
	if alias == "" {
		return DefaultAlias
	}
	return alias
}

// Query is a criteria search bound to a manager. It pages through the
// matching rows.
type Query[T any] struct {
	m        *Manager[T]
	criteria criteria.Criteria
	alias    string
}

func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	return q.m.Count(ctx, q.criteria, q.alias)
}

func (q *Query[T]) Fetch(ctx context.Context, limit, offset int) ([]T, error) {
	return q.m.Page(ctx, q.criteria, q.alias, limit, offset)
}
