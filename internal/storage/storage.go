// Package storage picks the backend criteria searches run on.
package storage

import (
	"context"

	"github.com/DjordjeVuckovic/apikit/internal/storage/es"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
)

type Type string

const (
	PG Type = "pg"
	ES Type = "es"
)

// Source is a countable, pageable result set.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, limit, offset int) ([]T, error)
}

// Searcher binds criteria to a backend.
type Searcher[T any] interface {
	Search(cs criteria.Criteria) Source[T]
	Backend() Type
}

type pgSearcher[T any] struct {
	m     *pg.Manager[T]
	alias string
}

// FromManager searches a table through m.
func FromManager[T any](m *pg.Manager[T], alias string) Searcher[T] {
	return pgSearcher[T]{m: m, alias: alias}
}

func (s pgSearcher[T]) Search(cs criteria.Criteria) Source[T] {
	return s.m.Source(cs, s.alias)
}

func (s pgSearcher[T]) Backend() Type { return PG }

type esSearcher[T any] struct {
	f *es.Finder[T]
}

// FromFinder searches an index through f. Raw expressions fail with
// es.ErrRawUnsupported.
func FromFinder[T any](f *es.Finder[T]) Searcher[T] {
	return esSearcher[T]{f: f}
}

func (s esSearcher[T]) Search(cs criteria.Criteria) Source[T] {
	return s.f.Source(cs)
}

func (s esSearcher[T]) Backend() Type { return ES }

// Healthy pings the cluster behind the index.
func (s esSearcher[T]) Healthy(ctx context.Context) bool { return s.f.Healthy(ctx) }
