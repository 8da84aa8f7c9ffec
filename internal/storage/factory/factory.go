// Package factory builds storage backends from environment configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/apikit/internal/storage"
	"github.com/DjordjeVuckovic/apikit/internal/storage/es"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
)

// NewSearcher returns the searcher cfg.Search selects. PostgreSQL searches
// go through m.
func NewSearcher[T any](cfg *StorageConfig, m *pg.Manager[T], alias string) (storage.Searcher[T], error) {
	switch cfg.Search {
	case storage.PG:
		return storage.FromManager(m, alias), nil
	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("elasticsearch search selected without elasticsearch configuration")
		}
		f, err := es.NewFinder[T](*cfg.Es)
		if err != nil {
			return nil, err
		}
		return storage.FromFinder(f), nil
	default:
		return nil, fmt.Errorf("unsupported search storage: %s", cfg.Search)
	}
}

// NewPool opens the PostgreSQL pool.
func NewPool(ctx context.Context, cfg *StorageConfig) (*pg.ConnectionPool, error) {
	pool, err := pg.NewConnectionPool(ctx, cfg.Pg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}
	return pool, nil
}
