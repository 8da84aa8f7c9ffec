package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/apikit/internal/storage"
	"github.com/DjordjeVuckovic/apikit/internal/storage/es"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
	"github.com/DjordjeVuckovic/apikit/pkg/stringsutil"
)

// StorageConfig holds the PostgreSQL pool, always required, and the
// optional Elasticsearch client used when search runs on ES.
type StorageConfig struct {
	Search storage.Type
	Pg     pg.PoolConfig
	Es     *es.ClientConfig
}

func LoadEnv() (*StorageConfig, error) {
	searchType := storage.Type(strings.ToLower(os.Getenv("SEARCH_STORAGE")))
	if searchType == "" {
		searchType = storage.PG
	}
	if searchType != storage.ES && searchType != storage.PG {
		slog.Error("Invalid SEARCH_STORAGE environment variable value", "value", searchType)
		return nil, fmt.Errorf(
			"invalid SEARCH_STORAGE environment variable value: %s, expected one of %v",
			searchType,
			[]storage.Type{storage.ES, storage.PG})
	}

	pgCfg := pg.PoolConfig{ConnStr: os.Getenv("PG_CONNECTION_STRING")}
	if pgCfg.ConnStr == "" {
		slog.Error("PostgreSQL connection string is not set")
		return nil, fmt.Errorf("PG_CONNECTION_STRING environment variable is not set")
	}
	if raw := os.Getenv("PG_MAX_CONNS"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid PG_MAX_CONNS value: %s", raw)
		}
		pgCfg.MaxConns = int32(n)
	}

	var esCfg *es.ClientConfig
	if searchType == storage.ES {
		esCfg = &es.ClientConfig{
			Addresses: stringsutil.SplitTrim(os.Getenv("ES_ADDRESSES"), ","),
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		if len(esCfg.Addresses) == 0 || esCfg.IndexName == "" {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", esCfg.Addresses, "indexName", esCfg.IndexName)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: addresses or index name is missing")
		}
	}

	return &StorageConfig{
		Search: searchType,
		Pg:     pgCfg,
		Es:     esCfg,
	}, nil
}
