package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/DjordjeVuckovic/apikit/pkg/config/env"
)

type Config struct {
	// Directory is the default root of filesystem pools.
	Directory string
	// RedisDSN is used by UseRedis when no DSN is passed, e.g.
	// redis://localhost:6379/3.
	RedisDSN        string
	CleanupInterval time.Duration
}

func LoadConfig() (*Config, error) {
	cleanup, err := env.Duration("CACHE_CLEANUP_INTERVAL", defaultCleanupInterval)
	if err != nil {
		return nil, err
	}

	return &Config{
		Directory:       env.String("CACHE_DIR", filepath.Join(os.TempDir(), "apikit-cache")),
		RedisDSN:        env.String("REDIS_URL", ""),
		CleanupInterval: cleanup,
	}, nil
}
