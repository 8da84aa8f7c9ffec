package main

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/apikit/internal/auth"
	"github.com/DjordjeVuckovic/apikit/internal/storage/factory"
	"github.com/DjordjeVuckovic/apikit/pkg/cache"
	"github.com/DjordjeVuckovic/apikit/pkg/config/env"
)

const (
	CacheMemory     = "memory"
	CacheFilesystem = "filesystem"
	CacheRedis      = "redis"
)

type AppConfig struct {
	Env           string
	DefaultLocale string
	PolicyPath    string
	Tokens        auth.Tokens

	StorageConfig *factory.StorageConfig
	CacheConfig   *cache.Config
	CacheDriver   string
	CacheTTL      time.Duration
}

func LoadAppConfig() (*AppConfig, error) {
	appEnv := env.AppEnv()
	if err := env.LoadDotEnv(appEnv, ".env"); err != nil {
		return nil, err
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}
	cacheCfg, err := cache.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}
	ttl, err := env.Duration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.ParseTokens(env.String("API_TOKENS", ""))
	if err != nil {
		return nil, fmt.Errorf("API_TOKENS: %w", err)
	}

	driver := env.String("CACHE_DRIVER", "")
	if driver == "" {
		driver = CacheMemory
		if cacheCfg.RedisDSN != "" {
			driver = CacheRedis
		}
	}
	switch driver {
	case CacheMemory, CacheFilesystem, CacheRedis:
	default:
		return nil, fmt.Errorf("unsupported CACHE_DRIVER %q", driver)
	}

	return &AppConfig{
		Env:           appEnv,
		DefaultLocale: env.String("DEFAULT_LOCALE", "en"),
		PolicyPath:    env.String("ACCESS_POLICY", "cmd/news_api/access.yaml"),
		Tokens:        tokens,
		StorageConfig: storageCfg,
		CacheConfig:   cacheCfg,
		CacheDriver:   driver,
		CacheTTL:      ttl,
	}, nil
}

// openCache returns the article pool for the configured driver.
func (c *AppConfig) openCache(caches *cache.Cache) (cache.Pool, error) {
	switch c.CacheDriver {
	case CacheRedis:
		return caches.UseRedis("articles", c.CacheTTL, "")
	case CacheFilesystem:
		return caches.UseFilesystem("articles", c.CacheTTL, "")
	default:
		return caches.UseMemory("articles", c.CacheTTL), nil
	}
}
