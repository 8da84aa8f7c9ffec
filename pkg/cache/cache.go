package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrNoRedisDSN = errors.New("no redis DSN configured")

// DefaultNamespace replaces an empty namespace on pools handed out by Cache,
// so Clear on one of them never flushes the shared backend.
const DefaultNamespace = "default"

func sharedNamespace(namespace string) string {
	if strings.Trim(namespace, ": ") == "" {
		return DefaultNamespace
	}
	return namespace
}

// Cache hands out pools. Memory pools share one go-cache instance and redis
// pools share one client per DSN.
type Cache struct {
	cfg    Config
	memory *gocache.Cache

	mu      sync.Mutex
	clients map[string]*redis.Client
}

func New(cfg Config) *Cache {
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	return &Cache{
		cfg:     cfg,
		memory:  gocache.New(gocache.NoExpiration, cleanup),
		clients: make(map[string]*redis.Client),
	}
}

func (c *Cache) UseMemory(namespace string, defaultTTL time.Duration) Pool {
	return newMemoryPool(c.memory, sharedNamespace(namespace), defaultTTL)
}

// UseFilesystem opens a pool under dir, or the configured directory when
// dir is empty. Expired items are pruned right away when defaultTTL is set.
func (c *Cache) UseFilesystem(namespace string, defaultTTL time.Duration, dir string) (Pool, error) {
	if dir == "" {
		dir = c.cfg.Directory
	}
	p, err := NewFilesystemPool(dir, namespace, defaultTTL)
	if err != nil {
		return nil, err
	}
	if defaultTTL > 0 && !p.Prune(context.Background()) {
		slog.Warn("Filesystem cache left unpruned", "dir", p.Dir())
	}
	return p, nil
}

// UseRedis opens a pool on dsn, or the configured DSN when dsn is empty.
func (c *Cache) UseRedis(namespace string, defaultTTL time.Duration, dsn string) (Pool, error) {
	if dsn == "" {
		dsn = c.cfg.RedisDSN
	}
	if dsn == "" {
		return nil, ErrNoRedisDSN
	}

	client, err := c.client(dsn)
	if err != nil {
		return nil, err
	}
	return NewRedisPool(client, sharedNamespace(namespace), defaultTTL), nil
}

func (c *Cache) client(dsn string) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.clients[dsn]; ok {
		return cl, nil
	}
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid redis DSN: %w", err)
	}
	cl := redis.NewClient(opts)
	c.clients[dsn] = cl
	return cl, nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for dsn, cl := range c.clients {
		errs = append(errs, cl.Close())
		delete(c.clients, dsn)
	}
	return errors.Join(errs...)
}
