// Package cache provides namespaced cache pools backed by memory
// (go-cache), redis (go-redis) or the filesystem.
//
// Pool operations report success as booleans. Backend failures are logged
// and treated as a miss.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid cache key")

// reservedChars may not appear in keys.
const reservedChars = "{}()/\\@:"

type Pool interface {
	HasItem(ctx context.Context, key string) bool
	GetItem(ctx context.Context, key string) *Item
	GetItems(ctx context.Context, keys ...string) map[string]*Item
	Save(ctx context.Context, item *Item) bool
	DeleteItem(ctx context.Context, key string) bool
	DeleteItems(ctx context.Context, keys ...string) bool
	Clear(ctx context.Context) bool
	Prune(ctx context.Context) bool
	Namespace() string
}

// store is the backend contract shared by all pools. Keys reaching a store
// are already namespaced.
type store interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	del(ctx context.Context, keys ...string) error
	clear(ctx context.Context, prefix string) error
	prune(ctx context.Context) error
}

type pool struct {
	namespace  string
	defaultTTL time.Duration
	kind       string
	store      store
}

func newPool(kind, namespace string, defaultTTL time.Duration, s store) *pool {
	if defaultTTL < 0 {
		defaultTTL = 0
	}
	return &pool{
		namespace:  strings.Trim(namespace, ": "),
		defaultTTL: defaultTTL,
		kind:       kind,
		store:      s,
	}
}

func (p *pool) Namespace() string {
	return p.namespace
}

func (p *pool) HasItem(ctx context.Context, key string) bool {
	return p.GetItem(ctx, key).IsHit()
}

func (p *pool) GetItem(ctx context.Context, key string) *Item {
	item := NewItem(key)
	if err := validateKey(key); err != nil {
		p.warn("get", key, err)
		return item
	}

	data, ok, err := p.store.get(ctx, p.prefixed(key))
	if err != nil {
		p.warn("get", key, err)
		return item
	}
	if ok {
		item.value = data
		item.hit = true
	}
	return item
}

func (p *pool) GetItems(ctx context.Context, keys ...string) map[string]*Item {
	items := make(map[string]*Item, len(keys))
	for _, k := range keys {
		items[k] = p.GetItem(ctx, k)
	}
	return items
}

func (p *pool) Save(ctx context.Context, item *Item) bool {
	if item == nil {
		return false
	}
	if err := validateKey(item.key); err != nil {
		p.warn("save", item.key, err)
		return false
	}

	ttl := item.ttl
	if ttl <= 0 {
		ttl = p.defaultTTL
	}
	if err := p.store.set(ctx, p.prefixed(item.key), item.value, ttl); err != nil {
		p.warn("save", item.key, err)
		return false
	}
	item.hit = true
	return true
}

func (p *pool) DeleteItem(ctx context.Context, key string) bool {
	return p.DeleteItems(ctx, key)
}

func (p *pool) DeleteItems(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := validateKey(k); err != nil {
			p.warn("delete", k, err)
			return false
		}
		prefixed = append(prefixed, p.prefixed(k))
	}
	if err := p.store.del(ctx, prefixed...); err != nil {
		p.warn("delete", strings.Join(keys, ","), err)
		return false
	}
	return true
}

func (p *pool) Clear(ctx context.Context) bool {
	if err := p.store.clear(ctx, p.prefixed("")); err != nil {
		p.warn("clear", "", err)
		return false
	}
	return true
}

func (p *pool) Prune(ctx context.Context) bool {
	if err := p.store.prune(ctx); err != nil {
		p.warn("prune", "", err)
		return false
	}
	return true
}

func (p *pool) prefixed(key string) string {
	if p.namespace == "" {
		return key
	}
	return p.namespace + ":" + key
}

func (p *pool) warn(op, key string, err error) {
	slog.Warn("Cache operation failed",
		"pool", p.kind,
		"namespace", p.namespace,
		"op", op,
		"key", key,
		"error", err,
	)
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, reservedChars) {
		return errors.Join(ErrInvalidKey, errors.New("key contains one of "+reservedChars))
	}
	return nil
}
