package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is a cache entry. GetItem always returns an Item; IsHit tells a
// stored value from an empty one.
type Item struct {
	key   string
	value []byte
	hit   bool
	ttl   time.Duration
}

func NewItem(key string) *Item {
	return &Item{key: key}
}

func (i *Item) Key() string {
	return i.key
}

func (i *Item) IsHit() bool {
	return i.hit
}

// Value returns the stored JSON.
func (i *Item) Value() []byte {
	return i.value
}

// Decode unmarshals the stored JSON into dst.
func (i *Item) Decode(dst any) error {
	if !i.hit && i.value == nil {
		return fmt.Errorf("cache item %q: no value", i.key)
	}
	return json.Unmarshal(i.value, dst)
}

// Set stores v as JSON.
func (i *Item) Set(v any) (*Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return i, fmt.Errorf("cache item %q: %w", i.key, err)
	}
	i.value = data
	return i, nil
}

// SetRaw stores already encoded JSON.
func (i *Item) SetRaw(data []byte) *Item {
	i.value = data
	return i
}

// ExpiresAfter overrides the pool lifetime for this item. Zero keeps the
// pool default.
func (i *Item) ExpiresAfter(ttl time.Duration) *Item {
	i.ttl = ttl
	return i
}
