package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileExt = ".cache"

// FilesystemPool writes one file per item under <dir>/<namespace>.
type FilesystemPool struct {
	*pool
	dir string
}

func NewFilesystemPool(dir, namespace string, defaultTTL time.Duration) (*FilesystemPool, error) {
	ns := strings.Trim(namespace, ": ")
	root := filepath.Join(dir, "@")
	if ns != "" {
		root = filepath.Join(dir, ns)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", root, err)
	}

	return &FilesystemPool{
		pool: newPool("filesystem", namespace, defaultTTL, &fileStore{root: root, now: time.Now}),
		dir:  root,
	}, nil
}

func (p *FilesystemPool) Dir() string {
	return p.dir
}

type fileEntry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Value     []byte    `json:"value"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

type fileStore struct {
	root string
	now  func() time.Time
}

func (s *fileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.root, hex.EncodeToString(sum[:])+fileExt)
}

func (s *fileStore) get(_ context.Context, key string) ([]byte, bool, error) {
	e, err := readEntry(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e.Key != key {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		_ = os.Remove(s.path(key))
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (s *fileStore) set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *fileStore) del(_ context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := os.Remove(s.path(k)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// clear empties the namespace directory. The directory already scopes the
// namespace, so prefix is not needed.
func (s *fileStore) clear(_ context.Context, _ string) error {
	return s.each(func(path string, _ fileEntry) error {
		return os.Remove(path)
	})
}

func (s *fileStore) prune(_ context.Context) error {
	now := s.now()
	return s.each(func(path string, e fileEntry) error {
		if e.expired(now) {
			return os.Remove(path)
		}
		return nil
	})
}

func (s *fileStore) each(fn func(path string, e fileEntry) error) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}
	var errs []error
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != fileExt {
			continue
		}
		path := filepath.Join(s.root, de.Name())
		e, err := readEntry(path)
		if err != nil {
			// unreadable entries are dropped
			errs = append(errs, os.Remove(path))
			continue
		}
		if err := fn(path, e); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readEntry(path string) (fileEntry, error) {
	var e fileEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("corrupt cache file %s: %w", filepath.Base(path), err)
	}
	return e, nil
}
