// Package cache is a small persistent key/value cache on badger, used to
// remember LLM results (segmentations and annotations) across restarts.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/zeebo/blake3"
)

// Cache stores JSON values with a per-entry TTL.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a cache in dir. An empty dir opens an in-memory
// cache.
func Open(dir string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("cache opened", "dir", dir, "in_memory", dir == "")

	return &Cache{db: db, logger: logger}, nil
}

// Key derives a fixed-length cache key from a namespace and parts. Parts are
// length-prefixed before hashing so ("ab","c") and ("a","bc") differ.
func Key(namespace string, parts ...string) string {
	h := blake3.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		_, _ = h.Write([]byte(p))
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// Get decodes the value stored at key into dest. A missing or expired key
// reports false with a nil error.
func (c *Cache) Get(_ context.Context, key string, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key. A zero ttl keeps the entry until deleted.
func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	entry := badger.NewEntry([]byte(key), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	}); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// CollectGarbage reclaims value log space. Call periodically.
func (c *Cache) CollectGarbage() {
	for {
		if err := c.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
				c.logger.Warn("cache gc failed", "error", err)
			}
			return
		}
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close badger cache: %w", err)
	}
	return nil
}
