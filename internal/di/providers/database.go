package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/litbook/litbook-server/internal/cache"
	"github.com/litbook/litbook-server/internal/config"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the badger cache and its garbage collection loop.
type CacheHandle struct {
	*cache.Cache
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable. It waits for a running value log GC
// to finish before closing badger.
func (h *CacheHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return h.Close()
}

// ProvideCache provides the persistent LLM result cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Cache.Dir, log.Logger)
	if err != nil {
		return nil, err
	}

	h := startCacheGC(c, cacheGCInterval)
	log.Info("Cache initialized", "dir", cfg.Cache.Dir)
	return h, nil
}

// startCacheGC runs CollectGarbage on c every interval until the handle is
// shut down.
func startCacheGC(c *cache.Cache, interval time.Duration) *CacheHandle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &CacheHandle{Cache: c, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.CollectGarbage()
			case <-ctx.Done():
				return
			}
		}
	}()

	return h
}
