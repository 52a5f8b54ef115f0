package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion changes whenever buildIndexMapping does; a mismatch on
// open drops and recreates the index.
const mappingVersion = "1"

// Index wraps a Bleve index of books. All methods are safe for concurrent
// use; Rebuild takes an exclusive lock.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger *slog.Logger
}

// Options configures the index.
type Options struct {
	// Dir holds the index. Empty keeps the index in memory.
	Dir    string
	Logger *slog.Logger
}

// Open opens the index in opts.Dir, creating it when missing, outdated or
// unreadable.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Dir == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.Dir, "books.bleve")
	versionPath := filepath.Join(opts.Dir, "books.version")

	var idx bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search mapping changed, rebuilding index",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			idx, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				idx = nil
			}
		}
		if idx == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if idx == nil {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &Index{index: idx, path: indexPath, logger: logger}, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

// IndexBook adds or replaces the document of a book.
func (i *Index) IndexBook(doc *BookDocument) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.Index(doc.ID, doc.toMap())
}

// IndexBooks indexes docs in batches.
func (i *Index) IndexBooks(docs []*BookDocument) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	const batchSize = 500
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))

		batch := i.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteBook removes a book from the index.
func (i *Index) DeleteBook(bookID string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.Delete(bookID)
}

// Count returns the number of indexed books.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Rebuild drops every document and replaces the index with docs.
func (i *Index) Rebuild(docs []*BookDocument) error {
	i.mu.Lock()
	if err := i.index.Close(); err != nil {
		i.mu.Unlock()
		return fmt.Errorf("close index: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)
	if i.path == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(i.path); err != nil {
			i.mu.Unlock()
			return fmt.Errorf("remove index: %w", err)
		}
		idx, err = bleve.New(i.path, buildIndexMapping())
	}
	if err != nil {
		i.mu.Unlock()
		return fmt.Errorf("create index: %w", err)
	}
	i.index = idx
	i.mu.Unlock()

	if err := i.IndexBooks(docs); err != nil {
		return err
	}
	i.logger.Info("rebuilt search index", "books", len(docs))
	return nil
}
