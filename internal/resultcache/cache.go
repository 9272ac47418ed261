// Package resultcache is the content-addressed RunResult store: one
// hex-named JSON blob per RunId in a flat directory. Writes are keyed
// by RunId, so concurrent writers of the same key produce identical
// bytes and overwrite races are harmless.
package resultcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// Cache stores marshalled RunResults under dir.
type Cache struct {
	dir string
	mu  sync.RWMutex
}

// New creates the cache directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("resultcache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(id domain.RunID) string {
	return filepath.Join(c.dir, string(id)+".json")
}

// Get loads the cached result for id, returning (nil, false) on miss.
func (c *Cache) Get(id domain.RunID) (*domain.RunResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := os.ReadFile(c.path(id))
	if err != nil {
		return nil, false
	}
	var result domain.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false // corrupt blob; treat as miss
	}
	return &result, true
}

// Put stores result under id. The write goes through a temp file and
// rename so a reader never observes a torn blob.
func (c *Cache) Put(id domain.RunID, result *domain.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("resultcache: marshal %s: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := c.path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("resultcache: write %s: %w", id, err)
	}
	if err := os.Rename(tmp, c.path(id)); err != nil {
		return fmt.Errorf("resultcache: commit %s: %w", id, err)
	}
	return nil
}

// Has reports whether id is cached without reading the blob.
func (c *Cache) Has(id domain.RunID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := os.Stat(c.path(id))
	return err == nil
}
