package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/shared"
)

// fileCollection is a JSON array of T persisted in a single file.
//
// Read failures are logged and degrade to an empty collection. Write failures are returned
// wrapped in [shared.ErrStorage]. mu serializes every load and read-modify-write.
type fileCollection[T any] struct {
	mu     sync.Mutex
	path   string
	seed   func() []T
	logger *log.Logger
}

func newFileCollection[T any](path string, seed func() []T, logger *log.Logger) *fileCollection[T] {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &fileCollection[T]{path: path, seed: seed, logger: logger}
}

// snapshot returns the current collection.
func (c *fileCollection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// mutate runs fn on the current collection and persists the result when fn reports a change.
func (c *fileCollection[T]) mutate(fn func(items []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, changed, err := fn(c.load())
	if err != nil || !changed {
		return err
	}
	return c.save(items)
}

// load reads the file. A missing file is seeded when a seed is configured. Callers hold mu.
func (c *fileCollection[T]) load() []T {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		if c.seed == nil {
			return []T{}
		}
		items := c.seed()
		if err := c.save(items); err != nil {
			c.logger.Error("failed to write seed data", "path", c.path, "error", err)
		} else {
			c.logger.Info("seeded data file", "path", c.path, "count", len(items))
		}
		return items
	}
	if err != nil {
		c.logger.Error("failed to read data file", "path", c.path, "error", err)
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Error("failed to decode data file", "path", c.path, "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// save rewrites the whole file through a temp file and rename. Callers hold mu.
func (c *fileCollection[T]) save(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, c.path, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %v", shared.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", shared.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %v", shared.ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", shared.ErrStorage, c.path, err)
	}
	return nil
}
