package level

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// yamlLevelFile is the top-level YAML structure for level files.
type yamlLevelFile struct {
	Level Config `yaml:"level"`
}

// LoadFromFile reads and validates a single level YAML file.
//
// Precondition: path must point to a level YAML file.
// Postcondition: Returns a validated Config or a non-nil error.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses, defaults and validates a level from YAML bytes.
//
// Postcondition: Returns a validated Config or a non-nil error.
func LoadFromBytes(data []byte) (*Config, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}
	cfg := file.Level
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating level %d: %w", cfg.Number, err)
	}
	return &cfg, nil
}

// Catalog is the set of loaded levels keyed by number.
type Catalog struct {
	levels map[int]*Config
}

// NewCatalog indexes cfgs by number.
//
// Postcondition: Returns an error if two configs share a number.
func NewCatalog(cfgs ...*Config) (*Catalog, error) {
	c := &Catalog{levels: make(map[int]*Config, len(cfgs))}
	for _, cfg := range cfgs {
		if _, dup := c.levels[cfg.Number]; dup {
			return nil, fmt.Errorf("duplicate level number %d", cfg.Number)
		}
		c.levels[cfg.Number] = cfg
	}
	return c, nil
}

// Get returns level n.
func (c *Catalog) Get(n int) (*Config, bool) {
	cfg, ok := c.levels[n]
	return cfg, ok
}

// Numbers returns the loaded level numbers in ascending order.
func (c *Catalog) Numbers() []int {
	out := make([]int, 0, len(c.levels))
	for n := range c.levels {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Next returns the lowest loaded level above n.
func (c *Catalog) Next(n int) (int, bool) {
	for _, m := range c.Numbers() {
		if m > n {
			return m, true
		}
	}
	return 0, false
}

// LoadDir loads every YAML file in dir concurrently.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a catalog of validated levels or the first error
// encountered.
func LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading level directory %s: %w", dir, err)
	}

	var (
		mu   sync.Mutex
		cfgs []*Config
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, err := LoadFromFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("loading level from %s: %w", name, err)
			}
			mu.Lock()
			cfgs = append(cfgs, cfg)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no level files found in %s", dir)
	}
	return NewCatalog(cfgs...)
}
