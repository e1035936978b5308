package data

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Buildable is one catalog row: what a unit kind costs and how it is built.
type Buildable struct {
	Kind         grid.UnitKind `yaml:"kind"`
	Name         string        `yaml:"name"`
	Prefab       string        `yaml:"prefab"`
	Cost         int           `yaml:"cost"`
	BuildSeconds float64       `yaml:"build_seconds"`
	Footprint    grid.Size     `yaml:"footprint"`
	Refundable   bool          `yaml:"refundable"`
}

// BuildTime converts BuildSeconds.
func (b *Buildable) BuildTime() time.Duration {
	return time.Duration(b.BuildSeconds * float64(time.Second))
}

type catalogFile struct {
	Buildables []Buildable `yaml:"buildables"`
}

// Catalog indexes buildables by kind.
type Catalog struct {
	entries map[grid.UnitKind]*Buildable
}

// LoadCatalog loads buildables.yaml.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{entries: make(map[grid.UnitKind]*Buildable, len(f.Buildables))}
	for i := range f.Buildables {
		b := &f.Buildables[i]
		if b.Kind == grid.UnitNone {
			return nil, fmt.Errorf("catalog entry %d: missing kind", i)
		}
		if _, dup := c.entries[b.Kind]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate kind %s", i, b.Kind)
		}
		if b.Cost < 0 || b.BuildSeconds < 0 {
			return nil, fmt.Errorf("catalog entry %s: negative cost or build time", b.Kind)
		}
		if b.Footprint.W <= 0 || b.Footprint.H <= 0 {
			b.Footprint = grid.Size{W: 1, H: 1}
		}
		if b.Name == "" {
			b.Name = b.Kind.String()
		}
		c.entries[b.Kind] = b
	}
	return c, nil
}

// Get returns the row for kind, or nil if the kind is not buildable.
func (c *Catalog) Get(kind grid.UnitKind) *Buildable {
	return c.entries[kind]
}

func (c *Catalog) Count() int {
	return len(c.entries)
}

// All returns every row ordered by kind.
func (c *Catalog) All() []*Buildable {
	out := make([]*Buildable, 0, len(c.entries))
	for _, b := range c.entries {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
