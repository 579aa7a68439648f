// Package catalog holds the analyser panel definitions and their fallback tiles.
//
// The built-in catalog mirrors the panels shipped with the dashboard. A YAML file
// may override titles and fallback lists per panel; Watch reloads it on change.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/leapstack-labs/bankdash/pkg/core"
	"gopkg.in/yaml.v3"
)

// PanelID identifies an analyser panel (e.g. "compliance").
type PanelID string

// Panel describes one analyser panel.
type Panel struct {
	ID    PanelID `yaml:"id"`
	Title string  `yaml:"title"`
	// Interactive panels let the user type an endpoint and connect at runtime.
	Interactive bool `yaml:"interactive"`
	// Modules is the fallback list rendered when no remote data is available.
	Modules []core.Module `yaml:"modules"`
}

// Catalog is an immutable, ordered set of panels.
type Catalog struct {
	order  []PanelID
	panels map[PanelID]Panel
}

// New builds a catalog from panels, keeping their order.
// A later panel with the same ID replaces an earlier one in place.
func New(panels ...Panel) *Catalog {
	c := &Catalog{panels: make(map[PanelID]Panel, len(panels))}
	for _, p := range panels {
		if _, exists := c.panels[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		p.Modules = core.CloneModules(p.Modules)
		c.panels[p.ID] = p
	}
	return c
}

// Panel returns the panel with the given ID.
func (c *Catalog) Panel(id PanelID) (Panel, bool) {
	p, ok := c.panels[id]
	if !ok {
		return Panel{}, false
	}
	p.Modules = core.CloneModules(p.Modules)
	return p, true
}

// Panels returns all panels in catalog order.
func (c *Catalog) Panels() []Panel {
	out := make([]Panel, 0, len(c.order))
	for _, id := range c.order {
		p, _ := c.Panel(id)
		out = append(out, p)
	}
	return out
}

// Fallback returns a copy of the fallback modules of a panel, or nil if the
// panel is unknown.
func (c *Catalog) Fallback(id PanelID) []core.Module {
	p, ok := c.panels[id]
	if !ok {
		return nil
	}
	return core.CloneModules(p.Modules)
}

// file is the on-disk YAML layout.
type file struct {
	Panels []Panel `yaml:"panels"`
}

// LoadFile reads a catalog file and overlays it on base.
// Panels present in the file replace the matching base panel field by field:
// an empty title or module list keeps the base value.
func LoadFile(path string, base *Catalog) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data, base)
}

// Parse decodes catalog YAML and overlays it on base.
func Parse(data []byte, base *Catalog) (*Catalog, error) {
	if base == nil {
		base = Default()
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	panels := base.Panels()
	index := make(map[PanelID]int, len(panels))
	for i, p := range panels {
		index[p.ID] = i
	}

	for i, p := range f.Panels {
		if strings.TrimSpace(string(p.ID)) == "" {
			return nil, fmt.Errorf("panels[%d]: id is required", i)
		}
		for j, m := range p.Modules {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("panel %s module %d: %w", p.ID, j, err)
			}
		}

		pos, exists := index[p.ID]
		if !exists {
			if p.Title == "" {
				p.Title = string(p.ID)
			}
			index[p.ID] = len(panels)
			panels = append(panels, p)
			continue
		}

		merged := panels[pos]
		if p.Title != "" {
			merged.Title = p.Title
		}
		if len(p.Modules) > 0 {
			merged.Modules = p.Modules
		}
		merged.Interactive = merged.Interactive || p.Interactive
		panels[pos] = merged
	}

	return New(panels...), nil
}

// Live holds the current catalog and lets a watcher swap it atomically.
type Live struct {
	v atomic.Pointer[Catalog]
}

// NewLive creates a Live catalog initialised with c (or Default when nil).
func NewLive(c *Catalog) *Live {
	if c == nil {
		c = Default()
	}
	l := &Live{}
	l.v.Store(c)
	return l
}

// Get returns the current catalog.
func (l *Live) Get() *Catalog {
	return l.v.Load()
}

// Set replaces the current catalog.
func (l *Live) Set(c *Catalog) error {
	if c == nil {
		return errors.New("catalog must not be nil")
	}
	l.v.Store(c)
	return nil
}

// FallbackFunc returns a closure yielding the live fallback of a panel.
func (l *Live) FallbackFunc(id PanelID) func() []core.Module {
	return func() []core.Module {
		return l.Get().Fallback(id)
	}
}
