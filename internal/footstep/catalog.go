// Package footstep drives procedural footstep effects. An animation notify
// traces from a character's foot to the ground, resolves the physical
// surface that was hit and activates a pooled effect actor carrying the
// sound and particle configured for that surface and footstep category.
package footstep

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
)

// Category is a semantic footstep type such as "Walk" or "Run".
type Category string

// NoCategory is the empty category.
const NoCategory Category = ""

// ErrInvalidCatalog is returned when a catalog is built from bad names.
var ErrInvalidCatalog = errors.New("invalid footstep catalog")

// Catalog is the ordered registry of footstep categories. It is read-only
// once built.
type Catalog struct {
	categories []Category
	index      map[Category]int
}

// NewCatalog builds a catalog from names in order. Empty and duplicate
// names are rejected.
func NewCatalog(names ...string) (*Catalog, error) {
	c := &Catalog{index: make(map[Category]int, len(names))}
	for _, name := range names {
		cat := Category(name)
		if cat == NoCategory {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidCatalog)
		}
		if _, dup := c.index[cat]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, name)
		}
		c.index[cat] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Count returns the number of categories. A nil catalog is empty.
func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	return len(c.categories)
}

// NameAt returns the i-th category. It panics when i is out of range.
func (c *Catalog) NameAt(i int) Category {
	return c.categories[i]
}

// Contains reports whether cat is registered.
func (c *Catalog) Contains(cat Category) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[cat]
	return ok
}

// Default returns the first category, or NoCategory for an empty catalog.
func (c *Catalog) Default() Category {
	if c.Count() == 0 {
		return NoCategory
	}
	return c.categories[0]
}

// Categories returns a copy of the categories in order.
func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Settings is the process-wide footstep configuration. Hosts build one and
// hand it to every notify and component.
type Settings struct {
	Catalog *Catalog
	// Shipping strips debug output regardless of component flags.
	Shipping bool
	// DebugMessageDuration is how long debug lines stay on screen.
	DebugMessageDuration time.Duration
	// Diagnostics receives configuration errors and debug lines.
	Diagnostics diagnostics.Sink
}

func (s *Settings) sink() diagnostics.Sink {
	if s == nil || s.Diagnostics == nil {
		return diagnostics.Nop{}
	}
	return s.Diagnostics
}

func (s *Settings) catalog() *Catalog {
	if s == nil {
		return nil
	}
	return s.Catalog
}
