package color

import (
	"github.com/zeebo/xxh3"

	"github.com/fieldline/planboard/types"
)

// DefaultPalette is a fixed set of visually distinct display colors.
//
// The palette intentionally avoids near-duplicates so adjacent timeline rows
// stay distinguishable. Changing the order changes every hashed assignment,
// so entries are append-only.
var DefaultPalette = []types.Color{
	"#1F77B4", // blue
	"#FF7F0E", // orange
	"#2CA02C", // green
	"#D62728", // red
	"#9467BD", // purple
	"#8C564B", // brown
	"#E377C2", // pink
	"#7F7F7F", // gray
	"#BCBD22", // olive
	"#17BECF", // cyan
	"#AEC7E8", // light blue
	"#FFBB78", // light orange
	"#98DF8A", // light green
	"#FF9896", // light red
	"#C5B0D5", // light purple
	"#C49C94", // light brown
}

// Assigner maps worker identifiers to display colors.
//
// Resolution order: reserved table first, then a hash of the id over the
// palette. ColorFor is pure and deterministic; no two calls for the same id
// in the same process return different colors.
type Assigner struct {
	palette  []types.Color
	reserved map[string]types.Color
	seed     uint64
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithPalette replaces the default palette.
//
// Parameters:
//   - palette: Colors to hash ids onto (must be non-empty; shorter than 12
//     entries is accepted but degrades visual distinction)
//
// Returns:
//   - Option: Functional option for New
func WithPalette(palette []types.Color) Option {
	return func(a *Assigner) {
		if len(palette) > 0 {
			a.palette = palette
		}
	}
}

// WithReserved pins stable colors for well-known worker ids.
//
// Reserved entries take precedence over hashed assignment and survive palette
// changes, which keeps brand colors stable across deployments.
//
// Parameters:
//   - reserved: Worker id to color mapping
//
// Returns:
//   - Option: Functional option for New
func WithReserved(reserved map[string]types.Color) Option {
	return func(a *Assigner) {
		for id, c := range reserved {
			a.reserved[id] = c
		}
	}
}

// WithSeed sets the hash seed.
//
// The seed shifts every hashed assignment at once. The default of 0 gives a
// stable mapping across processes and restarts, which is what the timeline
// wants; a non-zero seed is only useful for tests probing collision behavior.
//
// Parameters:
//   - seed: Hash seed
//
// Returns:
//   - Option: Functional option for New
func WithSeed(seed uint64) Option {
	return func(a *Assigner) {
		a.seed = seed
	}
}

// New creates a color assigner.
//
// Parameters:
//   - opts: Optional configuration (palette, reserved table, seed)
//
// Returns:
//   - *Assigner: Initialized assigner using DefaultPalette unless overridden
//
// Example:
//
//	colors := color.New(color.WithReserved(map[string]types.Color{
//	    "W-001": "#005F99", // company brand blue
//	}))
//	c := colors.ColorFor("W-042")
func New(opts ...Option) *Assigner {
	a := &Assigner{
		palette:  DefaultPalette,
		reserved: make(map[string]types.Color),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ColorFor resolves the display color for a worker id.
//
// Pure and deterministic: reserved table lookup first, then an xxh3 hash of
// the id modulo the palette size. An empty id hashes like any other string so
// callers never receive a zero color.
//
// Parameters:
//   - workerID: Canonical worker identifier
//
// Returns:
//   - types.Color: The worker's display color
func (a *Assigner) ColorFor(workerID string) types.Color {
	if c, ok := a.reserved[workerID]; ok {
		return c
	}

	h := xxh3.HashStringSeed(workerID, a.seed)

	return a.palette[h%uint64(len(a.palette))]
}

// PaletteSize returns the number of colors available for hashed assignment.
func (a *Assigner) PaletteSize() int {
	return len(a.palette)
}
