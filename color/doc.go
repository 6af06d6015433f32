// Package color provides deterministic worker-to-color assignment.
//
// A small reserved table pins stable brand colors for well-known worker ids;
// every other id is hashed onto a fixed palette. The mapping is pure: the
// same id always resolves to the same color within a process. Palette reuse
// across different ids is expected once the worker count exceeds the palette
// size.
package color
