// Package timespec normalizes heterogeneous upstream date/time representations
// into canonical absolute instants.
//
// Upstream job documents carry times in two shapes: a full ISO-8601 instant,
// or a (date, time-of-day) string pair. Both are normalized here; records
// that fail normalization are rejected with types.ErrInvalidTime and must be
// skipped by callers, never rendered with a substituted time.
package timespec
