// This package contains shared types that are used across multiple packages in the
// planboard library. By keeping these types in a separate package, we avoid import
// cycles between the main planboard package and its internal implementations.
//
// Key types:
//   - Worker: Cached projection of an upstream worker document
//   - JobRecord: Upstream job document with raw time fields
//   - ScheduleEvent: Derived, render-ready (job, worker) pairing
//   - ScheduleSnapshot: Immutable, fully-consistent schedule view
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
