// Package index maintains, for each worker, the subset of jobs whose
// assignee list references that worker.
//
// The index subscribes to the job change feed once and fans out per-worker
// event lists to its subscribers. On every feed batch each worker's list is
// recomputed from scratch and replaced, never appended to, so stale or
// removed jobs disappear rather than accumulate. Records with invalid times
// are dropped with a logged warning, never surfaced as fatal errors.
package index
