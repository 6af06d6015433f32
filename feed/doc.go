// Package feed provides built-in worker and job feed implementations.
//
// Feeds push the complete current document set on every change; consumers
// never receive deltas. The package includes:
//
//   - Memory: In-process feed and store, useful for testing and embedding
//   - NATS: JetStream KV-backed feed and store for distributed deployments
//
// Custom feeds can be implemented by satisfying the types.WorkerFeed,
// types.JobFeed and types.JobStore interfaces.
package feed
