// Package roster maintains the authoritative, deduplicated set of active
// workers from the upstream worker change feed.
//
// The feed may redeliver the complete current state on every event; the
// roster treats each emission as the authoritative full set at that instant
// (last-write-wins per id, no merge across batches), so it is correct under
// both delta and snapshot semantics from its source. Role/activity filtering
// is applied per subscription, not baked into storage.
package roster
