// Package kv defines the snapshot blob port consumed by the record store.
package kv

import "context"

// SnapshotKey is the fixed key the record store persists under.
const SnapshotKey = "patients"

// Store is a key-value blob store. Implementations must tolerate being the
// only durability layer: Get reports absence via ok=false, not an error.
// The record store treats a nil Store, or a failing one, as "persistence
// unavailable" and keeps operating in memory.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
