package querycache

import (
	"context"
	"time"

	gen "github.com/unkn0wn-root/querycache/genstore"
	pr "github.com/unkn0wn-root/querycache/provider"
)

// FetchFunc performs the remote read for one key. raw, when non-nil, is the
// undecoded payload; it is what snapshot persistence stores.
type FetchFunc func(ctx context.Context) (value any, raw []byte, err error)

// Query binds a Key to the function that loads it.
type Query struct {
	Key   Key
	Fetch FetchFunc
	// Decode turns a persisted raw payload back into a value. Optional; without it
	// persisted snapshots are never restored for this key.
	Decode func(raw []byte) (any, error)
}

// Listener is called whenever the entry it is subscribed to changes.
// It receives the latest snapshot; it must not bind, invalidate or set the same
// key synchronously.
type Listener func(Entry)

// Options tune the cache. Only Namespace is required.
type Options struct {
	Namespace string // isolates persisted snapshots. e.g. "console", "admin:prod"

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// StaleTime is how long a successful value counts as fresh. 0 => stale as soon
	// as it lands, so every bind refetches (concurrent binds still share one fetch).
	StaleTime time.Duration
	// RefreshInterval refetches stale entries that have subscribers. 0 => off.
	RefreshInterval time.Duration

	// Snapshot persistence; off when Provider is nil.
	Provider        pr.Provider
	GenStore        gen.GenStore  // nil => LocalGenStore (in-process)
	SnapshotTTL     time.Duration // 0 => 24h
	CleanupInterval time.Duration // LocalGenStore sweep; 0 => 1h
	GenRetention    time.Duration // LocalGenStore retention; 0 => 30d

	Now func() time.Time // nil => time.Now
}
