// Package querycache keeps fetched server state in a process-wide keyed cache and
// keeps it consistent with the writes a client performs against the same backend.
//
// Components:
//   - Cache: one Entry per Key with status, stale bit, generation and subscribers.
//     Concurrent binds of one key share a single in-flight fetch.
//   - Reader[V]: binds a Key to a transport request and exposes the entry's current
//     value/loading/error state, decoded with a Codec[V].
//   - Mutator[In, Out]: performs one write and, only on success, invalidates the keys
//     that depend on it so bound readers refetch.
//   - Provider + GenStore (optional): persist raw snapshots of successful reads so a
//     fresh process can show the last known value while it refetches.
//
// Invalidation:
//
//	gen++        // the entry's generation moves; in-flight fetches of the old gen are not joined
//	stale = true // next bind fetches
//	if subscribers > 0 { status = loading; refetch() }
//
// Readers never own a copy of the data; every snapshot is read from the Cache.
package querycache
