package querycache

import (
	"context"
	"sync"
	"time"

	gen "github.com/unkn0wn-root/querycache/genstore"
	"github.com/unkn0wn-root/querycache/internal/util"
	"github.com/unkn0wn-root/querycache/internal/wire"
	pr "github.com/unkn0wn-root/querycache/provider"
)

// snapshotStore persists raw payloads of successful reads, framed with the
// generation they were fetched under. A snapshot is only restored while its
// generation is still current, so an invalidation (here or on another replica
// sharing the GenStore) retires it.
type snapshotStore struct {
	ns       string
	provider pr.Provider
	gens     gen.GenStore
	ttl      time.Duration
	log      Logger
	hooks    Hooks
}

func (s *snapshotStore) storageKey(k Key) string {
	return util.StorageKey("query:"+s.ns, k.id)
}

func (s *snapshotStore) snapshotGen(ctx context.Context, k Key) uint64 {
	sk := s.storageKey(k)
	g, err := s.gens.Snapshot(ctx, sk)
	if err != nil {
		// Conservative: treat as 0 so CAS writes skip and stored snapshots self-heal
		s.hooks.GenSnapshotError(sk, err)
		s.log.Warn("gen snapshot error", Fields{"key": sk, "err": err})
		return 0
	}
	return g
}

// genBatch holds the keys of one refetch wave. The first fetch of the wave that
// needs its observed generation reads all of them with a single SnapshotMany.
type genBatch struct {
	s    *snapshotStore
	keys []Key
	once sync.Once
	gens map[string]uint64
}

// batch returns nil when persistence is off or there is nothing to share.
func (s *snapshotStore) batch(keys []Key) *genBatch {
	if s == nil || len(keys) < 2 {
		return nil
	}
	return &genBatch{s: s, keys: keys}
}

func (b *genBatch) gen(ctx context.Context, k Key) uint64 {
	b.once.Do(func() {
		sks := make([]string, len(b.keys))
		for i, bk := range b.keys {
			sks[i] = b.s.storageKey(bk)
		}
		gens, err := b.s.gens.SnapshotMany(ctx, sks)
		if err != nil {
			// gens stays nil: every key of the wave observes 0, as in snapshotGen
			for _, sk := range sks {
				b.s.hooks.GenSnapshotError(sk, err)
			}
			b.s.log.Warn("gen batch snapshot error", Fields{"keys": len(sks), "err": err})
			return
		}
		b.gens = gens
	})
	return b.gens[b.s.storageKey(k)]
}

func (s *snapshotStore) load(ctx context.Context, k Key) ([]byte, bool) {
	sk := s.storageKey(k)
	raw, ok, err := s.provider.Get(ctx, sk)
	if err != nil {
		s.log.Warn("snapshot read failed", Fields{"key": sk, "err": err})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	g, payload, err := wire.DecodeSingle(raw)
	if err != nil {
		s.reject(ctx, k, "corrupt")
		return nil, false
	}
	if g != s.snapshotGen(ctx, k) {
		s.reject(ctx, k, "gen_mismatch")
		return nil, false
	}
	return payload, true
}

func (s *snapshotStore) reject(ctx context.Context, k Key, reason string) {
	sk := s.storageKey(k)
	_ = s.provider.Del(ctx, sk) // self-heal
	s.hooks.SnapshotRejected(sk, reason)
	s.log.Debug("snapshot rejected", Fields{"key": sk, "reason": reason})
}

// save writes raw iff the generation is still the one observed before the fetch.
func (s *snapshotStore) save(ctx context.Context, k Key, observedGen uint64, raw []byte) {
	sk := s.storageKey(k)
	if s.snapshotGen(ctx, k) != observedGen {
		// generation moved; skip stale write
		s.log.Debug("snapshot save skipped (gen mismatch)", Fields{"key": sk, "obs": observedGen})
		return
	}
	b := wire.EncodeSingle(observedGen, raw)
	ok, err := s.provider.Set(ctx, sk, b, int64(len(b)), s.ttl)
	if err != nil {
		s.log.Warn("snapshot save failed", Fields{"key": sk, "err": err})
		return
	}
	if !ok {
		s.hooks.ProviderSetRejected(sk)
		s.log.Debug("snapshot rejected by provider (pressure)", Fields{"key": sk})
	}
}

// invalidate retires the persisted snapshot of k. Either a gen bump or a delete is
// enough to keep the old snapshot from being restored, so only losing both is an error.
func (s *snapshotStore) invalidate(ctx context.Context, k Key) error {
	sk := s.storageKey(k)
	_, bumpErr := s.gens.Bump(ctx, sk)
	if bumpErr != nil {
		s.hooks.GenBumpError(sk, bumpErr)
		s.log.Warn("gen bump failed; relying on delete", Fields{"key": sk, "err": bumpErr})
	}
	delErr := s.provider.Del(ctx, sk)
	if delErr != nil && bumpErr == nil {
		s.log.Debug("snapshot delete failed; gen bump retires it", Fields{"key": sk, "err": delErr})
		return nil
	}
	if bumpErr != nil && delErr != nil {
		s.hooks.InvalidateOutage(k.String(), bumpErr, delErr)
		s.log.Error("snapshot invalidation outage", Fields{"key": sk, "bump_err": bumpErr, "del_err": delErr})
		return &InvalidateError{Key: k, BumpErr: bumpErr, DelErr: delErr}
	}
	return nil
}

func (s *snapshotStore) close(ctx context.Context) error {
	// gen store first (best effort)
	_ = s.gens.Close(ctx)
	return s.provider.Close(ctx)
}
