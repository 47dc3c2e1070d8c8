package querycache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/querycache/codec"
	"github.com/unkn0wn-root/querycache/transport"
)

// ReadOptions tune a Reader. The zero value decodes JSON.
type ReadOptions[V any] struct {
	Codec            codec.Codec[V] // nil => codec.JSON[V]
	MaxResponseBytes int            // > 0 rejects larger payloads

	// Initial is reported while the cache holds no value for the key, so a page
	// can render before the first fetch resolves. It is never written to the cache.
	Initial *V

	// OnChange is called after every change of the bound entry until Close. When
	// Read starts a fetch, the loading state is delivered before Read returns.
	OnChange func(ReadState[V])
}

// ReadState is a Reader's typed view of its entry.
type ReadState[V any] struct {
	Data        V
	HasData     bool
	Placeholder bool // Data is ReadOptions.Initial
	Status      Status
	Err         error
	Stale       bool
	FetchedAt   time.Time
}

// Reader binds one Key to one backend read. It holds no copy of the data;
// State always reads the cache.
type Reader[V any] struct {
	cache    *Cache
	key      Key
	initial  *V
	onChange func(ReadState[V])

	unsubscribe func()
	closed      atomic.Bool
	changed     chan struct{}
}

// Read binds key to req on c. If the entry is absent or stale, req is issued
// through tr; concurrent readers of the same key share one call.
func Read[V any](c *Cache, tr transport.Transport, key Key, req transport.Request, opts ReadOptions[V]) *Reader[V] {
	cd := opts.Codec
	if cd == nil {
		cd = codec.JSON[V]{}
	}
	if opts.MaxResponseBytes > 0 {
		cd = codec.LimitCodec[V]{Inner: cd, MaxDecode: opts.MaxResponseBytes}
	}

	q := Query{
		Key: key,
		Fetch: func(ctx context.Context) (any, []byte, error) {
			resp, err := tr.Call(ctx, req)
			if err != nil {
				return nil, nil, err
			}
			v, err := cd.Decode(resp.Data)
			if err != nil {
				return nil, nil, fmt.Errorf("decode %s: %w", req.URL, err)
			}
			return v, resp.Data, nil
		},
		Decode: func(raw []byte) (any, error) { return cd.Decode(raw) },
	}

	r := &Reader[V]{
		cache:    c,
		key:      key,
		initial:  opts.Initial,
		onChange: opts.OnChange,
		changed:  make(chan struct{}, 1),
	}
	_, r.unsubscribe = c.Bind(q, r.onEntry)
	return r
}

func (r *Reader[V]) onEntry(e Entry) {
	if r.closed.Load() {
		return
	}
	select {
	case r.changed <- struct{}{}:
	default:
	}
	if r.onChange != nil {
		r.onChange(r.project(e))
	}
}

func (r *Reader[V]) Key() Key { return r.key }

// State returns the current typed snapshot.
func (r *Reader[V]) State() ReadState[V] {
	return r.project(r.cache.Get(r.key))
}

// Wait blocks until no fetch is running for the key and returns the state.
// The error is the entry's *FetchError, ctx's error, or ErrClosed.
func (r *Reader[V]) Wait(ctx context.Context) (ReadState[V], error) {
	for {
		st := r.State()
		switch st.Status {
		case StatusSuccess:
			return st, nil
		case StatusError:
			return st, st.Err
		case StatusIdle:
			if r.cache.isClosed() {
				return st, ErrClosed
			}
		}
		select {
		case <-r.changed:
		case <-ctx.Done():
			return r.State(), ctx.Err()
		case <-r.cache.ctx.Done():
			return r.State(), ErrClosed
		}
	}
}

// Refetch invalidates the key and waits for the new value.
func (r *Reader[V]) Refetch(ctx context.Context) (ReadState[V], error) {
	if err := r.cache.Refetch(ctx, r.key); err != nil {
		return r.State(), err
	}
	return r.State(), nil
}

// Close tears down the subscription. A fetch in flight still completes and is
// committed to the cache, but OnChange is no longer called.
func (r *Reader[V]) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.unsubscribe()
	}
}

func (r *Reader[V]) project(e Entry) ReadState[V] {
	st := ReadState[V]{
		Status:    e.Status,
		Err:       e.Err,
		Stale:     e.Stale,
		FetchedAt: e.FetchedAt,
	}
	if e.HasValue {
		if v, ok := e.Value.(V); ok {
			st.Data = v
			st.HasData = true
			return st
		}
	}
	if r.initial != nil {
		st.Data = *r.initial
		st.HasData = true
		st.Placeholder = true
	}
	return st
}
