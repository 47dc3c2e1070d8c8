// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SharedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := querycache.New(querycache.Options{
//	    Namespace: "console",
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/querycache"
)

// Hooks forwards events to inner on worker goroutines. Events are dropped when
// the queue is full so the cache never blocks on a slow sink.
type Hooks struct {
	inner querycache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ querycache.Hooks = (*Hooks)(nil)

func New(inner querycache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Do not call hooks after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) FetchShared(k string)               { h.try(func() { h.inner.FetchShared(k) }) }
func (h *Hooks) FetchFailed(k string, err error)    { h.try(func() { h.inner.FetchFailed(k, err) }) }
func (h *Hooks) ResultSuperseded(k string, d bool)  { h.try(func() { h.inner.ResultSuperseded(k, d) }) }
func (h *Hooks) Invalidated(k string, r bool)       { h.try(func() { h.inner.Invalidated(k, r) }) }
func (h *Hooks) SnapshotRejected(k, r string)       { h.try(func() { h.inner.SnapshotRejected(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)       { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) GenBumpError(k string, err error)   { h.try(func() { h.inner.GenBumpError(k, err) }) }
func (h *Hooks) GenSnapshotError(k string, e error) { h.try(func() { h.inner.GenSnapshotError(k, e) }) }
func (h *Hooks) MutationFailed(m, u string, err error) {
	h.try(func() { h.inner.MutationFailed(m, u, err) })
}
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
