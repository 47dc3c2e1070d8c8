package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/querycache"
)

type recorder struct {
	querycache.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(ev string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) FetchShared(k string)            { r.add("shared:" + k) }
func (r *recorder) FetchFailed(k string, err error) { r.add("failed:" + k) }
func (r *recorder) Invalidated(k string, refetch bool) {
	if refetch {
		r.add("invalidated+refetch:" + k)
		return
	}
	r.add("invalidated:" + k)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestForwardsInOrderWithOneWorker(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 16)

	h.FetchShared("a")
	h.FetchFailed("a", errors.New("x"))
	h.Invalidated("a", true)
	h.Close()

	got := rec.snapshot()
	want := []string{"shared:a", "failed:a", "invalidated+refetch:a"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestDropsWhenQueueFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	// The worker takes the first event and blocks; the second fills the
	// queue; everything after is dropped.
	for i := 0; i < 10; i++ {
		h.FetchShared("k")
	}
	close(rec.block)
	h.Close()

	got := rec.snapshot()
	if len(got) < 1 || len(got) > 2 {
		t.Fatalf("want 1 or 2 delivered events, got %d", len(got))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h := New(querycache.NopHooks{}, 0, 0)
	h.Close()
	h.Close()
}
