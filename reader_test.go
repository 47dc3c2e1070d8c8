package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/querycache/codec"
	"github.com/unkn0wn-root/querycache/transport"
)

type org struct {
	Orgcode        string `json:"orgcode"`
	OrgTranslation string `json:"orgTranslation"`
}

// orgServer is a transport over an in-memory org list.
type orgServer struct {
	mu      sync.Mutex
	orgs    []org
	gets    atomic.Int32
	gate    chan struct{} // when set, GETs wait on it
	failDel bool
}

func (s *orgServer) Call(ctx context.Context, req transport.Request) (transport.Response, error) {
	switch req.Method {
	case "GET", "":
		s.gets.Add(1)
		if s.gate != nil {
			select {
			case <-s.gate:
			case <-ctx.Done():
				return transport.Response{}, ctx.Err()
			}
		}
		s.mu.Lock()
		b, err := codec.JSON[[]org]{}.Encode(s.orgs)
		s.mu.Unlock()
		if err != nil {
			return transport.Response{}, err
		}
		return transport.Response{Status: 200, Data: b}, nil
	case "DELETE":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failDel {
			return transport.Response{}, &transport.StatusError{Method: req.Method, URL: req.URL, Status: 500}
		}
		code, _ := req.Params["orgcode"].(string)
		kept := s.orgs[:0]
		for _, o := range s.orgs {
			if o.Orgcode != code {
				kept = append(kept, o)
			}
		}
		s.orgs = kept
		return transport.Response{Status: 200, Data: []byte(`{"message":"Organization with id ` + code + ` deleted"}`)}, nil
	}
	return transport.Response{}, errors.New("unexpected method " + req.Method)
}

func newOrgServer() *orgServer {
	return &orgServer{orgs: []org{
		{"SWE", "Society of Women Engineers"},
		{"ACM", "Association for Computing Machinery"},
	}}
}

var orgsKey = MustKey("/api/orgs/all")
var orgsReq = transport.Request{Method: "GET", URL: "/api/orgs/all"}

func orgcodes(orgs []org) []string {
	out := make([]string, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, o.Orgcode)
	}
	return out
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestReaderPlaceholderThenData(t *testing.T) {
	srv := newOrgServer()
	srv.gate = make(chan struct{})
	c := newTestCache(t, Options{StaleTime: time.Hour})

	empty := []org{}
	r := Read(c, srv, orgsKey, orgsReq, ReadOptions[[]org]{Initial: &empty})
	defer r.Close()

	st := r.State()
	if st.Status != StatusLoading || !st.Placeholder || !st.HasData || len(st.Data) != 0 {
		t.Fatalf("before first fetch: %+v", st)
	}
	close(srv.gate)

	st, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	if st.Placeholder || len(st.Data) != 2 || st.Data[0].Orgcode != "SWE" {
		t.Fatalf("after fetch: %+v", st)
	}
	if e := c.Get(orgsKey); e.Status != StatusSuccess {
		t.Fatalf("cache entry: %+v", e)
	}
}

func TestTwoReadersOneRequest(t *testing.T) {
	srv := newOrgServer()
	srv.gate = make(chan struct{})
	c := newTestCache(t, Options{StaleTime: time.Hour})
	key := MustKey("/api/items", map[string]any{"id": 17})

	a := Read(c, srv, key, orgsReq, ReadOptions[[]org]{})
	defer a.Close()
	b := Read(c, srv, key, orgsReq, ReadOptions[[]org]{})
	defer b.Close()
	close(srv.gate)

	sa, err := a.Wait(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	sb, err := b.Wait(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	if srv.gets.Load() != 1 {
		t.Fatalf("want 1 request, got %d", srv.gets.Load())
	}
	if len(sa.Data) != len(sb.Data) || sa.Data[0] != sb.Data[0] {
		t.Fatalf("readers disagree: %v vs %v", sa.Data, sb.Data)
	}
}

func TestReaderCloseStopsOnChange(t *testing.T) {
	srv := newOrgServer()
	srv.gate = make(chan struct{})
	c := newTestCache(t, Options{})

	var calls atomic.Int32
	r := Read(c, srv, orgsKey, orgsReq, ReadOptions[[]org]{OnChange: func(ReadState[[]org]) { calls.Add(1) }})
	if calls.Load() != 1 {
		t.Fatalf("OnChange calls before Close = %d, want the loading state only", calls.Load())
	}
	r.Close()
	r.Close()
	close(srv.gate)

	waitStatus(t, c, orgsKey, StatusSuccess)
	if calls.Load() != 1 {
		t.Fatalf("closed reader notified %d more times", calls.Load()-1)
	}
}

func TestReaderOnChangeAlwaysSeesSuccess(t *testing.T) {
	c := newTestCache(t, Options{})
	instant := transport.Func(func(context.Context, transport.Request) (transport.Response, error) {
		return transport.Response{Status: 200, Data: []byte(`[{"orgcode":"SWE"}]`)}, nil
	})

	for i := 0; i < 200; i++ {
		k := MustKey("/api/orgs/all", i)
		var mu sync.Mutex
		var seen []ReadState[[]org]
		empty := []org{}
		r := Read(c, instant, k, orgsReq, ReadOptions[[]org]{Initial: &empty, OnChange: func(st ReadState[[]org]) {
			mu.Lock()
			seen = append(seen, st)
			mu.Unlock()
		}})

		mu.Lock()
		if len(seen) == 0 {
			mu.Unlock()
			t.Fatalf("OnChange not called before Read returned")
		}
		if seen[0].Status == StatusLoading && !seen[0].Placeholder {
			mu.Unlock()
			t.Fatalf("loading state without a cached value must carry the placeholder: %+v", seen[0])
		}
		mu.Unlock()

		waitFor(t, "OnChange with success", func() bool {
			mu.Lock()
			defer mu.Unlock()
			last := seen[len(seen)-1]
			return last.Status == StatusSuccess && !last.Placeholder && len(last.Data) == 1
		})
		r.Close()
	}
}

func TestReaderOnChangeSeesUpdates(t *testing.T) {
	srv := newOrgServer()
	c := newTestCache(t, Options{StaleTime: time.Hour})

	var mu sync.Mutex
	var last ReadState[[]org]
	r := Read(c, srv, orgsKey, orgsReq, ReadOptions[[]org]{OnChange: func(st ReadState[[]org]) {
		mu.Lock()
		last = st
		mu.Unlock()
	}})
	defer r.Close()

	if _, err := r.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	c.SetResult(orgsKey, []org{{Orgcode: "IEEE"}})
	mu.Lock()
	defer mu.Unlock()
	if len(last.Data) != 1 || last.Data[0].Orgcode != "IEEE" {
		t.Fatalf("OnChange did not see manual result: %+v", last)
	}
}

func TestReaderMaxResponseBytes(t *testing.T) {
	srv := newOrgServer()
	c := newTestCache(t, Options{})

	r := Read(c, srv, orgsKey, orgsReq, ReadOptions[[]org]{MaxResponseBytes: 8})
	defer r.Close()
	st, err := r.Wait(waitCtx(t))
	if !errors.Is(err, codec.ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}
	if st.Status != StatusError || st.HasData {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestReaderTransportErrorAbsorbed(t *testing.T) {
	c := newTestCache(t, Options{})
	boom := errors.New("connection refused")
	tr := transport.Func(func(context.Context, transport.Request) (transport.Response, error) {
		return transport.Response{}, boom
	})

	r := Read(c, tr, orgsKey, orgsReq, ReadOptions[[]org]{})
	defer r.Close()
	st, err := r.Wait(waitCtx(t))
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	var fe *FetchError
	if !errors.As(st.Err, &fe) {
		t.Fatalf("state error must be *FetchError, got %T", st.Err)
	}
}

func TestReaderRefetch(t *testing.T) {
	srv := newOrgServer()
	c := newTestCache(t, Options{StaleTime: time.Hour})
	r := Read(c, srv, orgsKey, orgsReq, ReadOptions[[]org]{})
	defer r.Close()
	if _, err := r.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	srv.mu.Lock()
	srv.orgs = append(srv.orgs, org{Orgcode: "WiCS"})
	srv.mu.Unlock()

	st, err := r.Refetch(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Data) != 3 || srv.gets.Load() != 2 {
		t.Fatalf("refetch: %v gets=%d", orgcodes(st.Data), srv.gets.Load())
	}
}

func TestReaderRestoresFromSnapshotWithCodec(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	srv := newOrgServer()

	c1, err := New(Options{Namespace: "console", Provider: mp})
	if err != nil {
		t.Fatal(err)
	}
	r1 := Read(c1, srv, orgsKey, orgsReq, ReadOptions[[]org]{})
	if _, err := r1.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	r1.Close()
	gs := c1.store.gens
	_ = c1.Close(ctx)

	srv.gate = make(chan struct{})
	c2 := newTestCache(t, Options{Namespace: "console", Provider: mp, GenStore: gs})
	r2 := Read(c2, srv, orgsKey, orgsReq, ReadOptions[[]org]{})
	defer r2.Close()

	waitFor(t, "restored snapshot", func() bool { return r2.State().HasData })
	st := r2.State()
	if st.Status != StatusLoading || !st.Stale || len(st.Data) != 2 {
		t.Fatalf("restored state: %+v", st)
	}
	close(srv.gate)
	if _, err := r2.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
}
