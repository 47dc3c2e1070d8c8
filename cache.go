package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	gen "github.com/unkn0wn-root/querycache/genstore"
)

const (
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
	defaultSnapshotTTL  = 24 * time.Hour
)

// flight is one running fetch. An entry has at most one flight it will accept
// results from; anything else is superseded.
type flight struct {
	gen     uint64
	fetch   FetchFunc
	decode  func([]byte) (any, error)
	restore bool
	gens    *genBatch // nil => the flight reads its own observed generation
}

type entry struct {
	key       Key
	value     any
	hasValue  bool
	status    Status
	err       error
	stale     bool
	fetchedAt time.Time
	gen       uint64

	fetch  FetchFunc
	decode func([]byte) (any, error)
	flight *flight

	subs map[uint64]Listener

	// serializes deliveries so the last snapshot a listener sees is the current one
	deliver sync.Mutex
}

// Cache is the process-wide store of fetched server state. Create one per process
// (or per test) with New and release it with Close.
type Cache struct {
	ns              string
	log             Logger
	hooks           Hooks
	staleTime       time.Duration
	refreshInterval time.Duration
	now             func() time.Time
	store           *snapshotStore // nil => persistence off

	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64
	closed  bool

	ctx     context.Context // fetches run under this; canceled by Close
	cancel  context.CancelFunc
	flights sync.WaitGroup

	// background refresh
	ticker    *time.Ticker
	stopCh    chan struct{}
	loopWg    sync.WaitGroup
	closeOnce sync.Once
}

func New(opts Options) (*Cache, error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("querycache: namespace is required")
	}

	c := &Cache{
		ns:              opts.Namespace,
		entries:         make(map[string]*entry),
		staleTime:       opts.StaleTime,
		refreshInterval: opts.RefreshInterval,
		now:             opts.Now,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if c.now == nil {
		c.now = time.Now
	}

	if opts.Provider != nil {
		gs := opts.GenStore
		if gs == nil {
			gs = gen.NewLocalGenStore(
				coalesce[time.Duration](opts.CleanupInterval, defaultSweep),
				coalesce[time.Duration](opts.GenRetention, defaultGenRetention),
			)
		}
		c.store = &snapshotStore{
			ns:       opts.Namespace,
			provider: opts.Provider,
			gens:     gs,
			ttl:      coalesce[time.Duration](opts.SnapshotTTL, defaultSnapshotTTL),
			log:      c.log,
			hooks:    c.hooks,
		}
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	if c.refreshInterval > 0 {
		c.ticker = time.NewTicker(c.refreshInterval)
		c.stopCh = make(chan struct{})
		c.loopWg.Add(1)
		go c.refreshLoop()
	}
	return c, nil
}

// Close stops background refresh, cancels running fetches and waits for them
// (bounded by ctx), then releases the persistence backends.
func (c *Cache) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		if c.stopCh != nil {
			close(c.stopCh)
			c.loopWg.Wait()
			c.ticker.Stop()
		}
		c.cancel()

		done := make(chan struct{})
		go func() {
			c.flights.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}

		if c.store != nil {
			if cerr := c.store.close(ctx); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

// Get returns the current snapshot for key. A key that was never bound yields
// an idle snapshot.
func (c *Cache) Get(key Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}
	}
	return c.snapshotLocked(e)
}

// Subscribe registers fn for changes of key without triggering a fetch.
// The returned func removes the subscription; calling it more than once is a no-op.
func (c *Cache) Subscribe(key Key, fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entryLocked(key)
	id := c.addSubLocked(e, fn)
	c.mu.Unlock()
	return c.unsubscriber(e, id)
}

// Bind subscribes fn to q.Key and starts a fetch when the entry has no value or is
// stale. A bind that finds a fetch for the current generation in flight joins it.
func (c *Cache) Bind(q Query, fn Listener) (Entry, func()) {
	c.mu.Lock()
	e := c.entryLocked(q.Key)
	register(e, q)
	id := c.addSubLocked(e, fn)
	started := c.maybeStartLocked(e, false)
	snap := c.snapshotLocked(e)
	c.mu.Unlock()

	if started {
		c.notify(e)
	}
	return snap, c.unsubscriber(e, id)
}

// Fetch binds q and blocks until the entry settles, then returns its snapshot.
// A failed fetch returns the snapshot together with its *FetchError.
func (c *Cache) Fetch(ctx context.Context, q Query) (Entry, error) {
	changed := make(chan struct{}, 1)
	snap, unsubscribe := c.Bind(q, func(Entry) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		switch snap.Status {
		case StatusSuccess:
			return snap, nil
		case StatusError:
			return snap, snap.Err
		case StatusIdle:
			if c.isClosed() {
				return snap, ErrClosed
			}
			return snap, ErrNoFetcher
		}
		select {
		case <-changed:
			snap = c.Get(q.Key)
		case <-ctx.Done():
			return c.Get(q.Key), ctx.Err()
		case <-c.ctx.Done():
			return c.Get(q.Key), ErrClosed
		}
	}
}

// SetLoading marks key as loading on behalf of an external loader. Any fetch the
// cache started for key is superseded.
func (c *Cache) SetLoading(key Key) {
	c.mu.Lock()
	e := c.entryLocked(key)
	changed := e.status != StatusLoading || e.flight != nil
	e.status = StatusLoading
	e.err = nil
	e.flight = nil
	c.mu.Unlock()
	if changed {
		c.notify(e)
	}
}

// SetResult stores a fresh value for key. An idle entry passes through loading.
func (c *Cache) SetResult(key Key, value any) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.flight = nil
	e.value = value
	e.hasValue = true
	e.status = StatusSuccess
	e.err = nil
	e.stale = false
	e.fetchedAt = c.now()
	c.mu.Unlock()
	c.notify(e)
}

// SetError records a failed load for key. The previous value and stale bit are kept.
func (c *Cache) SetError(key Key, err error) {
	var fe *FetchError
	if !errors.As(err, &fe) {
		fe = &FetchError{Key: key, Err: err}
	}
	c.mu.Lock()
	e := c.entryLocked(key)
	e.flight = nil
	e.status = StatusError
	e.err = fe
	c.mu.Unlock()
	c.hooks.FetchFailed(key.String(), err)
	c.notify(e)
}

// Invalidate marks every key stale and bumps its generation. Entries with
// subscribers move to loading before Invalidate returns and refetch in the
// background. Keys that were never bound are recorded so their first bind fetches.
// The returned error only concerns persisted snapshots.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) error {
	valid := make([]Key, 0, len(keys))
	for _, k := range keys {
		if k.Valid() {
			valid = append(valid, k)
		}
	}

	var errs []error
	if c.store != nil {
		for _, k := range valid {
			if err := c.store.invalidate(ctx, k); err != nil {
				errs = append(errs, err)
			}
		}
	}

	batch := c.store.batch(valid)
	for _, k := range valid {
		c.mu.Lock()
		e := c.entryLocked(k)
		e.gen++
		e.stale = true
		refetch := len(e.subs) > 0 && c.startLocked(e, true, batch)
		newGen := e.gen
		c.mu.Unlock()

		c.notify(e)
		c.hooks.Invalidated(k.String(), refetch)
		c.log.Debug("invalidated key", Fields{"key": k.String(), "gen": newGen, "refetch": refetch})
	}
	return errors.Join(errs...)
}

// Refetch invalidates keys and waits until every entry that refetches has settled.
// It returns the first fetch error, if any.
func (c *Cache) Refetch(ctx context.Context, keys ...Key) error {
	if err := c.Invalidate(ctx, keys...); err != nil {
		c.log.Warn("refetch: snapshot invalidation failed", Fields{"err": err})
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		if !k.Valid() {
			continue
		}
		g.Go(func() error { return c.waitSettled(gctx, k) })
	}
	return g.Wait()
}

func (c *Cache) waitSettled(ctx context.Context, key Key) error {
	changed := make(chan struct{}, 1)
	unsubscribe := c.Subscribe(key, func(Entry) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		snap := c.Get(key)
		if snap.Status != StatusLoading {
			if snap.Status == StatusError {
				return snap.Err
			}
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return ErrClosed
		}
	}
}

func (c *Cache) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key.id]
	if !ok {
		e = &entry{key: key, subs: make(map[uint64]Listener)}
		c.entries[key.id] = e
	}
	return e
}

// register keeps the first fetch function registered for a key.
func register(e *entry, q Query) {
	if e.fetch == nil && q.Fetch != nil {
		e.fetch = q.Fetch
	}
	if e.decode == nil && q.Decode != nil {
		e.decode = q.Decode
	}
}

func (c *Cache) addSubLocked(e *entry, fn Listener) uint64 {
	c.nextSub++
	id := c.nextSub
	if fn == nil {
		fn = func(Entry) {}
	}
	e.subs[id] = fn
	return id
}

func (c *Cache) unsubscriber(e *entry, id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(e.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Cache) staleLocked(e *entry) bool {
	if e.stale {
		return true
	}
	return !e.fetchedAt.IsZero() && c.now().Sub(e.fetchedAt) >= c.staleTime
}

func (c *Cache) snapshotLocked(e *entry) Entry {
	return Entry{
		Key:         e.key,
		Value:       e.value,
		HasValue:    e.hasValue,
		Status:      e.status,
		Err:         e.err,
		Stale:       c.staleLocked(e),
		FetchedAt:   e.fetchedAt,
		Gen:         e.gen,
		Subscribers: len(e.subs),
	}
}

// maybeStartLocked starts a fetch for e unless one for the current generation is
// already running or the value is fresh. force skips the freshness check.
func (c *Cache) maybeStartLocked(e *entry, force bool) bool {
	return c.startLocked(e, force, nil)
}

// startLocked is maybeStartLocked for a fetch that belongs to a refetch wave
// sharing one generation read.
func (c *Cache) startLocked(e *entry, force bool, b *genBatch) bool {
	if c.closed || e.fetch == nil {
		return false
	}
	if e.status == StatusLoading && (e.flight == nil || e.flight.gen == e.gen) && !force {
		c.hooks.FetchShared(e.key.String())
		return false
	}
	if !force && e.hasValue && !c.staleLocked(e) {
		return false
	}

	f := &flight{
		gen:     e.gen,
		fetch:   e.fetch,
		decode:  e.decode,
		restore: c.store != nil && e.decode != nil && !e.hasValue,
		gens:    b,
	}
	e.flight = f
	e.status = StatusLoading
	e.err = nil

	c.flights.Add(1)
	go c.run(e, f)
	return true
}

func (c *Cache) run(e *entry, f *flight) {
	defer c.flights.Done()
	ctx := c.ctx

	var obs uint64
	if c.store != nil {
		if f.restore {
			c.restore(ctx, e, f)
		}
		if f.gens != nil {
			obs = f.gens.gen(ctx, e.key)
		} else {
			obs = c.store.snapshotGen(ctx, e.key)
		}
	}

	v, raw, err := f.fetch(ctx)
	current := c.commit(e, f, v, err)
	if current && err == nil && raw != nil && c.store != nil {
		c.store.save(ctx, e.key, obs, raw)
	}
}

// commit applies a fetch result. It reports whether the result was applied to the
// generation it was fetched for.
func (c *Cache) commit(e *entry, f *flight, v any, err error) bool {
	c.mu.Lock()
	if e.flight != f {
		c.mu.Unlock()
		c.hooks.ResultSuperseded(e.key.String(), true)
		c.log.Debug("dropped superseded fetch result", Fields{"key": e.key.String(), "gen": f.gen})
		return false
	}
	e.flight = nil
	current := f.gen == e.gen

	if err != nil {
		e.status = StatusError
		e.err = &FetchError{Key: e.key, Err: err}
	} else {
		e.value = v
		e.hasValue = true
		e.status = StatusSuccess
		e.err = nil
		e.fetchedAt = c.now()
		if current {
			e.stale = false
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.hooks.FetchFailed(e.key.String(), err)
		c.log.Warn("fetch failed", Fields{"key": e.key.String(), "err": err})
	}
	if !current {
		c.hooks.ResultSuperseded(e.key.String(), false)
	}
	c.notify(e)
	return current
}

// restore shows a persisted snapshot while the first fetch for e runs.
func (c *Cache) restore(ctx context.Context, e *entry, f *flight) {
	raw, ok := c.store.load(ctx, e.key)
	if !ok {
		return
	}
	v, err := f.decode(raw)
	if err != nil {
		c.store.reject(ctx, e.key, "value_decode")
		return
	}

	c.mu.Lock()
	if e.flight != f || e.hasValue {
		c.mu.Unlock()
		return
	}
	e.value = v
	e.hasValue = true
	e.stale = true
	c.mu.Unlock()

	c.log.Debug("restored persisted snapshot", Fields{"key": e.key.String()})
	c.notify(e)
}

func (c *Cache) notify(e *entry) {
	e.deliver.Lock()
	defer e.deliver.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked(e)
	subs := make([]Listener, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Cache) refreshLoop() {
	defer c.loopWg.Done()
	for {
		select {
		case <-c.ticker.C:
			c.refreshStale()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) refreshStale() {
	c.mu.Lock()
	var due []*entry
	for _, e := range c.entries {
		if len(e.subs) == 0 || e.status == StatusLoading || e.fetch == nil {
			continue
		}
		if c.staleLocked(e) {
			due = append(due, e)
		}
	}
	keys := make([]Key, len(due))
	for i, e := range due {
		keys[i] = e.key
	}
	batch := c.store.batch(keys)

	var started []*entry
	for _, e := range due {
		if c.startLocked(e, false, batch) {
			started = append(started, e)
		}
	}
	c.mu.Unlock()

	for _, e := range started {
		c.notify(e)
	}
	if len(started) > 0 {
		c.log.Debug("background refresh started", Fields{"count": len(started)})
	}
}
