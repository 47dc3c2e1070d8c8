package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/querycache/codec"
	"github.com/unkn0wn-root/querycache/transport"
)

// MutationStatus of a Mutator: Idle -> Pending -> {Success, Failure}; a new call
// re-enters Pending.
type MutationStatus uint8

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSuccess
	MutationFailure
)

func (s MutationStatus) String() string {
	switch s {
	case MutationIdle:
		return "idle"
	case MutationPending:
		return "pending"
	case MutationSuccess:
		return "success"
	case MutationFailure:
		return "error"
	default:
		return "unknown"
	}
}

// MutationOptions describe one kind of write. Build is required.
type MutationOptions[In, Out any] struct {
	// Build turns the caller's input into the backend call.
	Build func(In) transport.Request
	// Invalidates lists the keys whose readers depend on this write.
	Invalidates []Key
	// OnSuccess runs after invalidation and before Mutate returns (e.g. a notification).
	OnSuccess func(Out)
	// Codec decodes the response; nil => codec.JSON[Out]. An empty body yields the zero Out.
	Codec codec.Codec[Out]
	// AwaitRefetch makes Mutate wait until the invalidated readers have refetched.
	AwaitRefetch bool
}

// Mutator performs writes of one kind. Calls on one Mutator run one at a time
// in arrival order; the last call decides Status.
type Mutator[In, Out any] struct {
	cache *Cache
	tr    transport.Transport
	opts  MutationOptions[In, Out]
	codec codec.Codec[Out]

	queue chan struct{} // one call in flight

	mu     sync.Mutex
	seq    uint64
	status MutationStatus
	err    error
	last   Out
	hasOut bool
}

func NewMutator[In, Out any](c *Cache, tr transport.Transport, opts MutationOptions[In, Out]) (*Mutator[In, Out], error) {
	if opts.Build == nil {
		return nil, errors.New("querycache: mutation Build is required")
	}
	m := &Mutator[In, Out]{
		cache: c,
		tr:    tr,
		opts:  opts,
		codec: opts.Codec,
		queue: make(chan struct{}, 1),
	}
	if m.codec == nil {
		m.codec = codec.JSON[Out]{}
	}
	return m, nil
}

// Mutate performs the write. On success the Invalidates keys are invalidated,
// then OnSuccess runs, then Mutate returns. On a transport failure nothing is
// invalidated and a *MutationError is returned.
//
// A 2xx response whose body cannot be decoded still invalidates (the backend
// changed) but is reported as a failure and skips OnSuccess.
func (m *Mutator[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	var zero Out

	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.status = MutationPending
	m.mu.Unlock()

	select {
	case m.queue <- struct{}{}:
	case <-ctx.Done():
		m.finish(seq, MutationFailure, ctx.Err(), zero, false)
		return zero, ctx.Err()
	}
	defer func() { <-m.queue }()

	id := uuid.NewString()
	req := m.opts.Build(in)
	log := Fields{"mutation_id": id, "method": req.Method, "url": req.URL}

	resp, err := m.tr.Call(ctx, req)
	if err != nil {
		merr := &MutationError{ID: id, Method: req.Method, URL: req.URL, Err: err}
		m.cache.hooks.MutationFailed(req.Method, req.URL, err)
		m.cache.log.Warn("mutation failed", fieldsWith(log, "err", err))
		m.finish(seq, MutationFailure, merr, zero, false)
		return zero, merr
	}

	var out Out
	var decodeErr error
	if len(resp.Data) > 0 {
		out, decodeErr = m.codec.Decode(resp.Data)
	}

	m.invalidate(ctx, log)

	if decodeErr != nil {
		merr := &MutationError{ID: id, Method: req.Method, URL: req.URL, Err: fmt.Errorf("decode response: %w", decodeErr)}
		m.cache.log.Warn("mutation response undecodable", fieldsWith(log, "err", decodeErr))
		m.finish(seq, MutationFailure, merr, zero, false)
		return zero, merr
	}

	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(out)
	}
	m.finish(seq, MutationSuccess, nil, out, true)
	m.cache.log.Debug("mutation succeeded", fieldsWith(log, "invalidated", len(m.opts.Invalidates)))
	return out, nil
}

func (m *Mutator[In, Out]) invalidate(ctx context.Context, log Fields) {
	if len(m.opts.Invalidates) == 0 {
		return
	}
	var err error
	if m.opts.AwaitRefetch {
		err = m.cache.Refetch(ctx, m.opts.Invalidates...)
	} else {
		err = m.cache.Invalidate(ctx, m.opts.Invalidates...)
	}
	if err != nil {
		m.cache.log.Warn("post-mutation invalidation incomplete", fieldsWith(log, "err", err))
	}
}

func (m *Mutator[In, Out]) finish(seq uint64, st MutationStatus, err error, out Out, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.last = out
		m.hasOut = true
	}
	if seq != m.seq {
		return
	}
	m.status = st
	m.err = err
}

func (m *Mutator[In, Out]) Status() MutationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mutator[In, Out]) IsSuccess() bool { return m.Status() == MutationSuccess }

// Err is the error of the last finished call when Status is MutationFailure.
func (m *Mutator[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Last returns the most recent successful result.
func (m *Mutator[In, Out]) Last() (Out, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.hasOut
}

// Reset returns the Mutator to idle unless a call is pending.
func (m *Mutator[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != MutationPending {
		m.status = MutationIdle
		m.err = nil
	}
}

func fieldsWith(f Fields, k string, v any) Fields {
	out := make(Fields, len(f)+1)
	for kk, vv := range f {
		out[kk] = vv
	}
	out[k] = v
	return out
}
