// Package sloghooks reports querycache events to a *slog.Logger.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/querycache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SharedEvery     uint64
	SupersededEvery uint64
	// Optional key redactor for storage keys. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	sharedCtr     atomic.Uint64
	supersededCtr atomic.Uint64
}

var _ querycache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) FetchShared(key string) {
	if h.l == nil || !sample(h.opts.SharedEvery, &h.sharedCtr) {
		return
	}
	h.l.Debug("querycache.fetch_shared", "key", key)
}

func (h *Hooks) FetchFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("querycache.fetch_failed", "key", key, "err", err)
}

func (h *Hooks) ResultSuperseded(key string, dropped bool) {
	if h.l == nil || !sample(h.opts.SupersededEvery, &h.supersededCtr) {
		return
	}
	h.l.Debug("querycache.result_superseded", "key", key, "dropped", dropped)
}

func (h *Hooks) Invalidated(key string, refetch bool) {
	if h.l == nil {
		return
	}
	h.l.Debug("querycache.invalidated", "key", key, "refetch", refetch)
}

func (h *Hooks) MutationFailed(method, url string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("querycache.mutation_failed", "method", method, "url", url, "err", err)
}

func (h *Hooks) SnapshotRejected(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("querycache.snapshot_rejected",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("querycache.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("querycache.gen_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("querycache.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("querycache.invalidate_outage",
		"key", key,
		"bump_err", bumpErr,
		"del_err", delErr)
}
