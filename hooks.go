package querycache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths, some while holding its lock.
type Hooks interface {
	// A bind found a fetch already in flight for the same key and generation and joined it.
	FetchShared(key string)

	// A fetch failed. The entry moved to error and kept its previous value.
	FetchFailed(key string, err error)

	// A fetch result arrived for a generation that was invalidated while it ran.
	// dropped is true when a newer fetch was already running and the result was discarded.
	ResultSuperseded(key string, dropped bool)

	// Invalidate marked key stale; refetch is true when subscribers triggered a fetch.
	Invalidated(key string, refetch bool)

	// A write failed; nothing was invalidated.
	MutationFailed(method, url string, err error)

	// A persisted snapshot was deleted on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SnapshotRejected(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed while invalidating a persisted snapshot.
	InvalidateOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) FetchShared(string)                    {}
func (NopHooks) FetchFailed(string, error)             {}
func (NopHooks) ResultSuperseded(string, bool)         {}
func (NopHooks) Invalidated(string, bool)              {}
func (NopHooks) MutationFailed(string, string, error)  {}
func (NopHooks) SnapshotRejected(string, string)       {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
