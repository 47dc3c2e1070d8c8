package querycache

import "time"

// Status of a cache entry. Transitions only Idle -> Loading -> {Success, Error};
// a refetch re-enters Loading from either terminal state.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no fetch is running for the entry.
func (s Status) Terminal() bool { return s == StatusSuccess || s == StatusError }

// Entry is a point-in-time snapshot of one cached read.
// Value is retained across failed fetches for display continuity.
type Entry struct {
	Key         Key
	Value       any
	HasValue    bool
	Status      Status
	Err         error // set only when Status == StatusError
	Stale       bool
	FetchedAt   time.Time // zero until the first successful fetch
	Gen         uint64    // bumped by every invalidation
	Subscribers int
}
