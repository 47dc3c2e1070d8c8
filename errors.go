package querycache

import (
	"errors"
	"fmt"
)

var (
	ErrClosed    = errors.New("querycache: cache closed")
	ErrNoFetcher = errors.New("querycache: no fetch function registered for key")
)

// FetchError is a failed read. It is absorbed into the entry (Status == StatusError)
// and never thrown across component boundaries.
type FetchError struct {
	Key Key
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError is a failed write. It is returned to the caller of Mutate and no
// cache entry is touched.
type MutationError struct {
	ID     string
	Method string
	URL    string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation %s %s %s: %v", e.ID, e.Method, e.URL, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// InvalidateError reports a persisted snapshot that could not be retired: both the
// gen bump and the delete failed. The in-memory entry is invalidated regardless.
type InvalidateError struct {
	Key     Key
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %s failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %s: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %s: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %s: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
