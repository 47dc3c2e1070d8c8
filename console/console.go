// Package console binds the query cache to the admin console's entities: one
// list page, one create page and one edit page per resource. Pages hold readers
// and mutators; they render through package table and never touch cache state
// directly.
package console

import (
	"errors"
	"fmt"

	qc "github.com/unkn0wn-root/querycache"
	"github.com/unkn0wn-root/querycache/table"
	"github.com/unkn0wn-root/querycache/transport"
)

// Notifier shows a short, fire-and-forget message to the user.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Navigator moves the user between console routes.
type Navigator interface {
	GoTo(path string)
	GoBack()
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) GoTo(string) {}
func (nopNavigator) GoBack()     {}

// Deps are the collaborators every page needs. Cache and Transport are required.
type Deps struct {
	Cache     *qc.Cache
	Transport transport.Transport
	Notifier  Notifier  // nil => discard
	Navigator Navigator // nil => stay put
	Logger    qc.Logger // nil => NopLogger
}

func (d Deps) validate() (Deps, error) {
	if d.Cache == nil {
		return d, errors.New("console: cache is required")
	}
	if d.Transport == nil {
		return d, errors.New("console: transport is required")
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Navigator == nil {
		d.Navigator = nopNavigator{}
	}
	if d.Logger == nil {
		d.Logger = qc.NopLogger{}
	}
	return d, nil
}

// Message is the body the backend answers deletes with.
type Message struct {
	Message string `json:"message"`
}

// Resource describes one entity of the console.
type Resource[R any] struct {
	Title   string // "UCSB Organization"
	Base    string // API base path, e.g. "/api/ucsborganization"
	Route   string // list route, e.g. "/ucsborganization"
	TableID string
	Columns []table.Column[R]

	// IDParam is the query parameter that addresses one record.
	IDParam string
	ID      func(R) string

	// CreateParams are sent as query parameters of the create call.
	CreateParams func(R) map[string]any
	// UpdateBody is the body of the update call; the record is addressed by IDParam.
	UpdateBody func(R) any

	Created func(R) string // notification after a create, from the stored record
	Updated func(R) string
}

// AllKey is the cache key of the list read.
func (r Resource[R]) AllKey() qc.Key {
	return qc.MustKey(r.Base + "/all")
}

// ItemKey is the cache key of the single-record read for id.
func (r Resource[R]) ItemKey(id string) qc.Key {
	return qc.MustKey(fmt.Sprintf("%s?%s=%s", r.Base, r.IDParam, id))
}

func (r Resource[R]) CreateRoute() string { return r.Route + "/create" }

func (r Resource[R]) EditRoute(rec R) string { return r.Route + "/edit/" + r.ID(rec) }
