package console

import (
	"context"
	"net/http"

	qc "github.com/unkn0wn-root/querycache"
	"github.com/unkn0wn-root/querycache/access"
	"github.com/unkn0wn-root/querycache/table"
	"github.com/unkn0wn-root/querycache/transport"
)

// IndexPage lists every record of a resource. Admins get Edit and Delete
// controls per row and may create new records.
type IndexPage[R any] struct {
	res  Resource[R]
	deps Deps

	reader *qc.Reader[[]R]
	del    *qc.Mutator[R, Message]
}

// OpenIndex binds the list read for res. onChange, when set, is called on every
// change of the list until Close.
func OpenIndex[R any](deps Deps, res Resource[R], onChange func(qc.ReadState[[]R])) (*IndexPage[R], error) {
	deps, err := deps.validate()
	if err != nil {
		return nil, err
	}
	p := &IndexPage[R]{res: res, deps: deps}

	p.del, err = qc.NewMutator(deps.Cache, deps.Transport, qc.MutationOptions[R, Message]{
		Build: func(rec R) transport.Request {
			return transport.Request{
				Method: http.MethodDelete,
				URL:    res.Base,
				Params: map[string]any{res.IDParam: res.ID(rec)},
			}
		},
		Invalidates: []qc.Key{res.AllKey()},
		OnSuccess: func(m Message) {
			deps.Logger.Info("record deleted", qc.Fields{"resource": res.Title, "message": m.Message})
			deps.Notifier.Notify(m.Message)
		},
	})
	if err != nil {
		return nil, err
	}

	empty := []R{}
	p.reader = qc.Read(deps.Cache, deps.Transport, res.AllKey(),
		transport.Request{Method: http.MethodGet, URL: res.Base + "/all"},
		qc.ReadOptions[[]R]{Initial: &empty, OnChange: onChange},
	)
	return p, nil
}

// State is the list as currently cached (empty until the first fetch lands).
func (p *IndexPage[R]) State() qc.ReadState[[]R] { return p.reader.State() }

// Wait blocks until the list read settles.
func (p *IndexPage[R]) Wait(ctx context.Context) (qc.ReadState[[]R], error) {
	return p.reader.Wait(ctx)
}

// CanCreate reports whether the create control is shown to principal.
func (p *IndexPage[R]) CanCreate(principal *access.Principal) bool {
	return access.HasRole(principal, access.RoleAdmin)
}

// Grid renders the current list for principal.
func (p *IndexPage[R]) Grid(principal *access.Principal) *table.Grid {
	cols := table.BuildColumns(p.res.Columns, principal,
		table.Action[R]{Label: "Edit", Style: "primary", Role: access.RoleAdmin, OnInvoke: p.edit},
		table.Action[R]{Label: "Delete", Style: "danger", Role: access.RoleAdmin, OnInvoke: p.remove},
	)
	return table.Render(p.res.TableID, p.reader.State().Data, cols)
}

// GridFor renders for the principal carried by ctx.
func (p *IndexPage[R]) GridFor(ctx context.Context) *table.Grid {
	return p.Grid(access.FromContext(ctx))
}

// Deletions exposes the delete mutation's status.
func (p *IndexPage[R]) Deletions() *qc.Mutator[R, Message] { return p.del }

func (p *IndexPage[R]) Close() { p.reader.Close() }

func (p *IndexPage[R]) edit(_ context.Context, rec R) error {
	p.deps.Navigator.GoTo(p.res.EditRoute(rec))
	return nil
}

func (p *IndexPage[R]) remove(ctx context.Context, rec R) error {
	_, err := p.del.Mutate(ctx, rec)
	return err
}
