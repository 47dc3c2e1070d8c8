package console

import (
	"context"
	"net/http"

	qc "github.com/unkn0wn-root/querycache"
	"github.com/unkn0wn-root/querycache/transport"
)

// CreatePage submits new records. A successful submit refreshes the list,
// notifies and navigates back to it.
type CreatePage[R any] struct {
	res  Resource[R]
	deps Deps
	m    *qc.Mutator[R, R]
}

func NewCreatePage[R any](deps Deps, res Resource[R]) (*CreatePage[R], error) {
	deps, err := deps.validate()
	if err != nil {
		return nil, err
	}
	m, err := qc.NewMutator(deps.Cache, deps.Transport, qc.MutationOptions[R, R]{
		Build: func(rec R) transport.Request {
			return transport.Request{
				Method: http.MethodPost,
				URL:    res.Base + "/post",
				Params: res.CreateParams(rec),
			}
		},
		Invalidates: []qc.Key{res.AllKey()},
		OnSuccess: func(created R) {
			deps.Notifier.Notify(res.Created(created))
		},
	})
	if err != nil {
		return nil, err
	}
	return &CreatePage[R]{res: res, deps: deps, m: m}, nil
}

// Submit creates rec and returns the stored record. On failure the user stays
// on the page and the error is returned.
func (p *CreatePage[R]) Submit(ctx context.Context, rec R) (R, error) {
	out, err := p.m.Mutate(ctx, rec)
	if err != nil {
		return out, err
	}
	p.deps.Navigator.GoTo(p.res.Route)
	return out, nil
}

func (p *CreatePage[R]) Status() qc.MutationStatus { return p.m.Status() }

// EditPage loads one record and submits updates to it.
type EditPage[R any] struct {
	res    Resource[R]
	deps   Deps
	id     string
	reader *qc.Reader[R]
	m      *qc.Mutator[R, R]
}

func OpenEdit[R any](deps Deps, res Resource[R], id string) (*EditPage[R], error) {
	deps, err := deps.validate()
	if err != nil {
		return nil, err
	}
	m, err := qc.NewMutator(deps.Cache, deps.Transport, qc.MutationOptions[R, R]{
		Build: func(rec R) transport.Request {
			return transport.Request{
				Method: http.MethodPut,
				URL:    res.Base,
				Params: map[string]any{res.IDParam: res.ID(rec)},
				Body:   res.UpdateBody(rec),
			}
		},
		Invalidates: []qc.Key{res.ItemKey(id), res.AllKey()},
		OnSuccess: func(updated R) {
			deps.Notifier.Notify(res.Updated(updated))
		},
	})
	if err != nil {
		return nil, err
	}

	p := &EditPage[R]{res: res, deps: deps, id: id, m: m}
	p.reader = qc.Read(deps.Cache, deps.Transport, res.ItemKey(id),
		transport.Request{Method: http.MethodGet, URL: res.Base, Params: map[string]any{res.IDParam: id}},
		qc.ReadOptions[R]{},
	)
	return p, nil
}

// Current is the record as cached; HasData is false until it loads.
func (p *EditPage[R]) Current() qc.ReadState[R] { return p.reader.State() }

func (p *EditPage[R]) Wait(ctx context.Context) (qc.ReadState[R], error) {
	return p.reader.Wait(ctx)
}

// Submit updates rec, then notifies and navigates back to the list.
func (p *EditPage[R]) Submit(ctx context.Context, rec R) (R, error) {
	out, err := p.m.Mutate(ctx, rec)
	if err != nil {
		return out, err
	}
	p.deps.Navigator.GoTo(p.res.Route)
	return out, nil
}

func (p *EditPage[R]) Status() qc.MutationStatus { return p.m.Status() }

func (p *EditPage[R]) Close() { p.reader.Close() }
