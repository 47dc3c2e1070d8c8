// Package table projects a record collection into an addressable grid.
//
// Columns are assembled per entity: data columns in declaration order, then
// role-gated action columns in the order requested. Every cell gets a
// deterministic id so callers (and tests) can find it without walking markup:
//
//	<tableID>-cell-row-<i>-col-<accessor>          data cell
//	<tableID>-cell-row-<i>-col-<label>-button      action control
//
// Accessors name columns within one grid. When two columns share an accessor,
// the later one is addressed as "<accessor>-<column index>".
package table

import (
	"context"

	"github.com/unkn0wn-root/querycache/access"
)

type Kind int

const (
	KindData Kind = iota
	KindAction
)

func (k Kind) String() string {
	if k == KindAction {
		return "action"
	}
	return "data"
}

// Column describes one column of a grid over records of type R.
type Column[R any] struct {
	Header string
	// Accessor names the column in cell ids. For data columns without Value it is
	// also a field path ("a.b") resolved over the record's json field names.
	Accessor string
	Value    func(R) any
	Kind     Kind
	Action   *Action[R] // set iff Kind == KindAction
}

// Action is a role-gated control rendered once per record.
type Action[R any] struct {
	Label    string // e.g. "Edit"; becomes the column's accessor
	Style    string // e.g. "primary", "danger"
	Role     access.Role
	OnInvoke func(context.Context, R) error
}

// Field is a data column reading the field path accessor.
func Field[R any](header, accessor string) Column[R] {
	return Column[R]{Header: header, Accessor: accessor, Kind: KindData}
}

// Computed is a data column whose value comes from fn.
func Computed[R any](header, accessor string, fn func(R) any) Column[R] {
	return Column[R]{Header: header, Accessor: accessor, Value: fn, Kind: KindData}
}

// BuildColumns returns base followed by one action column per action whose Role p
// holds. Action columns never precede data columns. base is not modified.
func BuildColumns[R any](base []Column[R], p *access.Principal, actions ...Action[R]) []Column[R] {
	cols := make([]Column[R], 0, len(base)+len(actions))
	for _, c := range base {
		if c.Kind == KindAction {
			continue
		}
		cols = append(cols, c)
	}
	for i := range actions {
		a := actions[i]
		if !access.HasRole(p, a.Role) {
			continue
		}
		cols = append(cols, Column[R]{
			Header:   a.Label,
			Accessor: a.Label,
			Kind:     KindAction,
			Action:   &a,
		})
	}
	return cols
}
