package table

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var ErrNoControl = errors.New("table: no such control")

// Cell is one record x column intersection.
type Cell struct {
	ID       string
	Row      int
	Accessor string
	Kind     Kind
	Value    any
	Text     string
	Control  *Control // action cells only
}

// Control is a clickable action bound to one record.
type Control struct {
	ID     string
	Label  string
	Style  string
	invoke func(context.Context) error
}

// Invoke runs the action's callback for the record the control was rendered for.
func (c *Control) Invoke(ctx context.Context) error {
	if c == nil || c.invoke == nil {
		return ErrNoControl
	}
	return c.invoke(ctx)
}

type Header struct {
	ID       string
	Text     string
	Accessor string
	Kind     Kind
}

// Grid is a rendered table. It is immutable once built.
type Grid struct {
	ID      string
	Headers []Header
	Rows    [][]Cell

	cells    map[string]*Cell
	controls map[string]*Control
	order    []string // control ids in render order
}

// Render projects records through cols. Each row is flattened once; an accessor
// that does not resolve renders an empty cell. Empty records yield headers only.
func Render[R any](tableID string, records []R, cols []Column[R]) *Grid {
	g := &Grid{
		ID:       tableID,
		Headers:  make([]Header, 0, len(cols)),
		Rows:     make([][]Cell, 0, len(records)),
		cells:    make(map[string]*Cell),
		controls: make(map[string]*Control),
	}
	names := accessors(cols)
	for j, c := range cols {
		g.Headers = append(g.Headers, Header{
			ID:       tableID + "-header-" + names[j],
			Text:     c.Header,
			Accessor: names[j],
			Kind:     c.Kind,
		})
	}

	for i, rec := range records {
		row := make([]Cell, 0, len(cols))
		var flat map[string]any
		flatten := func() map[string]any {
			if flat == nil {
				m, err := fields(any(rec))
				if err != nil {
					m = map[string]any{}
				}
				flat = m
			}
			return flat
		}

		for j, c := range cols {
			id := cellID(tableID, i, names[j])
			cell := Cell{ID: id, Row: i, Accessor: names[j], Kind: c.Kind}
			switch {
			case c.Kind == KindAction && c.Action != nil:
				a := c.Action
				r := rec
				ctl := &Control{
					ID:    id + "-button",
					Label: a.Label,
					Style: a.Style,
					invoke: func(ctx context.Context) error {
						if a.OnInvoke == nil {
							return nil
						}
						return a.OnInvoke(ctx, r)
					},
				}
				cell.Text = a.Label
				cell.Control = ctl
				g.controls[ctl.ID] = ctl
				g.order = append(g.order, ctl.ID)
			case c.Value != nil:
				cell.Value = c.Value(rec)
				cell.Text = format(cell.Value)
			default:
				if v, ok := lookup(flatten(), c.Accessor); ok {
					cell.Value = v
					cell.Text = format(v)
				}
			}
			row = append(row, cell)
		}
		g.Rows = append(g.Rows, row)
	}

	for r := range g.Rows {
		for c := range g.Rows[r] {
			cell := &g.Rows[r][c]
			g.cells[cell.ID] = cell
		}
	}
	return g
}

// accessors names every column uniquely. A repeated accessor gets its column
// index appended ("Edit-5"); the first occurrence keeps the plain name.
func accessors[R any](cols []Column[R]) []string {
	names := make([]string, len(cols))
	taken := make(map[string]bool, len(cols))
	for j, c := range cols {
		name := c.Accessor
		for taken[name] {
			name += "-" + strconv.Itoa(j)
		}
		taken[name] = true
		names[j] = name
	}
	return names
}

func cellID(tableID string, row int, accessor string) string {
	return tableID + "-cell-row-" + strconv.Itoa(row) + "-col-" + accessor
}

// Cell returns the cell at row for accessor.
func (g *Grid) Cell(row int, accessor string) (Cell, bool) {
	c, ok := g.cells[cellID(g.ID, row, accessor)]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

// CellByID returns the cell with the given id.
func (g *Grid) CellByID(id string) (Cell, bool) {
	c, ok := g.cells[id]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

func (g *Grid) Control(id string) (*Control, bool) {
	c, ok := g.controls[id]
	return c, ok
}

// Controls returns every control id in render order (row major).
func (g *Grid) Controls() []string {
	return append([]string(nil), g.order...)
}

// Invoke activates the control with the given id.
func (g *Grid) Invoke(ctx context.Context, id string) error {
	c, ok := g.controls[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoControl, id)
	}
	return c.Invoke(ctx)
}

// Len is the number of data rows.
func (g *Grid) Len() int { return len(g.Rows) }
