package table

import (
	"io"

	gc "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// HTML renders the grid as a table element. Cells carry their ids in data-testid;
// controls are buttons styled "btn btn-<style>".
func (g *Grid) HTML() gc.Node {
	heads := make([]gc.Node, 0, len(g.Headers))
	for _, hd := range g.Headers {
		heads = append(heads, h.Th(h.Data("testid", hd.ID), gc.Text(hd.Text)))
	}

	rows := make([]gc.Node, 0, len(g.Rows))
	for _, row := range g.Rows {
		tds := make([]gc.Node, 0, len(row))
		for _, c := range row {
			if c.Control != nil {
				tds = append(tds, h.Td(h.Data("testid", c.ID),
					h.Button(
						h.Type("button"),
						h.Class("btn btn-"+c.Control.Style),
						h.Data("testid", c.Control.ID),
						gc.Text(c.Control.Label),
					),
				))
				continue
			}
			tds = append(tds, h.Td(h.Data("testid", c.ID), gc.Text(c.Text)))
		}
		rows = append(rows, h.Tr(gc.Group(tds)))
	}

	return h.Table(
		h.Class("data-table"),
		h.Data("testid", g.ID),
		h.THead(h.Tr(gc.Group(heads))),
		h.TBody(gc.Group(rows)),
	)
}

// WriteHTML renders the grid to w.
func (g *Grid) WriteHTML(w io.Writer) error {
	return g.HTML().Render(w)
}
