package table

import (
	"github.com/pterm/pterm"
)

// Text renders the grid as a plain text table with a header row. Action cells
// show their label in brackets.
func (g *Grid) Text() (string, error) {
	data := make(pterm.TableData, 0, len(g.Rows)+1)
	head := make([]string, 0, len(g.Headers))
	for _, h := range g.Headers {
		head = append(head, h.Text)
	}
	data = append(data, head)
	for _, row := range g.Rows {
		line := make([]string, 0, len(row))
		for _, c := range row {
			if c.Control != nil {
				line = append(line, "["+c.Control.Label+"]")
				continue
			}
			line = append(line, c.Text)
		}
		data = append(data, line)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
