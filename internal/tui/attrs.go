package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrsFromCurrent fills the table with the color legend of the
// loaded grid, or with the marker points when there is no grid.
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "nothing to tabulate for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(24, max(len(c)+2, 10))})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := append([]string{fmt.Sprintf("%d", i+1)}, r...)
		trows = append(trows, table.Row(row))
	}
	// clear rows first so columns and rows never disagree in length
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns (columns, rows) for the legend or points table.
func (m *Model) buildAttributes() ([]string, [][]string) {
	if m.cells.Grid() != nil {
		return legendRows(m)
	}
	if len(m.points) == 0 {
		return nil, nil
	}
	cols := []string{"id", "name", "lat", "lon", "magnitude"}
	rows := make([][]string, 0, len(m.points))
	for _, p := range m.points {
		rows = append(rows, []string{
			p.ID, p.Name,
			fmt.Sprintf("%.5f", p.Lat), fmt.Sprintf("%.5f", p.Lon),
			fmt.Sprintf("%g", p.Magnitude),
		})
	}
	return cols, rows
}

func legendRows(m *Model) ([]string, [][]string) {
	stops := m.cells.Scale().Stops()
	rows := make([][]string, 0, len(stops))
	for _, s := range stops {
		rows = append(rows, []string{fmt.Sprintf("%.6g", s.Value), s.Color.Hex()})
	}
	return []string{"value", "color"}, rows
}
