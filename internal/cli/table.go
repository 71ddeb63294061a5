package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// textTable renders rows as aligned, padded columns.
type textTable struct {
	headers []string
	rows    [][]string
}

func newTextTable(headers ...string) *textTable {
	return &textTable{headers: headers, rows: make([][]string, 0)}
}

func (t *textTable) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// render writes the table to w. An empty table writes nothing.
func (t *textTable) render(w io.Writer) error {
	if len(t.rows) == 0 {
		return nil
	}

	colWidths := make([]int, len(t.headers))
	for i, h := range t.headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	// lipgloss widths include padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	sepStyle := lipgloss.NewStyle().Faint(true)

	var sb strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i := range colWidths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(colWidths[i]).Render(cell))
			if i < len(colWidths)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers, headerStyle)

	totalWidth := len(colWidths) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range t.rows {
		writeRow(row, cellStyle)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
