/*
PURPOSE:
  Renders a Summary as a lipgloss table for the terminal.

IMPLEMENTATION RULES:
  - Rows() stays unstyled so tests and other outputs can reuse it.
  - Counts read "N (+a -r)" when a baseline is present.

RELATED FILES:
  - internal/report/report.go
*/

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
	cellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
)

// Headers are the columns of the rendered summary.
var Headers = []string{"Component", "Valid", "Error", "Timeout", "Datasets", "Files"}

// Rows returns the table rows of s without styling.
func Rows(s Summary) [][]string {
	rows := make([][]string, 0, len(s.Components))
	for _, c := range s.Components {
		var addV, addE, addT, remV, remE, remT *int
		if c.Delta != nil {
			addV, addE, addT = &c.Delta.Added.Valid, &c.Delta.Added.Error, &c.Delta.Added.Timeout
			remV, remE, remT = &c.Delta.Removed.Valid, &c.Delta.Removed.Error, &c.Delta.Removed.Timeout
		}
		rows = append(rows, []string{
			c.Name,
			formatCount(c.Counts.Valid, addV, remV),
			formatCount(c.Counts.Error, addE, remE),
			formatCount(c.Counts.Timeout, addT, remT),
			fmt.Sprint(c.Datasets),
			fmt.Sprint(c.Files),
		})
	}
	return rows
}

// Render formats s as a bordered table.
func Render(s Summary) string {
	var out strings.Builder

	title := "Results " + s.Date
	if s.Baseline != "" {
		title += " (compared to " + s.Baseline + ")"
	}
	out.WriteString(titleStyle.Render(title))
	out.WriteString("\n")

	t := table.New().
		Headers(Headers...).
		Rows(Rows(s)...).
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	out.WriteString(t.String())
	out.WriteString("\n")
	fmt.Fprintf(&out, "Total: %d datasets, %d files\n", s.Datasets, s.Files)
	return out.String()
}
