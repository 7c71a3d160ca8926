// Package results renders classification output as a two-column table.
package results

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/theme"
)

// Heading is shown above a rendered table.
const Heading = "Classification Results"

// Table builds the Field/Value table for result, one row per field in
// the order the service supplied them.
func Table(result *model.ClassificationResult) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("Field", "Value").
		Rows(result.Rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return theme.TableHeaderStyle
			case col == 0:
				return theme.TableCellStyle.Bold(true)
			default:
				return theme.TableCellStyle
			}
		})
}

// View renders the results block for status. It is empty unless the
// status is Succeeded with a "success" payload.
func View(status model.SubmissionStatus, width int) string {
	result, ok := status.Result()
	if !ok || !result.IsSuccess() {
		return ""
	}

	t := Table(result)
	if width > 0 {
		t = t.Width(width)
	}

	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGreen).
		Render("✔ " + Heading)

	return lipgloss.JoinVertical(lipgloss.Left, heading, t.Render())
}
