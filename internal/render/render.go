// Package render draws the command output: bordered panels and tables.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Tiliavir/track/internal/report"
)

// Colors used by the panels.
const (
	ColorSuccess = "#22C55E"
	ColorInfo    = "#06B6D4"
	ColorWarning = "#F59E0B"
	ColorError   = "#EF4444"
	colorBorder  = "#3A3F55"
	colorDim     = "#6D7383"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	boldCell     = cellStyle.Bold(true)
	dimCell      = cellStyle.Foreground(lipgloss.Color(colorDim))
	hoursCell    = cellStyle.Foreground(lipgloss.Color(ColorInfo)).Align(lipgloss.Right)
	elapsedCell  = cellStyle.Foreground(lipgloss.Color(ColorSuccess)).Align(lipgloss.Right)
	captionStyle = lipgloss.NewStyle().Bold(true).Italic(true)
)

// Panel draws body inside a rounded border with title on the first line.
func Panel(title, body, color string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(title)
	return style.Render(heading + "\n" + body)
}

// Message is a single styled line, used for notices such as "No open logs found.".
func Message(text, color string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(text)
}

// FormatHours formats hours with two decimals.
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

// HumanizeHours formats hours as "1h 05m", dropping seconds.
func HumanizeHours(h float64) string {
	if h < 0 {
		h = 0
	}
	total := int64(math.Round(h * 3600))
	return fmt.Sprintf("%dh %02dm", total/3600, (total%3600)/60)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(colorBorder))).
		BorderColumn(false).
		Headers(headers...)
}

// ReportTable renders the per-task hours of r followed by a total panel.
// An empty report shows a single "No data" row.
func ReportTable(r report.Report) string {
	rows := r.Rows()
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{row.Task, FormatHours(row.Hours)})
	}
	if len(data) == 0 {
		data = append(data, []string{"No data", FormatHours(0)})
	}

	t := newTable("Task", "Hours").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return hoursCell
			default:
				return boldCell
			}
		})

	var b strings.Builder
	b.WriteString(captionStyle.Render(fmt.Sprintf("Report: %s — %s", r.Client, r.Phrase)))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(Panel("Summary", fmt.Sprintf("Total: %s hours", FormatHours(r.Total)), ColorInfo))
	return b.String()
}

// OpenRow is one line of the open logs table.
type OpenRow struct {
	Client string
	Task   string
	Start  string
	// Elapsed is a humanized duration, or "-" when the start is unknown.
	Elapsed string
	File    string
}

// OpenTable renders the open logs and the total running hours.
func OpenTable(rows []OpenRow, totalHours float64) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Client, r.Task, r.Start, r.Elapsed, r.File})
	}
	t := newTable("Client", "Task", "Start", "Elapsed", "File").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case 0:
				return boldCell
			case 2:
				return cellStyle.Foreground(lipgloss.Color(ColorInfo))
			case 3:
				return elapsedCell
			case 4:
				return dimCell
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(captionStyle.Render("Open tracks"))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(Panel("Summary", fmt.Sprintf("Total running: %s hours", FormatHours(totalHours)), ColorInfo))
	return b.String()
}

// List renders a titled bullet list, used by the discovery commands.
func List(title string, items []string) string {
	var b strings.Builder
	b.WriteString(captionStyle.Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("  • ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}
