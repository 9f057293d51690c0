package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Padding(0, 1)
)

// Console writes the KPI comparison and the test results as terminal tables.
func (r *Report) Console(w io.Writer) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Key Performance Indicators"))
	b.WriteString("\n")
	b.WriteString(r.kpiTable().Render())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Statistical Tests"))
	b.WriteString("\n")
	b.WriteString(r.testsTable().Render())
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) kpiTable() *table.Table {
	rows := make([][]string, 0, len(r.Comparison))
	for _, c := range r.Comparison {
		rows = append(rows, []string{c.KPI, c.Control.Format(2), c.Test.Format(2), c.Diff.Format(2), liftCell(c.Lift)})
	}
	return newTable("KPI", models.Control.Title(), models.Test.Title(), "Diff", "Lift").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (r *Report) testsTable() *table.Table {
	rows := make([][]string, 0, len(r.Tests))
	for _, t := range r.Tests {
		if !t.Ok() {
			rows = append(rows, []string{t.Metric, t.Method, models.Undefined, models.Undefined, t.Err})
			continue
		}
		verdict := "not significant"
		if t.Significant {
			verdict = "significant"
		}
		rows = append(rows, []string{
			t.Metric,
			t.Method,
			fmt.Sprintf("%.4f", t.Statistic),
			fmt.Sprintf("%.4f", t.PValue),
			fmt.Sprintf("%s (alpha %.2f)", verdict, t.Alpha),
		})
	}
	return newTable("Metric", "Method", "t", "p-value", "Result").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(r.Tests) && r.Tests[row].Significant:
				return sigStyle
			}
			return cellStyle
		})
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func liftCell(l models.Ratio) string {
	if !l.Valid {
		return models.Undefined
	}
	return fmt.Sprintf("%+.2f%%", l.Value*100)
}
