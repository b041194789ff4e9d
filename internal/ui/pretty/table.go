package pretty

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdsite/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 3 // SOURCE, OUTPUT, STATUS
	minSourceWidth   = 20
	minOutputWidth   = 20
	statusWidth      = 9
	heavySeparator   = "="
	defaultTermWidth = 100
)

// Page status labels.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
)

// TableRow represents a single row in the page table.
type TableRow struct {
	Source string
	Output string
	Status string
}

// TableFormatter formats build outcomes as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
	root         string
}

// NewTableFormatter creates a new table formatter. Paths are shown
// relative to root when possible.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int, root string) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
		root:         root,
	}
}

// FormatTable formats every page outcome as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Pages) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Pages))
	for _, page := range result.Pages {
		rows = append(rows, t.PageToTableRow(page))
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	return builder.String()
}

// PageToTableRow converts a page outcome to a table row.
func (t *TableFormatter) PageToTableRow(page runner.PageOutcome) TableRow {
	row := TableRow{
		Source: t.display(page.Source),
		Output: t.display(page.Output),
		Status: StatusWritten,
	}
	switch {
	case page.Error != nil:
		row.Status = StatusFailed
		row.Output = "-"
	case !page.Written:
		row.Status = StatusUnchanged
	}
	return row
}

// display shortens path relative to the formatter root.
func (t *TableFormatter) display(path string) string {
	if t.root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(t.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

type columnWidths struct {
	source int
	output int
}

// calculateColumnWidths sizes columns to content, shrinking to fit the terminal.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{source: len("SOURCE"), output: len("OUTPUT")}
	for _, row := range rows {
		widths.source = max(widths.source, len(row.Source))
		widths.output = max(widths.output, len(row.Output))
	}

	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		excess := total - t.termWidth
		shrink := min(excess, max(0, widths.output-minOutputWidth))
		widths.output -= shrink
		excess -= shrink
		widths.source = max(minSourceWidth, widths.source-excess)
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.source + widths.output + statusWidth + (tablePadding * tableColumnCount)
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s ",
		widths.source, "SOURCE",
		widths.output, "OUTPUT",
		statusWidth, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, t.calculateTotalWidth(widths)))
}

// formatRow formats a single table row with status-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %-*s  %-*s ",
		widths.source, truncateFilePath(row.Source, widths.source),
		widths.output, truncateFilePath(row.Output, widths.output),
		statusWidth, row.Status,
	)
	return t.getRowStyle(row.Status).Render(content)
}

// getRowStyle returns the appropriate style for a page status.
func (t *TableFormatter) getRowStyle(status string) lipgloss.Style {
	switch status {
	case StatusFailed:
		return t.styles.TableFailedRow
	case StatusUnchanged:
		return t.styles.TableSkipRow
	default:
		return lipgloss.NewStyle()
	}
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
