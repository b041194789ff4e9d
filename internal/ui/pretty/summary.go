package pretty

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/mdsite/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordPage            = "page"
	wordPages           = "pages"
	wordFile            = "file"
	wordFiles           = "files"
)

// plural picks the word for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats build statistics as a single line.
// Example: "Built 12 pages (2 unchanged), copied 4 static files (1.2 MB) in 35ms".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	built := fmt.Sprintf("Built %s %s", humanize.Comma(int64(stats.PagesGenerated)),
		plural(stats.PagesGenerated, wordPage, wordPages))
	if stats.PagesUnchanged > 0 {
		built += s.Dim.Render(fmt.Sprintf(" (%d unchanged)", stats.PagesUnchanged))
	}
	if stats.PagesFailed > 0 {
		parts = append(parts, s.Failure.Render(built))
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.PagesFailed)))
	} else {
		parts = append(parts, s.Success.Render(built))
	}

	if stats.StaticFiles > 0 {
		parts = append(parts, fmt.Sprintf("copied %s static %s (%s)",
			humanize.Comma(int64(stats.StaticFiles)),
			plural(stats.StaticFiles, wordFile, wordFiles),
			humanize.Bytes(uint64(max(stats.StaticBytes, 0)))))
	}

	line := strings.Join(parts, ", ")
	if stats.Duration > 0 {
		line += s.Dim.Render(" in " + formatDuration(stats.Duration))
	}
	return line + "\n"
}

// FormatSummary formats build statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Pages found:       " +
		s.SummaryValue.Render(humanize.Comma(int64(stats.PagesDiscovered))) + "\n")
	builder.WriteString("  Pages generated:   " +
		s.SummaryValue.Render(humanize.Comma(int64(stats.PagesGenerated))) + "\n")

	if stats.PagesUnchanged > 0 {
		builder.WriteString("    Unchanged:       " +
			s.Dim.Render(humanize.Comma(int64(stats.PagesUnchanged))) + "\n")
	}
	if stats.PagesFailed > 0 {
		builder.WriteString("  Pages failed:      " +
			s.Failure.Render(humanize.Comma(int64(stats.PagesFailed))) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Static files:      " +
		s.SummaryValue.Render(humanize.Comma(int64(stats.StaticFiles))) + "\n")
	if stats.StaticFiles > 0 {
		builder.WriteString("  Static size:       " +
			s.SummaryValue.Render(humanize.Bytes(uint64(max(stats.StaticBytes, 0)))) + "\n")
	}
	if stats.Duration > 0 {
		builder.WriteString("  Duration:          " +
			s.SummaryValue.Render(formatDuration(stats.Duration)) + "\n")
	}

	builder.WriteString("\n")

	if stats.PagesFailed > 0 {
		builder.WriteString(s.Failure.Render("Build completed with failures"))
	} else {
		builder.WriteString(s.Success.Render("Build succeeded"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
