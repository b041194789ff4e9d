// Package pretty renders build output for the terminal: page failures,
// the per-page table and the build summary.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ANSI colors shared by every style.
const (
	colorRed   = lipgloss.Color("9")
	colorGreen = lipgloss.Color("10")
	colorBlue  = lipgloss.Color("12")
	colorGray  = lipgloss.Color("8")
	colorLight = lipgloss.Color("7")
)

// Styles holds the lipgloss styles used by build output. With color off
// every style renders its text unchanged.
type Styles struct {
	Error lipgloss.Style
	Info  lipgloss.Style

	// Page failures.
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Message    lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	// Build summary.
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Page table. Failed pages are red and unchanged pages gray.
	TableHeader    lipgloss.Style
	TableFailedRow lipgloss.Style
	TableSkipRow   lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles returns the output styles, colored when colorEnabled is set.
func NewStyles(colorEnabled bool) *Styles {
	base := lipgloss.NewStyle()
	fg := func(c lipgloss.Color) lipgloss.Style {
		if !colorEnabled {
			return base
		}
		return base.Foreground(c)
	}
	bold := func(s lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return s
		}
		return s.Bold(true)
	}

	return &Styles{
		Error: bold(fg(colorRed)),
		Info:  bold(fg(colorBlue)),

		FilePath:   bold(base),
		Location:   fg(colorGray),
		Message:    base,
		SourceLine: fg(colorLight),
		Caret:      fg(colorRed),

		SummaryTitle: bold(base),
		SummaryValue: base,
		Success:      bold(fg(colorGreen)),
		Failure:      bold(fg(colorRed)),

		TableHeader:    bold(fg(colorLight)),
		TableFailedRow: fg(colorRed),
		TableSkipRow:   fg(colorGray),
		TableLegend:    fg(colorGray),
		TableSeparator: fg(colorGray),

		Dim:  fg(colorGray),
		Bold: bold(base),
	}
}

// IsColorEnabled resolves a --color mode for writer. "always" and "never"
// are absolute; anything else means auto, which colors only a terminal
// and honors NO_COLOR.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
