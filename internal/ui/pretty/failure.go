package pretty

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/mdsite/pkg/inline"
	"github.com/yaklabco/mdsite/pkg/markdown"
	"github.com/yaklabco/mdsite/pkg/runner"
)

// FormatFailure formats a failed page for terminal output. path is the
// name to display for the source. When the error carries the offending
// inline text run, the run is shown with a caret under the unmatched
// delimiter. The run is the text the inline passes saw: paragraph lines
// are already joined and links and images already extracted, so it is
// labeled as such rather than as a source line.
func (s *Styles) FormatFailure(path string, outcome runner.PageOutcome) string {
	if outcome.Error == nil {
		return ""
	}

	var builder strings.Builder

	location := s.FilePath.Render(path)
	message := outcome.Error.Error()

	var blockErr *markdown.BlockError
	if errors.As(outcome.Error, &blockErr) {
		location += s.Location.Render(fmt.Sprintf(":block %d (%s)", blockErr.Index, blockErr.Type))
		message = blockErr.Err.Error()
	}

	builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.Error.Render("error"),
		s.Message.Render(message),
	))

	var malformed *inline.MalformedError
	if errors.As(outcome.Error, &malformed) {
		builder.WriteString(s.FormatTextRun(malformed.Text, unmatchedColumn(malformed)))
	}

	return builder.String()
}

// textRunLabel prefixes the inline text shown under a failure.
const textRunLabel = "in text: "

// FormatTextRun formats an inline text run with a caret under column,
// a 1-based rune offset into text. A column of 0 omits the caret.
func (s *Styles) FormatTextRun(text string, column int) string {
	var builder strings.Builder

	// Indent to align with failure output
	const indent = "        "

	builder.WriteString(indent + s.Location.Render(textRunLabel) + s.SourceLine.Render(text) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", len(textRunLabel)+column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// unmatchedColumn returns the 1-based column, within the text run, of the
// last occurrence of the delimiter, which is the one left without a
// partner.
func unmatchedColumn(e *inline.MalformedError) int {
	idx := strings.LastIndex(e.Text, e.Delimiter)
	if idx < 0 {
		return 0
	}
	return len([]rune(e.Text[:idx])) + 1
}
