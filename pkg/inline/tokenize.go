package inline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedInlineMarkup is returned when a delimiter has no matching
// closing delimiter within a text run.
var ErrMalformedInlineMarkup = errors.New("malformed inline markup")

// MalformedError reports the delimiter that was left unmatched.
type MalformedError struct {
	Delimiter string
	Text      string
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: no matching closing delimiter %q in %q",
		ErrMalformedInlineMarkup, e.Delimiter, e.Text)
}

// Unwrap allows errors.Is(err, ErrMalformedInlineMarkup).
func (e *MalformedError) Unwrap() error {
	return ErrMalformedInlineMarkup
}

// Delimiters for the delimiter passes.
const (
	DelimiterBold   = "**"
	DelimiterItalic = "_"
	DelimiterCode   = "`"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	imagePattern = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	linkPattern  = regexp.MustCompile(`^\[(.*?)\]\((.*?)\)`)
)

// Pass rewrites the text spans of a span list.
type Pass struct {
	Name  string
	Apply func([]Span) ([]Span, error)
}

// Passes is the tokenizer pipeline in execution order.
//
//nolint:gochecknoglobals // Read-only pipeline table.
var Passes = []Pass{
	{Name: "images", Apply: func(spans []Span) ([]Span, error) { return SplitImages(spans), nil }},
	{Name: "links", Apply: func(spans []Span) ([]Span, error) { return SplitLinks(spans), nil }},
	{Name: "bold", Apply: delimiterPass(DelimiterBold, KindBold)},
	{Name: "italic", Apply: delimiterPass(DelimiterItalic, KindItalic)},
	{Name: "code", Apply: delimiterPass(DelimiterCode, KindCode)},
}

func delimiterPass(delimiter string, kind Kind) func([]Span) ([]Span, error) {
	return func(spans []Span) ([]Span, error) {
		return SplitDelimiter(spans, delimiter, kind)
	}
}

// Tokenize splits inline Markdown text into spans.
// An empty string yields an empty, non-nil slice.
func Tokenize(text string) ([]Span, error) {
	spans := []Span{TextSpan(text)}
	for _, pass := range Passes {
		var err error
		spans, err = pass.Apply(spans)
		if err != nil {
			return nil, fmt.Errorf("%s pass: %w", pass.Name, err)
		}
	}
	return spans, nil
}

// Match is one image or link found in text.
type Match struct {
	Text   string
	Target string
}

// ExtractImages returns every ![alt](url) in text, left to right.
func ExtractImages(text string) []Match {
	return matchesOf(text, findImages(text))
}

// ExtractLinks returns every [anchor](url) in text that is not an image.
func ExtractLinks(text string) []Match {
	return matchesOf(text, findLinks(text))
}

func matchesOf(text string, locs [][]int) []Match {
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{Text: text[loc[2]:loc[3]], Target: text[loc[4]:loc[5]]})
	}
	return matches
}

// findImages returns submatch indexes for every image in text.
func findImages(text string) [][]int {
	return imagePattern.FindAllStringSubmatchIndex(text, -1)
}

// findLinks returns submatch indexes for every link in text. A bracket
// directly preceded by '!' never starts a link, but a later bracket inside
// the same run still may.
func findLinks(text string) [][]int {
	var locs [][]int
	for pos := 0; pos < len(text); {
		offset := strings.IndexByte(text[pos:], '[')
		if offset < 0 {
			break
		}
		start := pos + offset
		if start > 0 && text[start-1] == '!' {
			pos = start + 1
			continue
		}

		loc := linkPattern.FindStringSubmatchIndex(text[start:])
		if loc == nil {
			pos = start + 1
			continue
		}
		for i := range loc {
			loc[i] += start
		}
		locs = append(locs, loc)
		pos = loc[1]
	}
	return locs
}

// SplitImages replaces image syntax in text spans with image spans.
func SplitImages(spans []Span) []Span {
	return splitPattern(spans, findImages, KindImage)
}

// SplitLinks replaces link syntax in text spans with link spans.
func SplitLinks(spans []Span) []Span {
	return splitPattern(spans, findLinks, KindLink)
}

func splitPattern(spans []Span, find func(string) [][]int, kind Kind) []Span {
	result := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Kind != KindText {
			result = append(result, span)
			continue
		}

		locs := find(span.Text)
		if len(locs) == 0 {
			result = append(result, span)
			continue
		}

		text := span.Text
		last := 0
		for _, loc := range locs {
			if before := text[last:loc[0]]; before != "" {
				result = append(result, TextSpan(before))
			}
			result = append(result, Span{
				Kind:   kind,
				Text:   text[loc[2]:loc[3]],
				Target: text[loc[4]:loc[5]],
			})
			last = loc[1]
		}
		if rest := text[last:]; rest != "" {
			result = append(result, TextSpan(rest))
		}
	}
	return result
}

// SplitDelimiter splits text spans on delimiter, turning every enclosed
// segment into a span of kind. Segments alternate outside/inside starting
// outside; empty segments are dropped. An unmatched delimiter fails with a
// *MalformedError.
func SplitDelimiter(spans []Span, delimiter string, kind Kind) ([]Span, error) {
	result := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Kind != KindText {
			result = append(result, span)
			continue
		}

		parts := strings.Split(span.Text, delimiter)
		if len(parts)%2 == 0 {
			return nil, &MalformedError{Delimiter: delimiter, Text: span.Text}
		}

		for i, part := range parts {
			if part == "" {
				continue
			}
			if i%2 == 0 {
				result = append(result, TextSpan(part))
			} else {
				result = append(result, Span{Kind: kind, Text: part})
			}
		}
	}
	return result, nil
}
