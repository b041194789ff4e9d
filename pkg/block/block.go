// Package block splits a Markdown document into blocks and classifies each
// block by its leading syntax.
package block

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the classification of a single block.
type Type uint8

// Block types.
const (
	TypeParagraph Type = iota
	TypeHeading
	TypeCodeBlock
	TypeQuote
	TypeUnorderedList
	TypeOrderedList
)

// String returns the block type name.
func (t Type) String() string {
	switch t {
	case TypeParagraph:
		return "paragraph"
	case TypeHeading:
		return "heading"
	case TypeCodeBlock:
		return "code"
	case TypeQuote:
		return "quote"
	case TypeUnorderedList:
		return "unordered_list"
	case TypeOrderedList:
		return "ordered_list"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Syntax markers.
const (
	Fence          = "```"
	FenceOpen      = Fence + "\n"
	QuotePrefix    = ">"
	BulletPrefix   = "- "
	MaxHeadingRank = 6
)

// Classify returns the type of an already-trimmed block. Lines are
// separated by a single '\n'. Rules are applied in order and the first
// match wins; line-based rules must hold for every line of the block.
func Classify(block string) Type {
	if block == "" {
		return TypeParagraph
	}

	if isCodeBlock(block) {
		return TypeCodeBlock
	}

	if HeadingLevel(block) > 0 {
		return TypeHeading
	}

	lines := strings.Split(block, "\n")

	if allLines(lines, func(_ int, line string) bool { return strings.HasPrefix(line, QuotePrefix) }) {
		return TypeQuote
	}

	if allLines(lines, func(_ int, line string) bool { return strings.HasPrefix(line, BulletPrefix) }) {
		return TypeUnorderedList
	}

	if allLines(lines, func(i int, line string) bool {
		prefix := OrderedPrefix(i + 1)
		return len(line) >= len(prefix) && strings.HasPrefix(line, prefix)
	}) {
		return TypeOrderedList
	}

	return TypeParagraph
}

func isCodeBlock(block string) bool {
	return strings.HasPrefix(block, FenceOpen) &&
		strings.HasSuffix(block, Fence) &&
		len(block) > len(FenceOpen)+len(Fence)
}

// HeadingLevel returns the number of leading '#' characters when block
// starts with 1–6 of them followed by a space, and 0 otherwise.
func HeadingLevel(block string) int {
	level := 0
	for level < len(block) && block[level] == '#' {
		level++
	}
	if level == 0 || level > MaxHeadingRank {
		return 0
	}
	if level >= len(block) || block[level] != ' ' {
		return 0
	}
	return level
}

// OrderedPrefix returns the list marker expected on the n-th (1-based)
// line of an ordered list, e.g. "10. ".
func OrderedPrefix(n int) string {
	return strconv.Itoa(n) + ". "
}

func allLines(lines []string, pred func(int, string) bool) bool {
	if len(lines) == 0 {
		return false
	}
	for i, line := range lines {
		if !pred(i, line) {
			return false
		}
	}
	return true
}
