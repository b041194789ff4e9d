// Package markdown compiles Markdown documents into HTML node trees.
//
// The supported syntax is a fixed subset: headings, fenced code blocks,
// block quotes, unordered and ordered lists, paragraphs, and the inline
// spans understood by package inline. There is no nesting of emphasis,
// no escaping and no HTML passthrough.
package markdown

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/yaklabco/mdsite/pkg/block"
	"github.com/yaklabco/mdsite/pkg/htmlnode"
	"github.com/yaklabco/mdsite/pkg/inline"
)

// RootTag is the tag of the node wrapping a compiled document.
const RootTag = "div"

// BlockError annotates a compilation failure with the offending block.
type BlockError struct {
	// Index is the 1-based position of the block in the document.
	Index int

	// Type is the classification of the block.
	Type block.Type

	Err error
}

// Error implements the error interface.
func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *BlockError) Unwrap() error {
	return e.Err
}

// Compile converts a whole document into a single div node. On failure
// no partial tree is returned.
func Compile(document string) (*htmlnode.Node, error) {
	return CompileContext(context.Background(), document)
}

// CompileContext is Compile with cancellation checked between blocks.
func CompileContext(ctx context.Context, document string) (*htmlnode.Node, error) {
	blocks := block.Split(document)
	children := make([]*htmlnode.Node, 0, len(blocks))

	for i, raw := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compile cancelled: %w", err)
		}

		node, err := BlockToNode(raw)
		if err != nil {
			return nil, &BlockError{Index: i + 1, Type: block.Classify(raw), Err: err}
		}
		children = append(children, node)
	}

	return htmlnode.Parent(RootTag, children), nil
}

// BlockToNode converts one trimmed block into an HTML node.
func BlockToNode(raw string) (*htmlnode.Node, error) {
	switch kind := block.Classify(raw); kind {
	case block.TypeParagraph:
		return paragraphToNode(raw)
	case block.TypeHeading:
		return headingToNode(raw)
	case block.TypeCodeBlock:
		return codeToNode(raw), nil
	case block.TypeQuote:
		return quoteToNode(raw)
	case block.TypeUnorderedList:
		return listToNode(raw, "ul", func(_ int, line string) string {
			return line[len(block.BulletPrefix):]
		})
	case block.TypeOrderedList:
		return listToNode(raw, "ol", func(i int, line string) string {
			return line[len(block.OrderedPrefix(i+1)):]
		})
	default:
		return nil, fmt.Errorf("unhandled block type %s", kind)
	}
}

// TextToChildren tokenizes inline text and converts the spans to leaves.
func TextToChildren(text string) ([]*htmlnode.Node, error) {
	spans, err := inline.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return inline.ToNodes(spans)
}

func wrapInline(tag, text string) (*htmlnode.Node, error) {
	children, err := TextToChildren(text)
	if err != nil {
		return nil, err
	}
	return htmlnode.Parent(tag, children), nil
}

func paragraphToNode(raw string) (*htmlnode.Node, error) {
	return wrapInline("p", strings.ReplaceAll(raw, "\n", " "))
}

func headingToNode(raw string) (*htmlnode.Node, error) {
	level := block.HeadingLevel(raw)
	return wrapInline(fmt.Sprintf("h%d", level), raw[level+1:])
}

func codeToNode(raw string) *htmlnode.Node {
	content := raw[len(block.FenceOpen) : len(raw)-len(block.Fence)]
	return htmlnode.Parent("pre", []*htmlnode.Node{htmlnode.Leaf("code", content)})
}

func quoteToNode(raw string) (*htmlnode.Node, error) {
	lines := strings.Split(raw, "\n")
	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimPrefix(line, block.QuotePrefix)
		stripped = append(stripped, strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	return wrapInline("blockquote", strings.Join(stripped, " "))
}

func listToNode(raw, tag string, content func(int, string) string) (*htmlnode.Node, error) {
	lines := strings.Split(raw, "\n")
	items := make([]*htmlnode.Node, 0, len(lines))
	for i, line := range lines {
		item, err := wrapInline("li", content(i, line))
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return htmlnode.Parent(tag, items), nil
}
