// Package inline tokenizes inline Markdown text into typed spans.
//
// Tokenization is a fixed sequence of passes over a span list: images,
// links, bold, italic, code. Each pass only rewrites spans that are still
// plain text, so earlier passes take precedence over later ones.
package inline

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdsite/pkg/htmlnode"
)

// Kind classifies a span.
type Kind uint8

// Span kinds.
const (
	KindText Kind = iota
	KindBold
	KindItalic
	KindCode
	KindLink
	KindImage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindBold:
		return "Bold"
	case KindItalic:
		return "Italic"
	case KindCode:
		return "Code"
	case KindLink:
		return "Link"
	case KindImage:
		return "Image"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrUnknownSpanKind is returned when a span carries a kind outside the
// enumeration above.
var ErrUnknownSpanKind = errors.New("unknown span kind")

// Span is a typed fragment of inline text. Target is set only for links
// and images.
type Span struct {
	Kind   Kind
	Text   string
	Target string
}

// TextSpan returns a plain text span.
func TextSpan(text string) Span {
	return Span{Kind: KindText, Text: text}
}

// String returns a debug representation of the span.
func (s Span) String() string {
	if s.Kind == KindLink || s.Kind == KindImage {
		return fmt.Sprintf("%s(%q, %q)", s.Kind, s.Text, s.Target)
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Text)
}

// ToNode converts the span into a leaf node.
func (s Span) ToNode() (*htmlnode.Node, error) {
	switch s.Kind {
	case KindText:
		return htmlnode.Text(s.Text), nil
	case KindBold:
		return htmlnode.Leaf("b", s.Text), nil
	case KindItalic:
		return htmlnode.Leaf("i", s.Text), nil
	case KindCode:
		return htmlnode.Leaf("code", s.Text), nil
	case KindLink:
		return htmlnode.Leaf("a", s.Text, htmlnode.Attr{Key: "href", Value: s.Target}), nil
	case KindImage:
		return htmlnode.Leaf("img", "",
			htmlnode.Attr{Key: "src", Value: s.Target},
			htmlnode.Attr{Key: "alt", Value: s.Text},
		), nil
	default:
		return nil, fmt.Errorf("convert %s: %w", s.Kind, ErrUnknownSpanKind)
	}
}

// ToNodes converts every span into a leaf node, in order.
func ToNodes(spans []Span) ([]*htmlnode.Node, error) {
	nodes := make([]*htmlnode.Node, 0, len(spans))
	for _, span := range spans {
		node, err := span.ToNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
