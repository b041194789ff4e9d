// Package htmlnode defines the HTML tree produced by the Markdown compiler
// and the rules for serializing it to markup.
package htmlnode

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrStructural indicates a parent node without a tag or without children.
	ErrStructural = errors.New("structural error")

	// ErrMissingLeafValue indicates a leaf node without a value.
	ErrMissingLeafValue = errors.New("leaf node requires a value")
)

// Kind distinguishes the two node variants.
type Kind uint8

const (
	// KindLeaf is a node holding a literal value and no children.
	KindLeaf Kind = iota

	// KindParent is a node holding an ordered sequence of children.
	KindParent
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindParent:
		return "Parent"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is a single element of the HTML tree.
//
// A leaf carries Value and never Children. A parent carries Children and
// never Value. A nil Value on a leaf and a nil Children slice on a parent
// both mean "unset" and fail at render time; an empty non-nil Children slice
// is a valid parent with no content.
type Node struct {
	Kind Kind

	// Tag is the element name. An empty tag on a leaf renders raw text.
	Tag string

	// Value is the literal text of a leaf.
	Value *string

	// Children are the ordered child nodes of a parent.
	Children []*Node

	// Attrs are rendered in insertion order.
	Attrs Attrs
}

// Leaf returns a leaf node with the given tag, value and attributes.
// An empty tag yields a raw text node.
func Leaf(tag, value string, attrs ...Attr) *Node {
	return &Node{
		Kind:  KindLeaf,
		Tag:   tag,
		Value: &value,
		Attrs: NewAttrs(attrs...),
	}
}

// Text returns an untagged leaf that renders value verbatim.
func Text(value string) *Node {
	return Leaf("", value)
}

// NewLeaf is the checked leaf constructor for callers whose value may be
// absent. It fails with ErrMissingLeafValue when value is nil.
func NewLeaf(tag string, value *string, attrs Attrs) (*Node, error) {
	if value == nil {
		return nil, fmt.Errorf("new leaf <%s>: %w", tag, ErrMissingLeafValue)
	}
	v := *value
	return &Node{
		Kind:  KindLeaf,
		Tag:   tag,
		Value: &v,
		Attrs: attrs.clone(),
	}, nil
}

// Parent returns a parent node owning children. A nil children slice is
// normalized to an empty one; use a Node literal to build an unset parent.
func Parent(tag string, children []*Node, attrs ...Attr) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{
		Kind:     KindParent,
		Tag:      tag,
		Children: children,
		Attrs:    NewAttrs(attrs...),
	}
}

// Render serializes the node and its descendants to markup.
// No escaping is performed on values or attributes.
func (n *Node) Render() (string, error) {
	var builder strings.Builder
	if err := n.render(&builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// MustRender is like Render but panics on error. Intended for tests and
// trees built entirely from the constructors in this package.
func (n *Node) MustRender() string {
	out, err := n.Render()
	if err != nil {
		panic(err)
	}
	return out
}

func (n *Node) render(builder *strings.Builder) error {
	if n == nil {
		return fmt.Errorf("render nil node: %w", ErrStructural)
	}

	switch n.Kind {
	case KindLeaf:
		return n.renderLeaf(builder)
	case KindParent:
		return n.renderParent(builder)
	default:
		return fmt.Errorf("render %s: %w", n.Kind, ErrStructural)
	}
}

func (n *Node) renderLeaf(builder *strings.Builder) error {
	if n.Value == nil {
		return fmt.Errorf("render leaf <%s>: %w", n.Tag, ErrMissingLeafValue)
	}

	if n.Tag == "" {
		builder.WriteString(*n.Value)
		return nil
	}

	n.openTag(builder)
	builder.WriteString(*n.Value)
	n.closeTag(builder)
	return nil
}

func (n *Node) renderParent(builder *strings.Builder) error {
	if n.Tag == "" {
		return fmt.Errorf("render parent: missing tag: %w", ErrStructural)
	}
	if n.Children == nil {
		return fmt.Errorf("render parent <%s>: missing children: %w", n.Tag, ErrStructural)
	}

	n.openTag(builder)
	for _, child := range n.Children {
		if err := child.render(builder); err != nil {
			return err
		}
	}
	n.closeTag(builder)
	return nil
}

func (n *Node) openTag(builder *strings.Builder) {
	builder.WriteByte('<')
	builder.WriteString(n.Tag)
	builder.WriteString(n.Attrs.Render())
	builder.WriteByte('>')
}

func (n *Node) closeTag(builder *strings.Builder) {
	builder.WriteString("</")
	builder.WriteString(n.Tag)
	builder.WriteByte('>')
}

// String returns a debug representation of the node.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	switch n.Kind {
	case KindLeaf:
		value := "<nil>"
		if n.Value != nil {
			value = fmt.Sprintf("%q", *n.Value)
		}
		return fmt.Sprintf("Leaf(tag=%q, value=%s, attrs=%s)", n.Tag, value, n.Attrs)
	case KindParent:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, child.String())
		}
		return fmt.Sprintf("Parent(tag=%q, children=[%s], attrs=%s)",
			n.Tag, strings.Join(parts, ", "), n.Attrs)
	default:
		return n.Kind.String()
	}
}
