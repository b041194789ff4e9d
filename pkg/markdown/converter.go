package markdown

import (
	"context"
	"fmt"
)

// Converter renders Markdown source to an HTML fragment.
// The zero value is ready to use and safe for concurrent use.
type Converter struct{}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert compiles src and renders the resulting tree.
func (c *Converter) Convert(ctx context.Context, src []byte) (string, error) {
	root, err := CompileContext(ctx, string(src))
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}

	out, err := root.Render()
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}
