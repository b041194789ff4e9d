// Package page turns a Markdown document into a complete HTML page by
// filling a template with the document title and rendered body.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/mdsite/pkg/fsutil"
)

// Template placeholders.
const (
	PlaceholderTitle   = "{{ Title }}"
	PlaceholderContent = "{{ Content }}"
)

// ErrMissingHeading is returned when a document has no level-1 heading.
var ErrMissingHeading = errors.New("no h1 heading found (a line starting with '# ')")

// Converter renders Markdown source to an HTML fragment.
type Converter interface {
	Convert(ctx context.Context, src []byte) (string, error)
}

// ExtractTitle returns the text of the first level-1 heading line: a line
// that, once trimmed, begins with "# " and whose third character, if any,
// is not '#'.
func ExtractTitle(markdown string) (string, error) {
	for _, line := range strings.Split(strings.TrimSpace(markdown), "\n") {
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, "# ") {
			continue
		}
		if len(stripped) == 2 || stripped[2] != '#' {
			return strings.TrimSpace(stripped[2:]), nil
		}
	}
	return "", ErrMissingHeading
}

// Render substitutes title and content into every placeholder of tmpl.
func Render(tmpl, title, content string) string {
	out := strings.ReplaceAll(tmpl, PlaceholderTitle, title)
	return strings.ReplaceAll(out, PlaceholderContent, content)
}

// RewriteBasePath rewrites root-relative href and src attributes so the
// page works when served below base. A base of "/" or "" is a no-op.
func RewriteBasePath(html, base string) string {
	if base == "" || base == "/" {
		return html
	}
	html = strings.ReplaceAll(html, `href="/`, `href="`+base)
	return strings.ReplaceAll(html, `src="/`, `src="`+base)
}

// Generator produces pages from Markdown sources.
type Generator struct {
	Converter Converter
	Template  string
	BasePath  string
}

// NewGenerator returns a Generator using conv and tmpl, rooted at basePath.
func NewGenerator(conv Converter, tmpl, basePath string) *Generator {
	return &Generator{Converter: conv, Template: tmpl, BasePath: basePath}
}

// Generate renders one page from Markdown source.
func (g *Generator) Generate(ctx context.Context, src []byte) ([]byte, error) {
	content, err := g.Converter.Convert(ctx, src)
	if err != nil {
		return nil, err
	}

	title, err := ExtractTitle(string(src))
	if err != nil {
		return nil, err
	}

	html := Render(g.Template, title, content)
	return []byte(RewriteBasePath(html, g.BasePath)), nil
}

// GenerateFile reads the Markdown file at from and writes the page to to,
// creating parent directories as needed. It reports whether the output
// file changed; an identical existing page is left untouched.
func (g *Generator) GenerateFile(ctx context.Context, from, to string) (bool, error) {
	src, _, err := fsutil.ReadFile(ctx, from)
	if err != nil {
		return false, fmt.Errorf("read source: %w", err)
	}

	out, err := g.Generate(ctx, src)
	if err != nil {
		return false, err
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, to, out, fsutil.DefaultFileMode)
	if err != nil {
		return false, fmt.Errorf("write page: %w", err)
	}
	return written, nil
}

// LoadTemplate reads a page template and checks it has a content placeholder.
func LoadTemplate(ctx context.Context, path string) (string, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	tmpl := string(content)
	if !strings.Contains(tmpl, PlaceholderContent) {
		return "", fmt.Errorf("template %s: missing %s placeholder", path, PlaceholderContent)
	}
	return tmpl, nil
}
