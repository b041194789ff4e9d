package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its documentation.
	// If false, generates a minimal template.
	Full bool

	// Values supplies the settings to write. Nil means NewConfig().
	Values *Config
}

// field documents one configuration key.
type field struct {
	key   string
	doc   string
	value func(*Config) string
}

// fields lists the file-backed settings in the order they are written.
//
//nolint:gochecknoglobals // Static table of documented settings.
var fields = []field{
	{
		key:   "content_dir",
		doc:   "Directory holding the Markdown sources. Each file becomes one page at the same relative path with an .html extension.",
		value: func(c *Config) string { return quote(c.ContentDir) },
	},
	{
		key:   "static_dir",
		doc:   "Directory copied verbatim into the output before pages are generated. Skipped when missing.",
		value: func(c *Config) string { return quote(c.StaticDir) },
	},
	{
		key:   "output_dir",
		doc:   "Directory receiving the generated site.",
		value: func(c *Config) string { return quote(c.OutputDir) },
	},
	{
		key:   "template",
		doc:   "HTML page template. {{ Title }} and {{ Content }} are replaced with the page title and body.",
		value: func(c *Config) string { return quote(c.Template) },
	},
	{
		key:   "base_path",
		doc:   "URL prefix the site is served under. Root-relative href and src attributes are rewritten to start with it.",
		value: func(c *Config) string { return quote(c.BasePath) },
	},
	{
		key:   "clean",
		doc:   "Remove the output directory before each build.",
		value: func(c *Config) string { return strconv.FormatBool(c.ShouldClean()) },
	},
	{
		key:   "follow_symlinks",
		doc:   "Descend into symlinked directories under content_dir. A link back to a directory already being walked is skipped.",
		value: func(c *Config) string { return strconv.FormatBool(c.ShouldFollowSymlinks()) },
	},
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	values := opts.Values
	if values == nil {
		values = NewConfig()
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n")

	for _, f := range fields {
		buf.WriteString("\n")
		if opts.Full {
			fmt.Fprintf(&buf, "# %s\n", wrapComment(f.doc, commentWrapWidth))
		}
		fmt.Fprintf(&buf, "%s: %s\n", f.key, f.value(values))
	}

	buf.WriteString("\n")
	if opts.Full {
		fmt.Fprintf(&buf, "# %s\n", wrapComment("Glob patterns, relative to content_dir, for sources to skip. "+
			`"*" stays within a path segment and "**" spans segments.`, commentWrapWidth))
	}
	if len(values.Ignore) == 0 {
		buf.WriteString("# ignore:\n#   - \"drafts/**\"\n")
	} else {
		buf.WriteString("ignore:\n")
		for _, pattern := range values.Ignore {
			fmt.Fprintf(&buf, "  - %s\n", quote(pattern))
		}
	}

	return buf.Bytes(), nil
}

// quote renders s as a double-quoted YAML scalar.
func quote(s string) string {
	return strconv.Quote(s)
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n# ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# mdsite configuration
# See: https://github.com/yaklabco/mdsite`
}
