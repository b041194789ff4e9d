package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdsite/internal/logging"
	"github.com/yaklabco/mdsite/pkg/config"
	"github.com/yaklabco/mdsite/pkg/markdown"
	"github.com/yaklabco/mdsite/pkg/page"
	"github.com/yaklabco/mdsite/pkg/runner"
)

// countingConverter wraps a converter and counts calls.
type countingConverter struct {
	inner page.Converter
	calls atomic.Int64
}

func (c *countingConverter) Convert(ctx context.Context, src []byte) (string, error) {
	c.calls.Add(1)
	return c.inner.Convert(ctx, src)
}

// site lays out a small project and returns its root.
func site(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func defaultOptions(root string) runner.Options {
	opts := runner.OptionsFromConfig(config.NewConfig())
	opts.WorkingDir = root
	return opts
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestNew(t *testing.T) {
	t.Parallel()

	conv := markdown.NewConverter()
	r := runner.New(conv)
	assert.Same(t, conv, r.Converter)
}

func TestRunner_Run_BuildsSite(t *testing.T) {
	t.Parallel()

	root := site(t, map[string]string{
		"template.html":                    page.DefaultTemplate,
		"static/index.css":                 "body { color: black; }",
		"static/images/tolkien.png":        "PNG-DATA",
		"content/index.md":                 "# Tolkien Fan Club\n\n![JRR Tolkien](/images/tolkien.png)\n\nSee the [blog](/blog/glorfindel/)",
		"content/blog/glorfindel/index.md": "# Glorfindel\n\n> All that is gold\n> does not glitter\n\n- a\n- b",
		"content/contact/index.md":         "# Contact\n\n1. one\n2. two",
	})

	opts := defaultOptions(root)
	opts.BasePath = "/fanclub/"

	result, err := runner.New(markdown.NewConverter()).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.False(t, result.HasFailures())
	assert.Equal(t, 3, result.Stats.PagesDiscovered)
	assert.Equal(t, 3, result.Stats.PagesGenerated)
	assert.Zero(t, result.Stats.PagesUnchanged)
	assert.Equal(t, 2, result.Stats.StaticFiles)
	assert.Equal(t, int64(len("body { color: black; }")+len("PNG-DATA")), result.Stats.StaticBytes)
	assert.Positive(t, result.Stats.Duration)
	assert.Empty(t, result.Failed())

	public := filepath.Join(root, "public")
	assert.FileExists(t, filepath.Join(public, "index.css"))
	assert.FileExists(t, filepath.Join(public, "images", "tolkien.png"))

	doc := readDoc(t, filepath.Join(public, "index.html"))
	assert.Equal(t, "Tolkien Fan Club", doc.Find("title").Text())
	src, _ := doc.Find("article img").Attr("src")
	assert.Equal(t, "/fanclub/images/tolkien.png", src)
	href, _ := doc.Find("article a").Attr("href")
	assert.Equal(t, "/fanclub/blog/glorfindel/", href)

	post := readDoc(t, filepath.Join(public, "blog", "glorfindel", "index.html"))
	assert.Equal(t, "All that is gold does not glitter", post.Find("blockquote").Text())
	assert.Equal(t, 2, post.Find("ul li").Length())

	contact := readDoc(t, filepath.Join(public, "contact", "index.html"))
	assert.Equal(t, 2, contact.Find("ol li").Length())

	// Outcomes are ordered by source path.
	var sources []string
	for _, p := range result.Pages {
		rel, _ := filepath.Rel(filepath.Join(root, "content"), p.Source)
		sources = append(sources, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"blog/glorfindel/index.md", "contact/index.md", "index.md"}, sources)
}

func TestRunner_Run_PageFailuresContinue(t *testing.T) {
	t.Parallel()

	root := site(t, map[string]string{
		"template.html":     page.DefaultTemplate,
		"content/good.md":   "# Good\n\nfine",
		"content/nohead.md": "no heading here",
		"content/broken.md": "# Broken\n\nan **unclosed run",
	})

	result, err := runner.New(markdown.NewConverter()).Run(context.Background(), defaultOptions(root))
	require.NoError(t, err)

	assert.True(t, result.HasFailures())
	assert.Equal(t, 3, result.Stats.PagesDiscovered)
	assert.Equal(t, 1, result.Stats.PagesGenerated)
	assert.Equal(t, 2, result.Stats.PagesFailed)

	failed := result.Failed()
	require.Len(t, failed, 2)
	assert.True(t, strings.HasSuffix(failed[0].Source, "broken.md"))
	var blockErr *markdown.BlockError
	assert.True(t, errors.As(failed[0].Error, &blockErr))
	assert.ErrorIs(t, failed[1].Error, page.ErrMissingHeading)

	assert.FileExists(t, filepath.Join(root, "public", "good.html"))
	assert.NoFileExists(t, filepath.Join(root, "public", "nohead.html"))
}

// syncBuffer is a bytes.Buffer safe for the runner's concurrent loggers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunner_Run_LogsPageSource(t *testing.T) {
	t.Parallel()

	root := site(t, map[string]string{
		"template.html":     page.DefaultTemplate,
		"content/good.md":   "# Good",
		"content/broken.md": "# Broken\n\nan _unclosed run",
	})

	var logs syncBuffer
	ctx := logging.WithLogger(context.Background(), logging.NewWriter(&logs, "debug"))

	_, err := runner.New(markdown.NewConverter()).Run(ctx, defaultOptions(root))
	require.NoError(t, err)

	var failedLine, generatedLine string
	for _, line := range strings.Split(logs.String(), "\n") {
		switch {
		case strings.Contains(line, "page failed"):
			failedLine = line
		case strings.Contains(line, "generated page"):
			generatedLine = line
		}
	}

	assert.Contains(t, failedLine, logging.FieldSource+"="+filepath.Join(root, "content", "broken.md"))
	assert.Contains(t, failedLine, logging.FieldError+"=")
	assert.Contains(t, generatedLine, logging.FieldSource+"="+filepath.Join(root, "content", "good.md"))
	assert.Contains(t, generatedLine, logging.FieldWritten+"=true")
}

func TestRunner_Run_Clean(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"template.html":     page.DefaultTemplate,
		"content/index.md":  "# Home",
		"public/stale.html": "old",
	}

	t.Run("removes stale output", func(t *testing.T) {
		t.Parallel()

		root := site(t, files)
		_, err := runner.New(markdown.NewConverter()).Run(context.Background(), defaultOptions(root))
		require.NoError(t, err)
		assert.NoFileExists(t, filepath.Join(root, "public", "stale.html"))
		assert.FileExists(t, filepath.Join(root, "public", "index.html"))
	})

	t.Run("keeps output without clean", func(t *testing.T) {
		t.Parallel()

		root := site(t, files)
		opts := defaultOptions(root)
		opts.Clean = false

		_, err := runner.New(markdown.NewConverter()).Run(context.Background(), opts)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(root, "public", "stale.html"))
	})
}

func TestRunner_Run_Incremental(t *testing.T) {
	t.Parallel()

	root := site(t, map[string]string{
		"template.html": page.DefaultTemplate,
		"content/a.md":  "# A",
		"content/b.md":  "# B",
	})

	opts := defaultOptions(root)
	opts.Clean = false
	r := runner.New(markdown.NewConverter())

	_, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "b.md"), []byte("# B2"), 0644))

	result, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.PagesGenerated)
	assert.Equal(t, 1, result.Stats.PagesUnchanged)
}

func TestRunner_Run_Jobs(t *testing.T) {
	t.Parallel()

	files := map[string]string{"template.html": page.DefaultTemplate}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["content/"+name+".md"] = "# " + name
	}

	for _, jobs := range []int{0, 1, 3, 100} {
		root := site(t, files)
		opts := defaultOptions(root)
		opts.Jobs = jobs

		conv := &countingConverter{inner: markdown.NewConverter()}
		result, err := runner.New(conv).Run(context.Background(), opts)
		require.NoError(t, err, "jobs=%d", jobs)
		assert.Equal(t, 8, result.Stats.PagesGenerated, "jobs=%d", jobs)
		assert.Equal(t, int64(8), conv.calls.Load(), "jobs=%d", jobs)
	}
}

func TestRunner_Run_SetupErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		root := site(t, map[string]string{"content/index.md": "# Home"})
		_, err := runner.New(markdown.NewConverter()).Run(context.Background(), defaultOptions(root))
		assert.Error(t, err)
	})

	t.Run("missing content", func(t *testing.T) {
		t.Parallel()

		root := site(t, map[string]string{"template.html": page.DefaultTemplate})
		_, err := runner.New(markdown.NewConverter()).Run(context.Background(), defaultOptions(root))
		assert.Error(t, err)
	})

	t.Run("missing static is skipped", func(t *testing.T) {
		t.Parallel()

		root := site(t, map[string]string{
			"template.html":    page.DefaultTemplate,
			"content/index.md": "# Home",
		})
		result, err := runner.New(markdown.NewConverter()).Run(context.Background(), defaultOptions(root))
		require.NoError(t, err)
		assert.Zero(t, result.Stats.StaticFiles)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		root := site(t, map[string]string{
			"template.html":    page.DefaultTemplate,
			"content/index.md": "# Home",
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.New(markdown.NewConverter()).Run(ctx, defaultOptions(root))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResult_NilSafe(t *testing.T) {
	t.Parallel()

	var r *runner.Result
	assert.False(t, r.HasFailures())
	assert.Nil(t, r.Failed())
}
