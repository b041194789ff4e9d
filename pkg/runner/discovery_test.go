package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaklabco/mdsite/pkg/config"
	"github.com/yaklabco/mdsite/pkg/fsutil"
	"github.com/yaklabco/mdsite/pkg/runner"
)

func mkfiles(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("# "+f+"\n"), 0644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiscover_ContentTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir,
		"content/index.md",
		"content/blog/glorfindel/index.md",
		"content/blog/tom/index.markdown",
		"content/contact/index.MD",
		"content/notes.txt",
		"content/.hidden.md",
		"content/.git/config.md",
	)

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		ContentDir: "content",
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := relAll(t, filepath.Join(dir, "content"), files)
	want := []string{
		"blog/glorfindel/index.md",
		"blog/tom/index.markdown",
		"contact/index.MD",
		"index.md",
	}
	if !equalStrings(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_Ignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir,
		"index.md",
		"drafts/wip.md",
		"drafts/deep/more.md",
		"blog/post.md",
		"blog/post.draft.md",
		"README.md",
	)

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		ContentDir: ".",
		Ignore:     []string{"drafts/**", "*.draft.md", "README.md"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := relAll(t, dir, files)
	want := []string{"blog/post.md", "index.md"}
	if !equalStrings(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_SkipsOutputDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir, "index.md", "public/stale.md")

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		ContentDir: ".",
		OutputDir:  "public",
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := relAll(t, dir, files)
	if !equalStrings(got, []string{"index.md"}) {
		t.Errorf("Discover() = %v, want [index.md]", got)
	}
}

func TestDiscover_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir, "a.md", "b.mdx")

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		ContentDir: ".",
		Extensions: []string{".mdx"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := relAll(t, dir, files)
	if !equalStrings(got, []string{"b.mdx"}) {
		t.Errorf("Discover() = %v, want [b.mdx]", got)
	}
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir, "content/index.md", "shared/guide.md")

	link := filepath.Join(dir, "content", "guides")
	if err := os.Symlink(filepath.Join(dir, "shared"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	opts := runner.Options{WorkingDir: dir, ContentDir: "content"}

	files, err := runner.Discover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := relAll(t, filepath.Join(dir, "content"), files); !equalStrings(got, []string{"index.md"}) {
		t.Errorf("without follow: %v", got)
	}

	opts.FollowSymlinks = true
	files, err = runner.Discover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := []string{"guides/guide.md", "index.md"}
	if got := relAll(t, filepath.Join(dir, "content"), files); !equalStrings(got, want) {
		t.Errorf("with follow: %v, want %v", got, want)
	}
}

func TestDiscover_SymlinkCycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir, "content/index.md", "content/blog/post.md")

	for link, target := range map[string]string{
		"content/loop":      "content",
		"content/blog/back": "content/blog",
	} {
		if err := os.Symlink(filepath.Join(dir, target), filepath.Join(dir, link)); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	files, err := runner.Discover(ctx, runner.Options{
		WorkingDir:     dir,
		ContentDir:     "content",
		FollowSymlinks: true,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{"blog/post.md", "index.md"}
	if got := relAll(t, filepath.Join(dir, "content"), files); !equalStrings(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestOptionsFromConfig_FollowSymlinks(t *testing.T) {
	t.Parallel()

	if runner.OptionsFromConfig(config.NewConfig()).FollowSymlinks {
		t.Error("symlinks followed by default")
	}

	cfg := config.NewConfig()
	cfg.FollowSymlinks = config.Bool(true)
	if !runner.OptionsFromConfig(cfg).FollowSymlinks {
		t.Error("follow_symlinks not carried into options")
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkfiles(t, dir, "file.md")

	tests := []struct {
		name    string
		opts    runner.Options
		wantErr error
	}{
		{
			name:    "missing content dir",
			opts:    runner.Options{WorkingDir: dir, ContentDir: "absent"},
			wantErr: fsutil.ErrNotFound,
		},
		{
			name:    "content is a file",
			opts:    runner.Options{WorkingDir: dir, ContentDir: "file.md"},
			wantErr: fsutil.ErrNotDirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := runner.Discover(context.Background(), tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Discover() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("invalid ignore pattern", func(t *testing.T) {
		t.Parallel()

		_, err := runner.Discover(context.Background(), runner.Options{
			WorkingDir: dir,
			ContentDir: ".",
			Ignore:     []string{"[unclosed"},
		})
		if err == nil {
			t.Error("expected error for invalid pattern")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir, ContentDir: "."})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	content := filepath.FromSlash("/site/content")
	output := filepath.FromSlash("/site/public")

	tests := []struct {
		source string
		want   string
	}{
		{"/site/content/index.md", "/site/public/index.html"},
		{"/site/content/blog/tom/index.md", "/site/public/blog/tom/index.html"},
		{"/site/content/about.markdown", "/site/public/about.html"},
	}

	for _, tt := range tests {
		got, err := runner.OutputPath(content, output, filepath.FromSlash(tt.source))
		if err != nil {
			t.Fatalf("OutputPath(%s) error = %v", tt.source, err)
		}
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%s) = %s, want %s", tt.source, got, tt.want)
		}
	}

	if _, err := runner.OutputPath(content, output, filepath.FromSlash("/elsewhere/x.md")); err == nil {
		t.Error("expected error for source outside content dir")
	}
}

func TestIgnoreMatcher(t *testing.T) {
	t.Parallel()

	matcher, err := runner.CompileIgnore([]string{"drafts/**", "*.tmp.md", "  ", "blog/*/private.md"})
	if err != nil {
		t.Fatalf("CompileIgnore() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"drafts/a.md", true},
		{"drafts/x/y.md", true},
		{"notes.tmp.md", true},
		{"deep/dir/notes.tmp.md", true},
		{"blog/2024/private.md", true},
		{"blog/2024/x/private.md", false},
		{"index.md", false},
	}

	for _, tt := range tests {
		if got := matcher.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if !matcher.MatchDir("drafts") {
		t.Error("MatchDir(drafts) = false, want true")
	}

	var nilMatcher *runner.IgnoreMatcher
	if nilMatcher.Match("anything") {
		t.Error("nil matcher should match nothing")
	}
}
