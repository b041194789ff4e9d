package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdsite/internal/configloader"
	"github.com/yaklabco/mdsite/pkg/fsutil"
)

func TestDebounce_CoalescesBursts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string)
	var mu sync.Mutex
	var calls []string

	done := make(chan error, 1)
	go func() {
		done <- debounce(ctx, changes, 50*time.Millisecond, func(path string) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, path)
			return nil
		})
	}()

	for _, path := range []string{"a.md", "b.md", "c.md"} {
		changes <- path
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"c.md"}, calls)
}

func TestDebounce_StopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	changes := make(chan string, 1)
	changes <- "x.md"

	err := debounce(context.Background(), changes, time.Millisecond, func(string) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestSiteWatcher_Relevant(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/site")
	w := &siteWatcher{
		roots:    []string{filepath.Join(root, "content"), filepath.Join(root, "static")},
		template: filepath.Join(root, "template.html"),
		output:   filepath.Join(root, "content", "public"),
	}

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{name: "content write", path: "content/index.md", op: fsnotify.Write, want: true},
		{name: "nested create", path: "content/blog/new.md", op: fsnotify.Create, want: true},
		{name: "static remove", path: "static/index.css", op: fsnotify.Remove, want: true},
		{name: "template", path: "template.html", op: fsnotify.Write, want: true},
		{name: "chmod only", path: "content/index.md", op: fsnotify.Chmod, want: false},
		{name: "hidden file", path: "content/.index.md.swp", op: fsnotify.Write, want: false},
		{name: "editor backup", path: "content/index.md~", op: fsnotify.Create, want: false},
		{name: "output inside content", path: "content/public/index.html", op: fsnotify.Write, want: false},
		{name: "other file beside template", path: "notes.txt", op: fsnotify.Write, want: false},
		{name: "sibling with root prefix", path: "content-old/x.md", op: fsnotify.Write, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event := fsnotify.Event{Name: filepath.Join(root, filepath.FromSlash(tt.path)), Op: tt.op}
			assert.Equal(t, tt.want, w.Relevant(event))
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var prompt strings.Builder
		got, err := confirm(strings.NewReader(tt.input), &prompt, "Overwrite?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Overwrite? [y/N] ", prompt.String())
	}
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"build failed", ErrBuildFailed, ExitBuildFailed},
		{"usage", ErrInvalidUsage, ExitInvalidUsage},
		{"config", errors.Join(ErrConfig, errors.New("bad")), ExitConfigError},
		{"validation", &configloader.ValidationError{Field: "jobs"}, ExitConfigError},
		{"not found", errors.Join(errors.New("read"), fsutil.ErrNotFound), ExitIOError},
		{"not a directory", fsutil.ErrNotDirectory, ExitIOError},
		{"other", errors.New("boom"), ExitBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}
