package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdsite/internal/logging"
	"github.com/yaklabco/mdsite/pkg/runner"
)

const defaultDebounce = 200 * time.Millisecond

var errWatcherClosed = errors.New("file watcher closed")

type watchFlags struct {
	siteFlags
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [base-path]",
		Short: "Build the site and rebuild on changes",
		Long: `Build the site, then watch the content and static directories and the
template, rebuilding after each burst of changes. Stop with Ctrl-C.

Build flags apply to every rebuild. A failed rebuild is reported and
watching continues.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var basePath string
			if len(args) > 0 {
				basePath = args[0]
			}
			return runWatch(cmd, flags, basePath)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&flags.debounce, "debounce", defaultDebounce,
		"quiet period after a change before rebuilding")

	return cmd
}

func runWatch(cmd *cobra.Command, flags *watchFlags, basePath string) error {
	opts, err := siteOptions(cmd, flags.cliConfig(cmd, basePath))
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)
	rep := newReporter(cmd, opts.WorkingDir, &flags.siteFlags)

	watcher, err := newSiteWatcher(opts)
	if err != nil {
		return err
	}
	defer watcher.Close()

	rebuild := func() error {
		result, err := buildSite(cmd, opts)
		rep.Report(result)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Error("build failed", logging.FieldError, err)
		}
		return nil
	}

	if err := rebuild(); err != nil {
		logger.Info("stopped before the first build finished")
		return nil
	}
	logger.Info("watching for changes", logging.FieldPath, watcher.roots)

	changes := make(chan string, 1)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watcher.Run(groupCtx, changes)
	})
	group.Go(func() error {
		return debounce(groupCtx, changes, flags.debounce, func(path string) error {
			logger.Info("change detected, rebuilding", logging.FieldPath, path)
			return rebuild()
		})
	})

	err = group.Wait()
	if ctx.Err() != nil {
		logger.Info("stopped watching")
		return nil
	}
	return err
}

// debounce calls fn with the latest path once no change has arrived on
// changes for delay. It returns when ctx is done or fn fails.
func debounce(ctx context.Context, changes <-chan string, delay time.Duration, fn func(path string) error) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-changes:
			last = path
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := fn(last); err != nil {
				return err
			}
		}
	}
}

// siteWatcher watches the source directories of a site for changes.
type siteWatcher struct {
	fs       *fsnotify.Watcher
	roots    []string
	template string
	output   string
}

func newSiteWatcher(opts runner.Options) (*siteWatcher, error) {
	abs := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(opts.WorkingDir, path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &siteWatcher{
		fs:       fsw,
		template: abs(opts.TemplatePath),
		output:   abs(opts.OutputDir),
	}

	for _, dir := range []string{abs(opts.ContentDir), abs(opts.StaticDir)} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		w.roots = append(w.roots, dir)
	}

	if w.template != "" && !w.underRoot(w.template) {
		if err := fsw.Add(filepath.Dir(w.template)); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch template: %w", err)
		}
	}

	return w, nil
}

// Close stops watching.
func (w *siteWatcher) Close() error {
	return w.fs.Close()
}

// addTree watches dir and every directory below it, except hidden
// directories and the output directory.
func (w *siteWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && (isHidden(path) || w.inOutput(path)) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run forwards relevant file events to changes until ctx is done. New
// directories under a root are watched as they appear.
func (w *siteWatcher) Run(ctx context.Context, changes chan<- string) error {
	logger := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return errWatcherClosed
			}
			if !w.Relevant(event) {
				continue
			}
			logger.Debug("file event", logging.FieldEvent, event.Op.String(), logging.FieldPath, event.Name)

			if event.Has(fsnotify.Create) && w.underRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Warn("cannot watch new directory", logging.FieldPath, event.Name, logging.FieldError, err)
					}
				}
			}

			select {
			case changes <- event.Name:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errWatcherClosed
			}
			logger.Warn("file watcher error", logging.FieldError, err)
		}
	}
}

// Relevant reports whether event should trigger a rebuild.
func (w *siteWatcher) Relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if isHidden(event.Name) || strings.HasSuffix(event.Name, "~") {
		return false
	}
	if w.inOutput(event.Name) {
		return false
	}
	if w.underRoot(event.Name) {
		return true
	}
	return event.Name == w.template
}

func (w *siteWatcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if within(root, path) {
			return true
		}
	}
	return false
}

func (w *siteWatcher) inOutput(path string) bool {
	return w.output != "" && within(w.output, path)
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".")
}
