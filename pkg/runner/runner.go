package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/yaklabco/mdsite/internal/logging"
	"github.com/yaklabco/mdsite/pkg/fsutil"
	"github.com/yaklabco/mdsite/pkg/page"
)

// Runner builds a site using a page.Converter for the Markdown bodies.
type Runner struct {
	// Converter renders each page body. It must be safe for concurrent use.
	Converter page.Converter
}

// New creates a new Runner with the given converter.
func New(conv page.Converter) *Runner {
	return &Runner{Converter: conv}
}

// Run performs a full build:
//   - removes the output directory when opts.Clean is set
//   - mirrors the static directory into the output directory
//   - discovers Markdown sources and generates their pages concurrently
//
// A page that fails to generate is recorded in the result and the build
// continues. Setup failures (template, discovery, copying) abort the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	dirs, err := resolveLayout(opts)
	if err != nil {
		return nil, err
	}
	if dirs.output == "" {
		return nil, errors.New("output directory not set")
	}

	tmpl, err := page.LoadTemplate(ctx, dirs.template)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	if opts.Clean {
		logger.Debug("cleaning output directory", logging.FieldOutputDir, dirs.output)
		if err := fsutil.CleanDir(ctx, dirs.output); err != nil {
			return nil, fmt.Errorf("clean output: %w", err)
		}
	}

	if err := r.copyStatic(ctx, dirs, result); err != nil {
		return nil, err
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result.Pages = make([]PageOutcome, 0, len(files))
	result.Stats.PagesDiscovered = len(files)

	gen := page.NewGenerator(r.Converter, tmpl, opts.effectiveBasePath())
	outcomes := r.generate(ctx, gen, dirs, files, opts.Jobs)

	// Build result in deterministic order.
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	result.Stats.Duration = time.Since(start)

	if ctx.Err() != nil {
		return result, fmt.Errorf("build cancelled: %w", ctx.Err())
	}

	return result, nil
}

// copyStatic mirrors the static directory, skipping it when absent.
func (r *Runner) copyStatic(ctx context.Context, dirs layout, result *Result) error {
	logger := logging.FromContext(ctx)

	if dirs.static == "" {
		return nil
	}
	if _, err := os.Stat(dirs.static); os.IsNotExist(err) {
		logger.Debug("static directory not found, skipping", logging.FieldStaticDir, dirs.static)
		return nil
	}

	stats, err := fsutil.CopyTree(ctx, dirs.static, dirs.output, func(src, dst string, size int64) {
		logger.Debug("copied static file",
			logging.FieldSource, src,
			logging.FieldOutput, dst,
			logging.FieldSize, size)
	})
	if err != nil {
		return fmt.Errorf("copy static files: %w", err)
	}

	result.Stats.StaticFiles = stats.Files
	result.Stats.StaticBytes = stats.Bytes
	return nil
}

// generate runs the worker pool and returns outcomes keyed by source path.
func (r *Runner) generate(
	ctx context.Context,
	gen *page.Generator,
	dirs layout,
	files []string,
	jobs int,
) map[string]PageOutcome {
	outcomes := make(map[string]PageOutcome, len(files))
	if len(files) == 0 {
		return outcomes
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than files.
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan PageOutcome)

	var wg sync.WaitGroup

	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, gen, dirs, workCh, outCh)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	for outcome := range outCh {
		outcomes[outcome.Source] = outcome
	}

	return outcomes
}

// worker generates pages from workCh and sends outcomes to outCh.
func worker(
	ctx context.Context,
	gen *page.Generator,
	dirs layout,
	workCh <-chan string,
	outCh chan<- PageOutcome,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pageCtx := logging.WithFields(ctx, logging.FieldSource, path)
		logger := logging.FromContext(pageCtx)
		outcome := PageOutcome{Source: path}

		dest, err := OutputPath(dirs.content, dirs.output, path)
		if err == nil {
			outcome.Output = dest
			outcome.Written, err = gen.GenerateFile(pageCtx, path, dest)
		}

		if err != nil {
			outcome.Error = err
			logger.Error("page failed", logging.FieldError, err)
		} else {
			logger.Debug("generated page",
				logging.FieldOutput, dest,
				logging.FieldWritten, outcome.Written)
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
