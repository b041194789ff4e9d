package runner

import (
	"time"

	"github.com/samber/lo"
)

// PageOutcome records what happened to one source file.
type PageOutcome struct {
	// Source is the absolute path of the Markdown file.
	Source string

	// Output is the absolute path of the generated page.
	Output string

	// Written is false when an identical page already existed.
	Written bool

	// Error is set if the page could not be generated.
	Error error
}

// Stats captures aggregate information about a build.
type Stats struct {
	// PagesDiscovered is the number of Markdown sources found.
	PagesDiscovered int

	// PagesGenerated is the number of pages produced without error,
	// including those whose output was already up to date.
	PagesGenerated int

	// PagesUnchanged counts generated pages whose file was left as is.
	PagesUnchanged int

	// PagesFailed is the number of sources that could not be converted.
	PagesFailed int

	// StaticFiles is the number of files mirrored from the static directory.
	StaticFiles int

	// StaticBytes is the total size of the mirrored static files.
	StaticBytes int64

	// Duration is the wall-clock time of the build.
	Duration time.Duration
}

// Result is the overall build result.
type Result struct {
	// Pages contains the outcome for each source, ordered by source path.
	Pages []PageOutcome

	// Stats contains aggregate statistics for the build.
	Stats Stats
}

// HasFailures reports whether any page failed to generate.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.PagesFailed > 0
}

// Failed returns the outcomes of pages that could not be generated.
func (r *Result) Failed() []PageOutcome {
	if r == nil {
		return nil
	}
	return lo.Filter(r.Pages, func(o PageOutcome, _ int) bool {
		return o.Error != nil
	})
}

// accumulate updates the result with a page outcome.
func (r *Result) accumulate(outcome PageOutcome) {
	r.Pages = append(r.Pages, outcome)

	if outcome.Error != nil {
		r.Stats.PagesFailed++
		return
	}

	r.Stats.PagesGenerated++
	if !outcome.Written {
		r.Stats.PagesUnchanged++
	}
}
