// Package runner orchestrates a full site build: output cleanup, static
// mirroring and concurrent page generation.
package runner

import "github.com/yaklabco/mdsite/pkg/config"

// Options controls a site build. Relative directories are resolved
// against WorkingDir.
type Options struct {
	// WorkingDir is the base directory used to resolve relative paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// ContentDir holds the Markdown sources.
	ContentDir string

	// StaticDir is mirrored verbatim into OutputDir. A missing StaticDir
	// is skipped.
	StaticDir string

	// OutputDir receives the generated site.
	OutputDir string

	// TemplatePath is the HTML page template.
	TemplatePath string

	// BasePath is the URL prefix the site is served under.
	BasePath string

	// Ignore are glob patterns, relative to ContentDir, for sources to skip.
	Ignore []string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered Markdown. Defaults to [".md", ".markdown"] via DefaultExtensions().
	Extensions []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	// A link whose target is already on the walk is skipped.
	FollowSymlinks bool

	// Clean removes OutputDir before building.
	Clean bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int
}

// OptionsFromConfig builds Options from a resolved configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Options{
		ContentDir:   cfg.ContentDir,
		StaticDir:    cfg.StaticDir,
		OutputDir:    cfg.OutputDir,
		TemplatePath: cfg.Template,
		BasePath:     cfg.BasePath,
		Ignore:       append([]string(nil), cfg.Ignore...),
		Clean:        cfg.ShouldClean(),
		Jobs:         cfg.Jobs,

		FollowSymlinks: cfg.ShouldFollowSymlinks(),
	}
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectiveBasePath returns the base path, defaulting to "/".
func (o Options) effectiveBasePath() string {
	if o.BasePath == "" {
		return "/"
	}
	return o.BasePath
}
