// Package config defines the site configuration types for mdsite.
// These types are pure data structures; loading and precedence live in
// internal/configloader.
package config

// Default values for a new site.
const (
	DefaultContentDir = "content"
	DefaultStaticDir  = "static"
	DefaultOutputDir  = "public"
	DefaultTemplate   = "template.html"
	DefaultBasePath   = "/"
)

// Config is the root configuration structure for mdsite.
type Config struct {
	// ContentDir holds the Markdown sources.
	ContentDir string `yaml:"content_dir"`

	// StaticDir is copied verbatim into OutputDir.
	StaticDir string `yaml:"static_dir"`

	// OutputDir receives the generated site.
	OutputDir string `yaml:"output_dir"`

	// Template is the path of the HTML page template.
	Template string `yaml:"template"`

	// BasePath is the URL prefix the site is served under. It must start
	// and end with "/".
	BasePath string `yaml:"base_path"`

	// Ignore contains glob patterns, relative to ContentDir, for sources
	// to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	// Clean removes OutputDir before each build. Nil means true.
	Clean *bool `yaml:"clean,omitempty"`

	// FollowSymlinks traverses symlinked directories under ContentDir.
	// Nil means false.
	FollowSymlinks *bool `yaml:"follow_symlinks,omitempty"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ContentDir: DefaultContentDir,
		StaticDir:  DefaultStaticDir,
		OutputDir:  DefaultOutputDir,
		Template:   DefaultTemplate,
		BasePath:   DefaultBasePath,
		Ignore:     nil,
		Clean:      nil,

		FollowSymlinks: nil,
		Jobs:           0, // 0 means use GOMAXPROCS
	}
}

// ShouldClean reports whether the output directory is removed before a build.
func (c *Config) ShouldClean() bool {
	if c == nil || c.Clean == nil {
		return true
	}
	return *c.Clean
}

// ShouldFollowSymlinks reports whether discovery descends into
// symlinked directories.
func (c *Config) ShouldFollowSymlinks() bool {
	return c != nil && c.FollowSymlinks != nil && *c.FollowSymlinks
}

// Bool returns a pointer to b, for optional fields such as Clean.
func Bool(b bool) *bool {
	return &b
}
