package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/mdsite/pkg/fsutil"
)

// layout holds the absolute directories of a build.
type layout struct {
	workDir  string
	content  string
	static   string
	output   string
	template string
}

// resolveLayout makes every directory in opts absolute.
func resolveLayout(opts Options) (layout, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return layout{}, fmt.Errorf("resolve working directory: %w", err)
	}

	abs := func(p string) string {
		if p == "" {
			return ""
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		return filepath.Clean(p)
	}

	return layout{
		workDir:  workDir,
		content:  abs(opts.ContentDir),
		static:   abs(opts.StaticDir),
		output:   abs(opts.OutputDir),
		template: abs(opts.TemplatePath),
	}, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// Discover finds the Markdown sources under opts.ContentDir.
// It returns a deterministically sorted list of absolute file paths.
// Hidden entries, ignored paths and the output directory are skipped.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	dirs, err := resolveLayout(opts)
	if err != nil {
		return nil, err
	}

	if dirs.content == "" {
		return nil, fmt.Errorf("%w: content directory not set", fsutil.ErrNotFound)
	}

	info, err := os.Stat(dirs.content)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content directory: %w: %s", fsutil.ErrNotFound, dirs.content)
		}
		return nil, fmt.Errorf("stat content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory: %w: %s", fsutil.ErrNotDirectory, dirs.content)
	}

	ignore, err := CompileIgnore(opts.Ignore)
	if err != nil {
		return nil, err
	}

	walker := &walker{
		ctx:        ctx,
		root:       dirs.content,
		output:     dirs.output,
		extensions: opts.effectiveExtensions(),
		ignore:     ignore,
		follow:     opts.FollowSymlinks,
		visited:    make(map[string]struct{}),
	}

	files, err := walker.walk(dirs.content)
	if err != nil {
		return nil, err
	}

	// Deduplicate; symlinked directories can yield the same file twice.
	seen := make(map[string]struct{}, len(files))
	unique := files[:0]
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		unique = append(unique, f)
	}

	sort.Strings(unique)

	return unique, nil
}

// OutputPath maps a source file under contentDir to its page under
// outputDir, replacing the Markdown extension with ".html".
func OutputPath(contentDir, outputDir, source string) (string, error) {
	rel, err := filepath.Rel(contentDir, source)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", source, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", source, contentDir)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	return filepath.Join(outputDir, rel), nil
}

type walker struct {
	ctx        context.Context
	root       string
	output     string
	extensions []string
	ignore     *IgnoreMatcher
	follow     bool

	// visited holds the resolved path of every directory walked so far.
	// A symlink into one of them would revisit it, possibly forever.
	visited map[string]struct{}
}

// walk recursively walks dir and returns matching Markdown files.
func (w *walker) walk(dir string) ([]string, error) {
	var files []string

	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		realDir = dir
	}

	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		if walkErr != nil {
			// Handle permission errors gracefully.
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			relPath = path
		}

		if entry.IsDir() {
			if path != dir && (strings.HasPrefix(entry.Name(), ".") || path == w.output || w.ignore.MatchDir(relPath)) {
				return filepath.SkipDir
			}
			w.markVisited(realDir, dir, path)
			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // Intentionally skip broken symlinks
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // Intentionally skip inaccessible symlink targets
			}
			if info.IsDir() {
				if !w.follow || w.ignore.MatchDir(relPath) || w.seen(realPath) {
					return nil
				}
				// Walk the target, then map results back under the link so
				// output paths mirror the content tree.
				sub, err := w.walk(realPath)
				if err != nil {
					return err
				}
				for _, f := range sub {
					rel, err := filepath.Rel(realPath, f)
					if err != nil {
						continue
					}
					files = append(files, filepath.Join(path, rel))
				}
				return nil
			}
		}

		if w.matches(path, relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", dir, err)
	}

	return files, nil
}

// markVisited records path, a directory below dir, by its resolved location.
func (w *walker) markVisited(realDir, dir, path string) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return
	}
	w.visited[filepath.Join(realDir, rel)] = struct{}{}
}

func (w *walker) seen(realPath string) bool {
	_, ok := w.visited[realPath]
	return ok
}

func (w *walker) matches(path, relPath string) bool {
	if !hasMatchingExtension(path, w.extensions) {
		return false
	}
	return !w.ignore.Match(relPath)
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// IgnoreMatcher matches content-relative paths against ignore globs.
// Patterns use "/" as the separator: "*" stays within one path segment
// and "**" spans segments. A pattern without "/" also matches the base name.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	glob     glob.Glob
	baseOnly bool
}

// CompileIgnore compiles ignore patterns, failing on the first invalid one.
func CompileIgnore(patterns []string) (*IgnoreMatcher, error) {
	matcher := &IgnoreMatcher{patterns: make([]ignorePattern, 0, len(patterns))}
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		matcher.patterns = append(matcher.patterns, ignorePattern{
			glob:     compiled,
			baseOnly: !strings.Contains(pattern, "/"),
		})
	}
	return matcher, nil
}

// Match reports whether relPath is ignored.
func (m *IgnoreMatcher) Match(relPath string) bool {
	if m == nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	base := relPath[strings.LastIndex(relPath, "/")+1:]
	for _, p := range m.patterns {
		if p.glob.Match(relPath) || (p.baseOnly && p.glob.Match(base)) {
			return true
		}
	}
	return false
}

// MatchDir reports whether the directory at relPath is ignored, either
// directly or through a "dir/**" pattern.
func (m *IgnoreMatcher) MatchDir(relPath string) bool {
	return m.Match(relPath) || m.Match(relPath+"/")
}
