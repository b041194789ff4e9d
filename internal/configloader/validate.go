package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/mdsite/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "base_path").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) errorf(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *ValidationResult) warnf(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a fully resolved configuration for errors and warnings.
// Every directory setting must be present.
func Validate(cfg *config.Config) *ValidationResult {
	return validate(cfg, true)
}

// ValidateWithFile validates the settings present in a single config file
// and includes the file path in findings. Unset fields are not reported.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := validate(cfg, false)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

func validate(cfg *config.Config, complete bool) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if complete {
		required := []struct {
			field string
			value string
		}{
			{"content_dir", cfg.ContentDir},
			{"output_dir", cfg.OutputDir},
			{"template", cfg.Template},
			{"base_path", cfg.BasePath},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				result.errorf(r.field, r.value, "must not be empty")
			}
		}
	}

	if cfg.BasePath != "" && !IsValidBasePath(cfg.BasePath) {
		result.errorf("base_path", cfg.BasePath, "invalid base path %q; must start and end with \"/\"", cfg.BasePath)
	}

	if cfg.Jobs < 0 {
		result.errorf("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	validateIgnorePatterns(cfg, result)

	if complete {
		validateLayout(cfg, result)
	}

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if strings.TrimSpace(pattern) == "" {
			result.warnf(fmt.Sprintf("ignore[%d]", i), pattern, "empty pattern is ignored")
			continue
		}
		if _, err := glob.Compile(filepath.ToSlash(pattern), '/'); err != nil {
			result.errorf(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// validateLayout checks that building cannot overwrite or delete sources.
func validateLayout(cfg *config.Config, result *ValidationResult) {
	output := filepath.Clean(cfg.OutputDir)

	sources := []struct {
		field string
		dir   string
	}{
		{"content_dir", cfg.ContentDir},
		{"static_dir", cfg.StaticDir},
	}

	for _, src := range sources {
		if src.dir == "" {
			continue
		}
		dir := filepath.Clean(src.dir)
		switch {
		case dir == output:
			result.errorf("output_dir", cfg.OutputDir, "must differ from %s %q", src.field, src.dir)
		case contains(output, dir):
			result.errorf("output_dir", cfg.OutputDir, "must not contain %s %q", src.field, src.dir)
		case src.field == "static_dir" && contains(dir, output):
			result.errorf("output_dir", cfg.OutputDir, "must not lie inside %s %q", src.field, src.dir)
		}
	}

	if cfg.StaticDir == "" {
		result.warnf("static_dir", "", "no static directory; only pages will be generated")
	}
}

// contains reports whether dir lies below parent. Both are cleaned paths
// relative to the same base.
func contains(parent, dir string) bool {
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsValidBasePath reports whether path is usable as a site base path.
func IsValidBasePath(path string) bool {
	return strings.HasPrefix(path, "/") && strings.HasSuffix(path, "/")
}
