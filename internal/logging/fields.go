// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldSource     = "source"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"
	FieldEvent      = "event"

	// Build fields.
	FieldContentDir = "content_dir"
	FieldStaticDir  = "static_dir"
	FieldOutputDir  = "output_dir"
	FieldTemplate   = "template"
	FieldBasePath   = "base_path"
	FieldJobs       = "jobs"
	FieldSize       = "size"
	FieldWritten    = "written"

	// Statistics fields.
	FieldPagesDiscovered = "pages_discovered"
	FieldPagesGenerated  = "pages_generated"
	FieldPagesUnchanged  = "pages_unchanged"
	FieldPagesFailed     = "pages_failed"
	FieldStaticFiles     = "static_files"
	FieldStaticBytes     = "static_bytes"
	FieldDuration        = "duration"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
