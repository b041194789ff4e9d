package cli

import (
	"errors"

	"github.com/yaklabco/mdsite/internal/configloader"
	"github.com/yaklabco/mdsite/pkg/fsutil"
)

// Exit codes for mdsite.
const (
	// ExitSuccess indicates the command completed and every page was built.
	ExitSuccess = 0

	// ExitBuildFailed indicates at least one page failed, or the build
	// could not run.
	ExitBuildFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrBuildFailed is returned when one or more pages failed to build.
	// The failures have already been reported.
	ErrBuildFailed = errors.New("build failed")

	// ErrInvalidUsage marks command-line usage errors.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrConfig marks configuration load and validation errors.
	ErrConfig = errors.New("failed to load configuration")
)

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	var validationErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrNotDirectory):
		return ExitIOError
	default:
		return ExitBuildFailed
	}
}
