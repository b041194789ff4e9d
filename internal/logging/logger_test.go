package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdsite/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"Warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.InfoLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}

	for name, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(name), "level %q", name)
	}
}

func TestNewWriter_BuildFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")

	logger.Info("generated page", logging.FieldSource, "content/index.md")
	assert.Empty(t, buf.String(), "info is below warn")

	logger.Warn("static directory not found",
		logging.FieldStaticDir, "static",
		logging.FieldPagesDiscovered, 3)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "WARN"), "got %q", out)
	assert.Contains(t, out, "static_dir=static")
	assert.Contains(t, out, "pages_discovered=3")
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewInteractive(&buf)
	require.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	logger.Info("created configuration file", logging.FieldPath, ".mdsite.yml")
	logger.Warn("overwriting existing file", logging.FieldPath, ".mdsite.yml")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "created configuration file"),
		"info has no level prefix: %q", lines[0])
	assert.Contains(t, lines[0], "path=.mdsite.yml")
	assert.True(t, strings.HasPrefix(lines[1], "WARN"), "warnings keep their prefix: %q", lines[1])
}

// The tests below swap the process-wide logger and must not run in parallel.

func TestSetLevel(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New("info"))

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())

	logging.SetLevel("nonsense")
	assert.Equal(t, log.InfoLevel, logging.Default().GetLevel())
}

func TestSetDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	replacement := logging.New("error")
	logging.SetDefault(replacement)
	assert.Same(t, replacement, logging.Default())
}
