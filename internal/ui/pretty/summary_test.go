package pretty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdsite/internal/ui/pretty"
	"github.com/yaklabco/mdsite/pkg/runner"
)

func TestFormatSummary_Success(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		PagesDiscovered: 1200,
		PagesGenerated:  1200,
		PagesUnchanged:  3,
		StaticFiles:     4,
		StaticBytes:     1_200_000,
		Duration:        1234 * time.Millisecond,
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Pages found:       1,200")
	assert.Contains(t, result, "Unchanged:       3")
	assert.Contains(t, result, "Static size:       1.2 MB")
	assert.Contains(t, result, "Duration:          1.23s")
	assert.Contains(t, result, "Build succeeded")
	assert.NotContains(t, result, "Pages failed:")
}

func TestFormatSummary_WithFailures(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		PagesDiscovered: 5,
		PagesGenerated:  3,
		PagesFailed:     2,
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Pages failed:      2")
	assert.Contains(t, result, "Build completed with failures")
	assert.NotContains(t, result, "Static size:")
}

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "single page",
			stats: runner.Stats{PagesGenerated: 1},
			want:  "Built 1 page\n",
		},
		{
			name: "pages and static",
			stats: runner.Stats{
				PagesGenerated: 3,
				PagesUnchanged: 1,
				StaticFiles:    2,
				StaticBytes:    30,
				Duration:       12 * time.Millisecond,
			},
			want: "Built 3 pages (1 unchanged), copied 2 static files (30 B) in 12ms\n",
		},
		{
			name:  "failures",
			stats: runner.Stats{PagesGenerated: 2, PagesFailed: 1, StaticFiles: 1, StaticBytes: 2048},
			want:  "Built 2 pages, 1 failed, copied 1 static file (2.0 kB)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}
