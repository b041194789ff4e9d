package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdsite/internal/configloader"
	"github.com/yaklabco/mdsite/internal/logging"
	"github.com/yaklabco/mdsite/internal/ui/pretty"
	"github.com/yaklabco/mdsite/pkg/config"
	"github.com/yaklabco/mdsite/pkg/runner"
)

// siteFlags are the layout flags shared by build and watch. Unset flags
// leave the configured values alone.
type siteFlags struct {
	contentDir string
	staticDir  string
	outputDir  string
	template   string
	ignore     []string
	jobs       int
	noClean    bool
	follow     bool
	table      bool
	verbose    bool
}

func (f *siteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.contentDir, "content", "", "directory of Markdown sources (default \"content\")")
	cmd.Flags().StringVar(&f.staticDir, "static", "", "directory copied verbatim into the output (default \"static\")")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "directory receiving the site (default \"public\")")
	cmd.Flags().StringVar(&f.template, "template", "", "HTML page template (default \"template.html\")")
	cmd.Flags().StringSliceVar(&f.ignore, "ignore", nil, "glob patterns of sources to skip")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&f.noClean, "no-clean", false, "keep existing output instead of removing it first")
	cmd.Flags().BoolVar(&f.follow, "follow-symlinks", false, "descend into symlinked content directories")
	cmd.Flags().BoolVar(&f.table, "table", false, "list every page in a table")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print a detailed summary")
}

// cliConfig converts the flags, and an optional base path, into the
// highest-precedence configuration layer.
func (f *siteFlags) cliConfig(cmd *cobra.Command, basePath string) *config.Config {
	cfg := &config.Config{
		ContentDir: f.contentDir,
		StaticDir:  f.staticDir,
		OutputDir:  f.outputDir,
		Template:   f.template,
		BasePath:   basePath,
		Ignore:     f.ignore,
		Jobs:       f.jobs,
	}
	if cmd.Flags().Changed("no-clean") {
		cfg.Clean = config.Bool(!f.noClean)
	}
	if cmd.Flags().Changed("follow-symlinks") {
		cfg.FollowSymlinks = config.Bool(f.follow)
	}
	return cfg
}

// workingDir returns the directory given by --dir, or the process
// working directory.
func workingDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil || dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return abs, nil
}

// loadSiteConfig resolves the full configuration stack for cmd. It also
// returns the working directory relative paths are resolved against.
func loadSiteConfig(cmd *cobra.Command, cliCfg *config.Config) (*configloader.LoadResult, string, error) {
	logger := logging.Default()

	workDir, err := workingDir(cmd)
	if err != nil {
		return nil, "", err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(workDir, configPath)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", errors.Join(ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldConfig, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldContentDir, cfg.ContentDir,
		logging.FieldStaticDir, cfg.StaticDir,
		logging.FieldOutputDir, cfg.OutputDir,
		logging.FieldTemplate, cfg.Template,
		logging.FieldBasePath, cfg.BasePath,
		logging.FieldJobs, cfg.Jobs,
	)

	return loadResult, workDir, nil
}

// siteOptions loads the configuration and converts it to runner options.
func siteOptions(cmd *cobra.Command, cliCfg *config.Config) (runner.Options, error) {
	loaded, workDir, err := loadSiteConfig(cmd, cliCfg)
	if err != nil {
		return runner.Options{}, err
	}
	opts := runner.OptionsFromConfig(loaded.Config)
	opts.WorkingDir = workDir
	return opts, nil
}

// commandContext returns the command context carrying the default logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// reporter prints build results for a command.
type reporter struct {
	out          io.Writer
	styles       *pretty.Styles
	colorEnabled bool
	root         string
	table        bool
	verbose      bool
}

func newReporter(cmd *cobra.Command, root string, flags *siteFlags) *reporter {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	colorEnabled := pretty.IsColorEnabled(colorMode, out)
	return &reporter{
		out:          out,
		styles:       pretty.NewStyles(colorEnabled),
		colorEnabled: colorEnabled,
		root:         root,
		table:        flags.table,
		verbose:      flags.verbose,
	}
}

// Report writes the page table (if enabled), each failure and a summary.
func (r *reporter) Report(result *runner.Result) {
	if result == nil {
		return
	}

	if r.table {
		tf := pretty.NewTableFormatter(r.styles, r.colorEnabled, terminalWidth(r.out), r.root)
		fmt.Fprint(r.out, tf.FormatTable(result))
	}

	failed := result.Failed()
	for _, outcome := range failed {
		fmt.Fprint(r.out, r.styles.FormatFailure(r.display(outcome.Source), outcome))
	}
	if len(failed) > 0 {
		fmt.Fprintln(r.out)
	}

	if r.verbose {
		fmt.Fprint(r.out, r.styles.FormatSummary(result.Stats))
		return
	}
	fmt.Fprint(r.out, r.styles.FormatSummaryOneLine(result.Stats))
}

func (r *reporter) display(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
