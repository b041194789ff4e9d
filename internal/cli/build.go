package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsite/internal/logging"
	"github.com/yaklabco/mdsite/pkg/markdown"
	"github.com/yaklabco/mdsite/pkg/runner"
)

const buildLongDescription = `Build the site: remove the output directory, copy the static
directory into it, then render every Markdown file in the content
directory into an HTML page.

The optional base path is the URL prefix the site is served under.
Root-relative links and image sources are rewritten to start with it.
It must begin and end with "/".

Examples:
  mdsite build                  # Build with .mdsite.yml or defaults
  mdsite build /fanclub/        # Site served below /fanclub/
  mdsite build --no-clean       # Keep unchanged pages in place
  mdsite build --table -v       # List every page with a detailed summary`

func newBuildCommand() *cobra.Command {
	flags := &siteFlags{}

	cmd := &cobra.Command{
		Use:   "build [base-path]",
		Short: "Build the site",
		Long:  buildLongDescription,
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var basePath string
			if len(args) > 0 {
				basePath = args[0]
			}
			return runBuild(cmd, flags, basePath)
		},
	}

	flags.register(cmd)

	return cmd
}

func runBuild(cmd *cobra.Command, flags *siteFlags, basePath string) error {
	opts, err := siteOptions(cmd, flags.cliConfig(cmd, basePath))
	if err != nil {
		return err
	}

	result, err := buildSite(cmd, opts)
	newReporter(cmd, opts.WorkingDir, flags).Report(result)
	if err != nil {
		return err
	}

	if result.HasFailures() {
		return ErrBuildFailed
	}
	return nil
}

// buildSite runs one build with the default Markdown converter.
func buildSite(cmd *cobra.Command, opts runner.Options) (*runner.Result, error) {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	logger.Debug("starting build",
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldBasePath, opts.BasePath,
		logging.FieldJobs, opts.Jobs,
	)

	result, err := runner.New(markdown.NewConverter()).Run(ctx, opts)
	if err != nil {
		return result, errors.Join(errors.New("build run failed"), err)
	}

	logger.Debug("build finished",
		logging.FieldPagesGenerated, result.Stats.PagesGenerated,
		logging.FieldPagesFailed, result.Stats.PagesFailed,
		logging.FieldDuration, result.Stats.Duration,
	)
	return result, nil
}
