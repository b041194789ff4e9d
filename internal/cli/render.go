package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsite/internal/ui/pretty"
	"github.com/yaklabco/mdsite/pkg/config"
	"github.com/yaklabco/mdsite/pkg/fsutil"
	"github.com/yaklabco/mdsite/pkg/markdown"
	"github.com/yaklabco/mdsite/pkg/page"
	"github.com/yaklabco/mdsite/pkg/runner"
)

type renderFlags struct {
	page     bool
	template string
	basePath string
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render one Markdown file to HTML",
		Long: `Render a single Markdown file, or standard input, and print the HTML.

By default only the body fragment is printed. With --page the body is
placed in the configured template with the document title, and links
are rewritten for the base path.

Examples:
  mdsite render content/index.md
  echo "# Hi" | mdsite render --page`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.page, "page", false, "render a complete page using the template")
	cmd.Flags().StringVar(&flags.template, "template", "", "HTML page template (with --page)")
	cmd.Flags().StringVar(&flags.basePath, "base-path", "", "URL prefix for links (with --page)")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	ctx := commandContext(cmd)

	name := "<stdin>"
	var src []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		name = args[0]
		path := name
		if !filepath.IsAbs(path) {
			workDir, err := workingDir(cmd)
			if err != nil {
				return err
			}
			path = filepath.Join(workDir, path)
		}
		src, _, err = fsutil.ReadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
	}

	conv := markdown.NewConverter()

	var out []byte
	if flags.page {
		loaded, workDir, err := loadSiteConfig(cmd, &config.Config{
			Template: flags.template,
			BasePath: flags.basePath,
		})
		if err != nil {
			return err
		}
		cfg := loaded.Config
		tmplPath := cfg.Template
		if !filepath.IsAbs(tmplPath) {
			tmplPath = filepath.Join(workDir, tmplPath)
		}
		tmpl, err := page.LoadTemplate(ctx, tmplPath)
		if err != nil {
			return err
		}
		out, err = page.NewGenerator(conv, tmpl, cfg.BasePath).Generate(ctx, src)
		if err != nil {
			return renderFailure(cmd, name, err)
		}
	} else {
		html, err := conv.Convert(ctx, src)
		if err != nil {
			return renderFailure(cmd, name, err)
		}
		out = []byte(html + "\n")
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// renderFailure reports a document error the way build reports a failed
// page. Other errors are returned as they are.
func renderFailure(cmd *cobra.Command, name string, err error) error {
	var blockErr *markdown.BlockError
	if !errors.As(err, &blockErr) && !errors.Is(err, page.ErrMissingHeading) {
		return err
	}

	colorMode, _ := cmd.Flags().GetString("color")
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.ErrOrStderr()))
	fmt.Fprint(cmd.ErrOrStderr(), styles.FormatFailure(name, runner.PageOutcome{Source: name, Error: err}))
	return ErrBuildFailed
}
