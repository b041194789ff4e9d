package cli

import (
	"bufio"
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
	"github.com/yaklabco/mdsite/pkg/config"
	"github.com/yaklabco/mdsite/pkg/fsutil"
	"github.com/yaklabco/mdsite/pkg/page"
)

// Starter files written by "init --scaffold".
const (
	scaffoldIndex = `# Welcome

This site was built with **mdsite**. Edit ` + "`content/index.md`" + ` to get started.
`
	scaffoldCSS = `body {
  max-width: 42rem;
  margin: 2rem auto;
  font-family: sans-serif;
  line-height: 1.5;
}
`
)

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// errNotOverwritten is returned when the user declines to overwrite a file.
var errNotOverwritten = errors.New("existing file kept")

type initFlags struct {
	force    bool
	full     bool
	scaffold bool
	output   string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new mdsite configuration",
		Long: `Create a .mdsite.yml configuration file in the current directory
with the default layout. With --scaffold, also create the page template,
a first page and a stylesheet when they do not exist yet.

Examples:
  mdsite init                     Create minimal .mdsite.yml
  mdsite init --full              Document every setting in the file
  mdsite init --scaffold          Also create template.html, content/ and static/
  mdsite init --output site.yml   Write to a custom file path`,
		Args: maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with all settings documented")
	cmd.Flags().BoolVar(&flags.scaffold, "scaffold", false, "Create a starter template, page and stylesheet")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: "+configloader.ProjectConfigName+")")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	workDir, err := workingDir(cmd)
	if err != nil {
		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = configloader.ProjectConfigName
	}
	absPath := outputPath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(workDir, absPath)
	}

	if _, err := os.Stat(absPath); err == nil && !flags.force {
		if !isTerminal(cmd.InOrStdin()) {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, outputPath)
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("%s already exists. Overwrite?", outputPath))
		if err != nil {
			return err
		}
		if !ok {
			return errNotOverwritten
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := fsutil.WriteAtomic(ctx, absPath, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if flags.scaffold {
		if err := writeScaffold(cmd, filepath.Dir(absPath)); err != nil {
			return err
		}
	}

	logger.Info("run 'mdsite build' to generate the site")

	return nil
}

// writeScaffold creates the default template, first page and stylesheet
// below root, leaving existing files untouched.
func writeScaffold(cmd *cobra.Command, root string) error {
	logger := logging.NewInteractive(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	files := []struct {
		path    string
		content string
	}{
		{config.DefaultTemplate, page.DefaultTemplate},
		{filepath.Join(config.DefaultContentDir, "index.md"), scaffoldIndex},
		{filepath.Join(config.DefaultStaticDir, "index.css"), scaffoldCSS},
	}

	for _, file := range files {
		path := filepath.Join(root, file.path)
		if _, err := os.Stat(path); err == nil {
			logger.Info("keeping existing file", logging.FieldPath, file.path)
			continue
		}
		if err := fsutil.WriteAtomic(ctx, path, []byte(file.content), fsutil.DefaultFileMode); err != nil {
			return fmt.Errorf("write %s: %w", file.path, err)
		}
		logger.Info("created", logging.FieldPath, file.path)
	}
	return nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
