package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdsite/internal/configloader"
	"github.com/yaklabco/mdsite/internal/logging"
)

type configFlags struct {
	env bool
}

func newConfigCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration a build in this directory would use, after
merging the system, user and project files, the --config file and
MDSITE_* environment variables.

With --env, list the supported environment variables instead.`,
		Args: maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.env {
				listEnvVars(cmd)
				return nil
			}
			return showConfig(cmd)
		},
	}

	cmd.Flags().BoolVar(&flags.env, "env", false, "list supported environment variables")

	return cmd
}

func showConfig(cmd *cobra.Command) error {
	loaded, _, err := loadSiteConfig(cmd, nil)
	if err != nil {
		return err
	}

	header := "# resolved mdsite configuration"
	if len(loaded.LoadedFrom) > 0 {
		header += "\n# sources:\n#   " + strings.Join(loaded.LoadedFrom, "\n#   ")
	}

	out, err := loaded.Config.ToYAMLWithHeader(header)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func listEnvVars(cmd *cobra.Command) {
	logger := logging.NewInteractive(cmd.ErrOrStderr())
	logger.Info("supported environment variables")
	for _, v := range configloader.ListEnvVars() {
		logger.Info(v.Name, "description", v.Description)
	}
}
