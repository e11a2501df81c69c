package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/fmstage/internal/config"
	"github.com/thoreinstein/fmstage/internal/errors"
)

var configShowSource bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowSource, "source", false,
		"print the path of the config file in use before the values")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fmstage configuration",
	Long: `Inspect the configuration fmstage runs with.

Values come from config.yaml in the current directory or in
$XDG_CONFIG_HOME/fmstage, then from FMSTAGE_* environment variables.
Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  fmstage config show

  # Where would a user config file go?
  fmstage config path

See Also: fmstage run`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprintln(c.OutOrStdout(), config.DefaultPath())
	},
}

func runConfigShow(c *cobra.Command, _ []string) error {
	conf, err := loadedConfig()
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	if configShowSource {
		if used := config.Used(); used != "" {
			fmt.Fprintf(out, "# %s\n", used)
		} else {
			fmt.Fprintln(out, "# defaults")
		}
	}

	data, err := yaml.Marshal(conf)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = out.Write(data)
	return err
}
