package cli

import (
	"fmt"

	"github.com/felixgeelhaar/codementor/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codementor configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfigPath
		if path == "" {
			path = config.DefaultPath()
		}

		created, err := initConfig(appFs, path, flagForce)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		if !created {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return config.Write(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// initConfig writes the default config unless one exists and force is unset
func initConfig(fsys afero.Fs, path string, force bool) (bool, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !force {
		return false, nil
	}

	if err := config.Save(fsys, path, config.Default()); err != nil {
		return false, fmt.Errorf("writing config: %w", err)
	}
	return true, nil
}
