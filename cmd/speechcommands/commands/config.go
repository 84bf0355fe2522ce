package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/cmd/speechcommands/internal/config"
	"github.com/haivivi/speechcommands/pkg/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	Long: `Manage the speechcommands configuration file.

Environment overrides:
  SPEECHCOMMANDS_CONFIG        config file path
  SPEECHCOMMANDS_DATA_DIR      dataset directory
  SPEECHCOMMANDS_SOURCE        dataset archive source
  SPEECHCOMMANDS_ADDR          serve listen address
  SPEECHCOMMANDS_HISTORY_DIR   history database directory
  SPEECHCOMMANDS_MAX_UPLOAD    upload size limit in bytes
  SPEECHCOMMANDS_S3_REGION     region for s3:// sources
  SPEECHCOMMANDS_S3_ENDPOINT   endpoint for S3-compatible stores`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.S3.SecretAccessKey != "" {
			cfg.S3.SecretAccessKey = "********"
		}
		return output(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		cli.PrintSuccess("Config written to %s", path)
		return nil
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configPathCmd, configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
