package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/cmd/speechcommands/internal/config"
	"github.com/haivivi/speechcommands/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	formatOutput string
	queryExpr    string
	dataDir      string
	sourceURI    string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "speechcommands",
	Short: "Explore the Google Speech Commands dataset",
	Long: `speechcommands - preview the Google Speech Commands v2 dataset and
inspect your own WAV recordings.

The dataset is downloaded and extracted once into the data directory
(default ./speech_commands_data). Later runs reuse it.

Configuration is read from the OS config directory, then from the
environment (a .env file in the working directory is loaded first),
then from flags:
  macOS:   ~/Library/Application Support/speechcommands/config.yaml
  Linux:   ~/.config/speechcommands/config.yaml
  Windows: %AppData%/speechcommands/config.yaml

Examples:
  # Run the web app on http://127.0.0.1:8501
  speechcommands serve

  # Use a mirrored archive
  speechcommands fetch --source s3://datasets/speech_commands_v0.02.tar.gz

  # Pick five random clips and print their labels
  speechcommands sample --query '.[].label'

  # Inspect a recording and save its waveform
  speechcommands inspect yes.wav --plot yes.png`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging, initConfig)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&configPath, "config", "", "config file (default is $SPEECHCOMMANDS_CONFIG or the OS config dir)")
	pf.StringVar(&formatOutput, "format", "table", "output format (table, yaml, json, raw)")
	pf.StringVar(&queryExpr, "query", "", "jq expression applied to the result")
	pf.StringVar(&dataDir, "data-dir", "", "dataset directory (overrides config)")
	pf.StringVar(&sourceURI, "source", "", "dataset archive: URL, s3://bucket/key or local path (overrides config)")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	globalConfig, configLoadErr = nil, nil
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// Commands that need config report it via GetConfig, so
		// 'speechcommands version' still works with a broken file.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration with flag overrides applied.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	cfg := *globalConfig
	if dataDir != "" {
		cfg.Dataset.Dir = dataDir
	}
	if sourceURI != "" {
		cfg.Dataset.Source = sourceURI
	}
	return &cfg, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// output prints v using the global --format and --query flags.
func output(v any) error {
	format, err := cli.ParseFormat(formatOutput)
	if err != nil {
		return err
	}
	return cli.Output(v, cli.OutputOptions{Format: format, Query: queryExpr})
}

// structured reports whether output should be machine-readable rather
// than a human summary.
func structured() bool {
	return queryExpr != "" || (formatOutput != "table" && formatOutput != "")
}
