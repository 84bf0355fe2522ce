package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/pkg/cli"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract the dataset",
	Long: `Download the Speech Commands archive and extract it into the data
directory. Nothing is downloaded when the directory already exists; delete
it to force a fresh download.

Examples:
  speechcommands fetch
  speechcommands fetch --data-dir /srv/speech --source ./speech_commands_v0.02.tar.gz`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		f, err := ensureDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if structured() {
			return output(map[string]any{
				"dir":        cfg.Dataset.Dir,
				"downloaded": f.Downloaded(),
				"files":      f.Stats().Files,
				"bytes":      f.Stats().Bytes,
			})
		}
		if !f.Downloaded() {
			cli.PrintInfo("Dataset already present in %s", cfg.Dataset.Dir)
			return nil
		}
		stats := f.Stats()
		cli.PrintSuccess("Dataset downloaded and extracted! %d files, %s in %s",
			stats.Files, cli.FormatBytes(stats.Bytes), cfg.Dataset.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
