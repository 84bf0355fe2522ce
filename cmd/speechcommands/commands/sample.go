package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/pkg/cli"
	"github.com/haivivi/speechcommands/pkg/dataset"
)

var (
	sampleCount int
	sampleSeed  uint64
)

// sampleList renders a selection as a table.
type sampleList []dataset.Sample

func (s sampleList) Table() ([]string, [][]string) {
	rows := make([][]string, len(s))
	for i, smp := range s {
		rows[i] = []string{smp.Label, smp.File, smp.Path}
	}
	return []string{"LABEL", "FILE", "PATH"}, rows
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Pick random clips from the dataset",
	Long: `Pick random clips from distinct labels of the extracted dataset, the
same way the web app builds its preview. Folders starting with "_" are
never sampled. The dataset must have been fetched.

Examples:
  speechcommands sample
  speechcommands sample --count 3 --seed 42 --format json
  speechcommands sample --query '.[].path'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		var opts []dataset.PickerOption
		if cmd.Flags().Changed("count") {
			opts = append(opts, dataset.WithCount(sampleCount))
		}
		if cmd.Flags().Changed("seed") {
			opts = append(opts, dataset.WithSeed(sampleSeed))
		}
		p := newPicker(cfg, opts...)

		samples, err := p.Pick()
		if err != nil {
			return fmt.Errorf("sample %s: %w", p.Root(), err)
		}
		if !structured() {
			labels := make([]string, len(samples))
			for i, smp := range samples {
				labels[i] = smp.Label
			}
			cli.PrintInfo("Displaying random samples from these labels: %s", strings.Join(labels, ", "))
		}
		return output(sampleList(samples))
	},
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleCount, "count", "n", 5, "number of labels to sample")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "random seed for a reproducible selection")
	rootCmd.AddCommand(sampleCmd)
}
