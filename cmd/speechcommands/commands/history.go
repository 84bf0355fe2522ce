package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/pkg/cli"
	"github.com/haivivi/speechcommands/pkg/history"
)

var historyLimit int

// recordList renders inspection records as a table.
type recordList []history.Record

func (r recordList) Table() ([]string, [][]string) {
	rows := make([][]string, len(r))
	for i, rec := range r {
		rows[i] = []string{
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.Filename,
			strconv.Itoa(rec.SampleRate),
			cli.FormatSeconds(time.Duration(rec.Seconds * float64(time.Second))),
			rec.ID,
		}
	}
	return []string{"TIME", "FILE", "RATE", "DURATION", "ID"}, rows
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent inspections",
	Long: `List the most recent inspections, newest first. History is only kept
across runs when history.dir (or SPEECHCOMMANDS_HISTORY_DIR) is set.

Examples:
  speechcommands history --limit 5
  speechcommands history --query '.[].filename'
  speechcommands history show <id>
  speechcommands history rm <id>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		limit := cfg.History.Limit
		if cmd.Flags().Changed("limit") {
			limit = historyLimit
		}

		hist, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer hist.Close()

		recs, err := hist.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 && !structured() {
			cli.PrintInfo("No inspections yet.")
			return nil
		}
		if recs == nil {
			recs = []history.Record{}
		}
		return output(recordList(recs))
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		hist, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer hist.Close()

		rec, err := hist.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%w: %s", err, args[0])
		}
		return output(rec)
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Forget an inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		hist, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer hist.Close()

		if err := hist.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("%w: %s", err, args[0])
		}
		cli.PrintSuccess("Removed inspection %s", args[0])
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}
