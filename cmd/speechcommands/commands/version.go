package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/cmd/speechcommands/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if structured() {
			return output(build.Get())
		}
		fmt.Println(build.String())
		if IsVerbose() {
			info := build.Get()
			fmt.Printf("  go:     %s\n", info.Go)
			if path, err := resolveConfigPath(); err == nil {
				fmt.Printf("  config: %s\n", path)
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
