package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/pkg/cli"
	"github.com/haivivi/speechcommands/pkg/inspect"
	"github.com/haivivi/speechcommands/pkg/predict"
	"github.com/haivivi/speechcommands/pkg/upload"
	"github.com/haivivi/speechcommands/pkg/waveform"
)

var inspectPlot string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wav>",
	Short: "Summarize a WAV file and plot its waveform",
	Long: `Decode a WAV file at its native sample rate, print its sample rate and
duration, compute the model input features and optionally render the
waveform to a PNG file. The inspection is added to the history.

Examples:
  speechcommands inspect yes.wav
  speechcommands inspect yes.wav --plot yes.png
  speechcommands inspect yes.wav --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		path := args[0]
		name := filepath.Base(path)
		if err := (&upload.Handler{}).Check(name); err != nil {
			return err
		}

		hist, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer hist.Close()

		in := &inspect.Inspector{Predictor: predict.Stub{}, History: hist}
		rep, err := in.File(cmd.Context(), name, path)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}

		if inspectPlot != "" {
			if err := writePlot(inspectPlot, rep); err != nil {
				return err
			}
		}

		if structured() {
			return output(rep)
		}
		fmt.Println(rep.Summary)
		fmt.Printf("Model input: %s\n", rep.Features)
		if inspectPlot != "" {
			cli.PrintSuccess("Waveform saved to %s", inspectPlot)
		}
		if rep.ModelLoaded {
			cli.PrintSuccess("Predicted Label: %s", rep.Prediction)
		} else {
			cli.PrintWarning("%s", rep.Prediction)
		}
		return nil
	},
}

func writePlot(path string, rep *inspect.Report) error {
	fig := waveform.NewFigure(rep.Clip)
	fig.Title = rep.Filename
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	if _, err := fig.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("render waveform: %w", err)
	}
	return f.Close()
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPlot, "plot", "", "write the waveform as PNG to this file")
	rootCmd.AddCommand(inspectCmd)
}
