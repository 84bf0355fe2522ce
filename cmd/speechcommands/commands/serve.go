package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechcommands/pkg/cli"
	"github.com/haivivi/speechcommands/pkg/inspect"
	"github.com/haivivi/speechcommands/pkg/predict"
	"github.com/haivivi/speechcommands/pkg/upload"
	"github.com/haivivi/speechcommands/pkg/web"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the explorer web app",
	Long: `Run the Speech Commands explorer web app.

The dataset is fetched before the server starts listening. Every page load
previews five random clips; uploaded WAV files are summarized and plotted.

Routes:
  GET    /                       explorer page
  POST   /upload                 upload form (field "audio")
  GET    /audio/{label}/{file}   dataset clip
  GET    /api/samples            random selection as JSON
  POST   /api/inspect            upload summary as JSON
  GET    /api/history            recent inspections
  GET    /api/history/{id}       one inspection
  DELETE /api/history/{id}       forget an inspection
  GET    /healthz                liveness

Example:
  speechcommands serve --addr :8501`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := ensureDataset(ctx, cfg); err != nil {
		return err
	}

	hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	handler := web.New(web.Config{
		Picker:       newPicker(cfg),
		Uploads:      &upload.Handler{MaxBytes: cfg.Server.MaxUpload},
		Inspector:    &inspect.Inspector{Predictor: predict.Stub{}, History: hist},
		History:      hist,
		HistoryLimit: cfg.History.Limit,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner(cmd.OutOrStdout(), cfg.Server.Addr, cfg.Dataset.Dir)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("explorer listening", "addr", "http://"+cfg.Server.Addr, "data_dir", cfg.Dataset.Dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// printBanner writes the startup banner shown before the server listens.
func printBanner(w io.Writer, addr, dataDir string) {
	fmt.Fprintln(w, cli.Title(web.PageTitle))
	cli.PrintHeader(w, web.PageHeader)
	fmt.Fprintf(w, "Open http://%s in a browser\n", addr)
	fmt.Fprintln(w, cli.Dim("dataset: "+dataDir))
	fmt.Fprintln(w, cli.Dim("press Ctrl+C to stop"))
}
