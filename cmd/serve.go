package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/server"
	"github.com/ziadkadry99/riskpanes/internal/site"
	"github.com/ziadkadry99/riskpanes/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the risk analysis pages locally",
	Long: `Starts a local web server for the home page and the risk pages. Toggles are
persisted in the local database and the summary follows them live.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides the config file)")
	serveCmd.Flags().Bool("open", false, "open the home page in a browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		ws.cfg.Port = port
		if err := ws.cfg.Validate(); err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		Addr:        ws.cfg.Addr(),
		CORSOrigins: ws.cfg.CORSOrigins,
	}, server.Deps{
		Audit:  ws.audit,
		Pages:  ws.pages,
		Data:   ws.data,
		Static: web.Static(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()

	url := fmt.Sprintf("http://%s/", ws.cfg.Addr())
	fmt.Fprintf(os.Stderr, "riskpanes %s serving at %s\n", Version, url)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", ws.database.Path())
	fmt.Fprintf(os.Stderr, "  Data: %s\n", ws.cfg.DataSource())

	if open, _ := cmd.Flags().GetBool("open"); open {
		go site.OpenBrowser(url)
	}

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
