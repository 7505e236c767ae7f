package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// Serve serves an exported site from dir until ctx is cancelled.
func Serve(ctx context.Context, dir string, port int, open bool) error {
	url := fmt.Sprintf("http://localhost:%d/", port)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if open {
		go OpenBrowser(url)
	}
	slog.Info("serving exported site", "dir", dir, "url", url)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// OpenBrowser opens url in the default browser. Failures are logged.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Debug("opening browser", "url", url, "error", err)
	}
}
