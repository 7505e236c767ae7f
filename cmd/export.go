package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/progress"
	"github.com/ziadkadry99/riskpanes/internal/site"
	"github.com/ziadkadry99/riskpanes/web"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the pages as a static site",
	Long: `Renders the home page and one risk page per topic into a directory, together
with the stylesheet, client script and data files.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("out", "", "output directory (defaults to output_dir from the config)")
	exportCmd.Flags().Bool("serve", false, "start a local HTTP server after exporting")
	exportCmd.Flags().Int("port", 8080, "port for the local file server")
	exportCmd.Flags().Bool("open", false, "open browser automatically when serving")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		outputDir = ws.cfg.OutputDir
	}

	exporter := &site.Exporter{
		Pages:     ws.pages,
		Fetcher:   ws.fetcher,
		Static:    web.Static(),
		Data:      ws.data,
		OutputDir: outputDir,
		Reporter:  progress.NewReporter("Exporting pages"),
	}
	count, err := exporter.Export(context.Background())
	if err != nil {
		return fmt.Errorf("exporting site: %w", err)
	}
	fmt.Printf("Static site exported: %s (%d pages)\n", outputDir, count)

	if serve, _ := cmd.Flags().GetBool("serve"); serve {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop.")
		if err := site.Serve(ctx, outputDir, port, open); err != nil {
			return fmt.Errorf("serving site: %w", err)
		}
	}
	return nil
}
