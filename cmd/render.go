package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the risk page of one topic as HTML",
	Long:  `Renders the risk page for --service with the stored selections applied and writes the HTML to stdout or --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")
		out, _ := cmd.Flags().GetString("out")

		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		p, err := ws.pages.Risk(context.Background(), url.Values{"service": {service}})
		if err != nil {
			return fmt.Errorf("building page: %w", err)
		}
		defer p.Close()

		if out == "" {
			return p.Render(os.Stdout)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := p.Render(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", out, err)
		}
		return f.Close()
	},
}

func init() {
	renderCmd.Flags().String("service", "", "topic key, as in riskPage.html?service=KEY")
	renderCmd.Flags().String("out", "", "output file (defaults to stdout)")
	rootCmd.AddCommand(renderCmd)
}
