package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the risk summary of a topic",
	Long:  `Prints the remaining danger of --service under the stored selections, with its qualitative level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")

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

		return printSummary(cmd, p)
	},
}

func init() {
	summaryCmd.Flags().String("service", "", "topic key")
	_ = summaryCmd.MarkFlagRequired("service")
	summaryCmd.Flags().Bool("json", false, "print the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func printSummary(cmd *cobra.Command, p *pages.Page) error {
	s, ok := p.Summary()
	if !ok {
		return fmt.Errorf("no summary for %q", p.Service)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Printf("%s: %s", p.Service, risk.FormatPercent(s.Total))
	if s.Title != "" {
		fmt.Printf(" (%s)", s.Title)
	}
	fmt.Println()
	if s.Message != "" {
		fmt.Println(s.Message)
	}
	return nil
}
