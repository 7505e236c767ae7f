package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/risk"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Enable or disable one control of a topic",
	Long: `Sets a control on the risk page of --service, exactly as clicking its radio
would: the selection is saved and the updated summary is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")
		id, _ := cmd.Flags().GetString("id")
		value, _ := cmd.Flags().GetString("value")

		status := risk.Status(value)
		if status != risk.StatusEnabled && status != risk.StatusDisabled {
			return fmt.Errorf("--value must be %q or %q, got %q", risk.StatusEnabled, risk.StatusDisabled, value)
		}

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

		if err := p.Toggle(id, status); err != nil {
			return err
		}
		fmt.Printf("%s/%s: %s\n", p.Service, id, status)
		return printSummary(cmd, p)
	},
}

func init() {
	toggleCmd.Flags().String("service", "", "topic key")
	toggleCmd.Flags().String("id", "", "control id (data-control-id of the row)")
	toggleCmd.Flags().String("value", "", "enabled or disabled")
	_ = toggleCmd.MarkFlagRequired("service")
	_ = toggleCmd.MarkFlagRequired("id")
	_ = toggleCmd.MarkFlagRequired("value")
	toggleCmd.Flags().Bool("json", false, "print the summary as JSON")
	rootCmd.AddCommand(toggleCmd)
}
