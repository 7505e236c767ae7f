package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/audit"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded control toggles",
	Long:  `Lists the toggles recorded on this device, newest first. Use --prune to drop entries older than a duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")
		limit, _ := cmd.Flags().GetInt("limit")
		prune, _ := cmd.Flags().GetDuration("prune")

		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx := context.Background()
		if prune > 0 {
			n, err := ws.audit.DeleteBefore(ctx, time.Now().Add(-prune))
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d entries\n", n)
			return nil
		}

		entries, err := ws.audit.Query(ctx, audit.QueryFilter{Category: service, Limit: limit})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No toggles recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSERVICE\tCONTROL\tVALUE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Category, e.ControlID, e.Value)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().String("service", "", "only show toggles of this topic")
	historyCmd.Flags().Int("limit", 50, "maximum number of entries")
	historyCmd.Flags().Duration("prune", 0, "delete entries older than this duration instead of listing")
	rootCmd.AddCommand(historyCmd)
}
