package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the local storage slots holding saved selections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		keys, err := ws.slots.Keys(context.Background())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("No saved selections.")
			return nil
		}
		for _, k := range keys {
			marker := ""
			if k == ws.cfg.StorageKey {
				marker = " (active)"
			}
			fmt.Printf("%s%s\n", k, marker)
		}
		return nil
	},
}

var slotsResetCmd = &cobra.Command{
	Use:   "reset [KEY...]",
	Short: "Forget saved selections",
	Long:  `Removes the given slots, or the configured storage_key slot when none are named. Pages then fall back to each control's default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		keys := args
		if len(keys) == 0 {
			keys = []string{ws.cfg.StorageKey}
		}
		for _, k := range keys {
			if err := ws.slots.RemoveItem(context.Background(), k); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", k)
		}
		return nil
	},
}

func init() {
	slotsCmd.AddCommand(slotsResetCmd)
	rootCmd.AddCommand(slotsCmd)
}
