package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize riskpanes configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure riskpanes and writes the config file (.riskpanes.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
