package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskpanes/internal/log"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "riskpanes",
	Short: "Interactive security risk checklists rendered from JSON data",
	Long: `riskpanes renders per-topic risk analysis pages: a checklist table of
controls you can enable or disable and a live summary of the remaining
danger. Selections are remembered locally between visits.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Setup(verbose, quiet)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".riskpanes.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print warnings and errors")
}
