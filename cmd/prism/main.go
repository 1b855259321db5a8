package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "PRISM - Portfolio Resampling & Investment Strategy Modeler",
	Long: `PRISM evaluates portfolio-diversification strategies by simulating many
hypothetical equal-weighted portfolios and measuring their outcome
distributions across selection policies, sizes and holding periods.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "prism.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
