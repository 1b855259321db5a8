package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/prism/internal/app"
	"github.com/newthinker/prism/internal/config"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/logger"
	"github.com/newthinker/prism/internal/results"
)

var (
	runNumStocks      int
	runLength         string
	runNumSimulations int
	runSimulationType string
)

var runCmd = &cobra.Command{
	Use:   "run [policy]",
	Short: "Run one simulation configuration",
	Long:  "Run all trials of one (policy, size, duration, method) configuration and persist the aggregated result row",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&runNumStocks, "num_stocks", 15, "Number of stocks per portfolio")
	runCmd.Flags().StringVar(&runLength, "simulation_length", "5y", "Holding period, e.g. 3m, 6m, 1y, 5y")
	runCmd.Flags().IntVar(&runNumSimulations, "num_simulations", 0, "Number of trials (0 = config default)")
	runCmd.Flags().StringVar(&runSimulationType, "simulation_type", "monte_carlo", "Resampling method: monte_carlo or bootstrap")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	policyName := args[0]

	method, err := core.ParseMethod(runSimulationType)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log := logger.Must(debug)
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	engineCfg := a.EngineConfig(policyName, runNumStocks, runLength, method, runNumSimulations)
	row, err := a.RunConfiguration(cmd.Context(), engineCfg)
	if err != nil {
		return err
	}

	printRow(row)
	return nil
}

func printRow(row *results.Row) {
	fmt.Println("=== PRISM Simulation ===")
	fmt.Printf("Policy:    %s\n", row.Policy)
	fmt.Printf("Stocks:    %d\n", row.NumStocks)
	fmt.Printf("Duration:  %s\n", row.Duration)
	fmt.Printf("Method:    %s\n", row.Method)
	fmt.Printf("Trials:    %d (valid %d, missing %d)\n", row.Trials, row.ValidCount, row.MissingCount)
	fmt.Println()
	fmt.Printf("Mean:      %s\n", row.Mean)
	fmt.Printf("Std:       %s\n", row.Std)
	fmt.Printf("P05:       %s\n", row.P05)
	fmt.Printf("P50:       %s\n", row.P50)
	fmt.Printf("P95:       %s\n", row.P95)
	fmt.Printf("Annual:    %s\n", row.AnnMean)
}
