package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/prism/internal/app"
	"github.com/newthinker/prism/internal/config"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/logger"
)

var (
	sweepPolicies       []string
	sweepStockCounts    []int
	sweepLengths        []string
	sweepNumSimulations int
	sweepSimulationType string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the cross-product of policies, stock counts and durations",
	Long: `Iterate every (policy, num_stocks, duration) combination and invoke the
engine once per combination. A failed cell logs a warning and the sweep
continues with the next one.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringSliceVar(&sweepPolicies, "policies", nil, "Policies to sweep (default: all registered)")
	sweepCmd.Flags().IntSliceVar(&sweepStockCounts, "stock_counts", []int{5, 10, 15}, "Portfolio sizes to sweep")
	sweepCmd.Flags().StringSliceVar(&sweepLengths, "lengths", []string{"3m", "6m", "1y", "3y", "5y", "10y"}, "Holding periods to sweep")
	sweepCmd.Flags().IntVar(&sweepNumSimulations, "num_simulations", 0, "Number of trials per cell (0 = config default)")
	sweepCmd.Flags().StringVar(&sweepSimulationType, "simulation_type", "monte_carlo", "Resampling method: monte_carlo or bootstrap")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	method, err := core.ParseMethod(sweepSimulationType)
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

	ctx := cmd.Context()
	a.ServeMetrics(ctx)

	policies := sweepPolicies
	if len(policies) == 0 {
		policies = a.Selector().Names()
	}

	var completed, failed int
	for _, policyName := range policies {
		for _, numStocks := range sweepStockCounts {
			for _, length := range sweepLengths {
				if err := ctx.Err(); err != nil {
					return err
				}

				engineCfg := a.EngineConfig(policyName, numStocks, length, method, sweepNumSimulations)
				if _, err := a.RunConfiguration(ctx, engineCfg); err != nil {
					failed++
					log.Warn("sweep cell failed",
						zap.String("policy", policyName),
						zap.Int("num_stocks", numStocks),
						zap.String("duration", length),
						zap.Error(err),
					)
					continue
				}
				completed++
			}
		}
	}

	if key, err := a.ArchiveResults(ctx); err != nil {
		log.Warn("archiving results failed", zap.Error(err))
	} else if key != "" {
		log.Info("results archived", zap.String("key", key))
	}

	fmt.Printf("Sweep complete: %d configurations, %d failed\n", completed, failed)
	return nil
}
