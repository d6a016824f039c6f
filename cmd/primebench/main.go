// Command primebench runs the fluctuation-stationarity sweep and
// writes the result tables for downstream plotting.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/primebench"
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	root := &cobra.Command{
		Use:           "primebench",
		Short:         "Numerical probe of prime fluctuation stationarity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSweepCmd())

	if err := root.Execute(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newSweepCmd() *cobra.Command {
	var (
		configPath string
		outDB      string
		csvDir     string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate I(T, σ) over the configured grid and fit C(σ)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := primebench.DefaultRunConfig()
			if configPath != "" {
				var err error
				cfg, err = primebench.LoadRunConfig(configPath)
				if err != nil {
					return err
				}
			}

			sweepCfg, err := cfg.SweepConfig()
			if err != nil {
				return err
			}
			if timeout > 0 {
				sweepCfg.Budget = timeout
			}

			slog.Info("sweep starting",
				"t_values", len(sweepCfg.TValues),
				"sigma_values", len(sweepCfg.SigmaValues),
				"nodes", sweepCfg.Quadrature.Nodes,
			)

			start := time.Now()
			table, err := primebench.RunSweep(context.Background(), sweepCfg, primebench.NewPrimeCache())
			if err != nil {
				return err
			}
			slog.Info("sweep complete", "entries", len(table.Entries), "elapsed", time.Since(start))

			analysis, err := primebench.FitScaling(table)
			if err != nil {
				return err
			}
			slog.Info("scaling fit complete", "amplitude", analysis.Amplitude)
			for _, f := range analysis.Fits {
				slog.Info("fit",
					"sigma", f.Sigma,
					"c", f.C,
					"c_theory", f.CTheory,
					"residual", f.Residual,
					"exponent", f.Exponent,
					"exponent_theory", f.ExponentTheory,
					"r2", f.RSquared,
				)
			}

			osc, oscErr := primebench.ExtractOscillation(table, analysis)
			if oscErr != nil {
				// The σ = 1/2 row is optional; the sweep stands alone.
				slog.Warn("oscillation extraction skipped", "reason", oscErr)
			} else {
				slog.Info("oscillation growth order",
					"ln_t_slope", osc.LogTSlope,
					"ln_t_r2", osc.LogTR2,
					"ln_ln_t_slope", osc.LogLogTSlope,
					"ln_ln_t_r2", osc.LogLogTR2,
				)
			}

			if outDB != "" {
				if err := persist(outDB, table, analysis, osc, oscErr == nil); err != nil {
					return err
				}
				slog.Info("results stored", "path", outDB)
			}
			if csvDir != "" {
				if err := writeCSVs(csvDir, table, analysis); err != nil {
					return err
				}
				slog.Info("csv written", "dir", csvDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration (defaults used when omitted)")
	cmd.Flags().StringVar(&outDB, "out", "", "SQLite output path")
	cmd.Flags().StringVar(&csvDir, "csv", "", "directory for CSV output")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock budget for the sweep")
	return cmd
}

func persist(path string, table *primebench.SweepTable, an primebench.Analysis, osc primebench.OscillationResult, haveOsc bool) error {
	store, err := primebench.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveSweep(table); err != nil {
		return fmt.Errorf("save sweep: %w", err)
	}
	if err := store.SaveAnalysis(an); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if haveOsc {
		if err := store.SaveOscillation(osc); err != nil {
			return fmt.Errorf("save oscillation: %w", err)
		}
	}
	return nil
}

func writeCSVs(dir string, table *primebench.SweepTable, an primebench.Analysis) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	sweepFile, err := os.Create(filepath.Join(dir, "sweep.csv"))
	if err != nil {
		return err
	}
	defer sweepFile.Close()
	if err := primebench.WriteSweepCSV(sweepFile, table); err != nil {
		return err
	}

	fitFile, err := os.Create(filepath.Join(dir, "fit.csv"))
	if err != nil {
		return err
	}
	defer fitFile.Close()
	return primebench.WriteFitCSV(fitFile, an)
}
