package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"supplier_ranker/internal/adapters/observability"
	"supplier_ranker/internal/app"
	"supplier_ranker/internal/bootstrap"
	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/scoring"
	"supplier_ranker/internal/shared"
)

var (
	dataFlag    string
	sourceFlag  string
	scoringFlag string
)

var rootCmd = &cobra.Command{
	Use:           "rank",
	Short:         "Filter and rank suppliers from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "dataset path or URL (overrides DATA_PATH / DATA_URL)")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "dataset source: csv, url or mysql (overrides DATA_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&scoringFlag, "scoring", "", "scoring config YAML (overrides SCORING_CONFIG)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadDataset resolves configuration from env and flags, then loads and
// scores the dataset once.
func loadDataset(ctx context.Context) (*dataset.Dataset, *scoring.Engine, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLoggerTo(os.Stderr, "dev", env("LOG_LEVEL", "warn"))

	if sourceFlag != "" {
		cfg.DataSource = sourceFlag
	}
	if dataFlag != "" {
		if cfg.DataSource == shared.SourceURL {
			cfg.DataURL = dataFlag
		} else {
			cfg.DataPath = dataFlag
		}
	}
	if scoringFlag != "" {
		cfg.ScoringConfig = scoringFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfig)
	if err != nil {
		return nil, nil, err
	}
	engine := scoring.New(scoringCfg)

	src, closeSrc, err := bootstrap.Source(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeSrc()

	store := dataset.NewStore(nil)
	ds, err := app.NewReloadService(src, engine, store).Reload(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ds, engine, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
