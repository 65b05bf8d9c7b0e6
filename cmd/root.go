package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "camera-coverage",
	Short: "Spatial coverage analysis for NYC transit cameras",
	Long:  "Validates camera location CSVs and computes nearest-neighbor distances, buffer coverage, coverage gaps, density clusters and kernel density, with GIS exports, reports and an HTTP API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
