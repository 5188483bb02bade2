package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/puneet-chandna/water-brakes/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "water-brakes",
	Short: "Terrain survey classification pipeline",
	Long:  "Normalizes survey coordinates to WGS84, derives slope and aspect, and classifies points into swale and trench terrain roles.",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
