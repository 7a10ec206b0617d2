/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/container"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-off risk alert sync for a business",
	Long: `Re-evaluate spoilage risk for all products of a business and
reconcile the alerts table. The same operation is exposed over the API;
this command exists for cron jobs and manual runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		businessID, _ := cmd.Flags().GetString("business")
		if businessID == "" {
			return fmt.Errorf("--business is required")
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctr, err := container.NewContainer(cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		summary, err := ctr.AlertService().Sync(context.Background(), businessID, "system")
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Synced %d alerts for business %s (high=%d medium=%d low=%d)\n",
			summary.Synced, summary.BusinessID, summary.HighRisk, summary.MediumRisk, summary.LowRisk)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	syncCmd.Flags().String("business", "", "Business ID to sync alerts for")
}
