package main

import (
	"fmt"
	"os"

	"github.com/cuongbtq/barangay-gigs/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const app = "gigctl"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "gigctl administers the barangay gig marketplace database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "path to configuration file")
}

// loadConfig reads the service configuration; only the database section is required
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Host == "" || cfg.Database.Database == "" {
		return nil, fmt.Errorf("database host and name are required")
	}
	return cfg, nil
}
