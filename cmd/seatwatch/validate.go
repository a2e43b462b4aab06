package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/seatwatch/config"
)

// validateCmd validates a config file without starting the watcher.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a seatwatch configuration file without starting the watcher.

This command parses the YAML, expands environment variables, validates
all fields, and compiles the query expression. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  seatwatch validate -c seatwatch.yaml
  seatwatch validate --config /etc/seatwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Target:   %s (%s)\n", cfg.Target.Name, cfg.Target.URL)
	fmt.Printf("  Query:    %s\n", cfg.Target.Query)
	fmt.Printf("  Interval: %s\n", cfg.Interval.Duration())
	if cfg.StatusPort != 0 {
		fmt.Printf("  Status:   http://localhost:%d\n", cfg.StatusPort)
	}

	return nil
}
