package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/seatwatch"
	"github.com/jpalmerr/seatwatch/config"
)

// Built-in target, used when no config file is given. The URL is fully
// qualified: event identifier in the path, public access key as a
// query parameter.
const (
	defaultTargetName = "Box Office"
	defaultTargetURL  = "https://seatmap.example.com/v1/events/4821/seats?key=pk_4821_public"
	defaultQuery      = "count:seats[3]=SOLD"
)

const defaultIntervalMinutes = 5.0

// newLogger creates a JSON logger for CLI use. Operational events go
// to stderr; the report lines themselves go to stdout.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

func init() {
	rootCmd.Flags().Float64P("interval", "i", defaultIntervalMinutes, "minutes between checks (fractional accepted)")
	rootCmd.Flags().StringP("config", "c", "", "path to config file")
	rootCmd.Flags().IntP("port", "p", 0, "serve the status page on this port (0 disables)")
}

// parseInterval converts the --interval flag value (minutes) to the
// underlying wait duration. Fractional values are accepted: 0.5
// becomes 30 seconds.
func parseInterval(minutes float64) (time.Duration, error) {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, fmt.Errorf("interval must be a positive number of minutes, got %v", minutes)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	minutes, _ := cmd.Flags().GetFloat64("interval")
	interval, err := parseInterval(minutes)
	if err != nil {
		return err
	}

	opts, err := buildWatcherOptions(cmd, interval)
	if err != nil {
		return err
	}
	opts = append(opts, seatwatch.WithLogger(logger))

	w, err := seatwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	<-ctx.Done()
	w.Stop()
	return nil
}

// buildWatcherOptions assembles the SDK options from either the
// config file or the built-in defaults, with flags taking precedence
// where explicitly set.
func buildWatcherOptions(cmd *cobra.Command, interval time.Duration) ([]seatwatch.Option, error) {
	configFile, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetInt("port")

	if configFile == "" {
		target, err := seatwatch.NewTarget(defaultTargetName, defaultTargetURL,
			seatwatch.WithQuery(defaultQuery),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build default target: %w", err)
		}

		opts := []seatwatch.Option{
			seatwatch.WithTarget(target),
			seatwatch.WithInterval(interval),
		}
		if port != 0 {
			opts = append(opts, seatwatch.WithStatusPort(port))
		}
		return opts, nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return nil, err
	}

	// explicit flags win over config file values
	if cmd.Flags().Changed("interval") {
		opts = append(opts, seatwatch.WithInterval(interval))
	}
	if cmd.Flags().Changed("port") && port != 0 {
		opts = append(opts, seatwatch.WithStatusPort(port))
	}

	return opts, nil
}
