// Command nomad drives the relocation recommendation pipeline: it fetches
// (or reuses) the daily fused dataset and prints ranked city tables.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/adapter/httpapi"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/adapter/numbeo"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/adapter/speedtest"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/adapter/visa"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/cache"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/config"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/pipeline"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, friendlyMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nomad",
		Short:         "Rank cities for relocation by visa access, cost of living and connectivity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().Bool("cache-only", false, "never fetch; serve the newest cached dataset")
	root.PersistentFlags().Bool("fresh", false, "allow network fetches without prompting")
	root.PersistentFlags().String("metrics-addr", "", "serve /healthz and /metrics on this address while running")

	root.AddCommand(
		newRecommendCmd(),
		newDatasetCmd(),
		newVisaCmd(),
		newCostCmd(),
		newSpeedCmd(),
	)
	return root
}

// setup loads config, resolves the fresh-vs-cache-only mode (prompting when
// neither flag decides it), and wires the engine. It must run before any
// pipeline call so no fetch happens in an undecided mode.
func setup(cmd *cobra.Command) (*pipeline.Engine, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	cacheOnlyFlag, _ := cmd.Root().PersistentFlags().GetBool("cache-only")
	freshFlag, _ := cmd.Root().PersistentFlags().GetBool("fresh")
	switch {
	case cacheOnlyFlag:
		cfg.CacheOnly = true
	case freshFlag:
		cfg.CacheOnly = false
	default:
		cfg.CacheOnly = promptCacheOnly(cmd, cfg.CacheOnly)
	}

	metrics := observability.NewMetrics()

	store, err := cache.New(cfg.CacheDir, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	visaClient := visa.NewClient(cfg.VisaPageURL, cfg.FetchTimeout, logger, metrics)
	costClient := numbeo.NewClient(cfg.NumbeoBaseURL, cfg.FetchTimeout, cfg.CostDelay, cfg.CostMaxAttempts, logger, metrics)
	speedClient := speedtest.NewClient(cfg.SpeedtestPageURL, cfg.FetchTimeout, logger, metrics)

	engine := pipeline.New(visaClient, costClient, speedClient, store, pipeline.Options{
		CacheKey:      cfg.CacheKey,
		HomeCountry:   cfg.HomeCountry,
		Weights:       cfg.Weights,
		RetentionDays: cfg.RetentionDays,
		Cities:        cfg.Cities,
		CacheOnly:     cfg.CacheOnly,
	}, logger, metrics)

	stop := func() {}
	metricsAddr, _ := cmd.Root().PersistentFlags().GetString("metrics-addr")
	if metricsAddr != "" {
		srv := httpapi.NewServer(metricsAddr, engine, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		stop = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}
	}

	if !cfg.CacheOnly {
		fmt.Fprintln(cmd.OutOrStdout(), "Fetching fresh data when needed; the first run of the day may take a while.")
	}

	return engine, logger, stop, nil
}

// promptCacheOnly asks the user once, before any pipeline call, whether
// this run may touch the network. Unreadable input keeps the default.
func promptCacheOnly(cmd *cobra.Command, def bool) bool {
	fmt.Fprint(cmd.OutOrStdout(), "Fetch fresh data if today's cache is missing? [Y/n] (n = cache-only) ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "no":
		return true
	case "", "y", "yes":
		return false
	default:
		return def
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// friendlyMessage turns pipeline error types into actionable messages.
func friendlyMessage(err error) string {
	var rateLimited *domain.RateLimitError
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrNoCachedData):
		return "No cached data available. Re-run without cache-only mode to fetch fresh data first."
	case errors.As(err, &rateLimited):
		return fmt.Sprintf("The %s source is rate-limiting us. Wait a few minutes and try again, or use --cache-only.", rateLimited.Source)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Could not fetch data from %s: %v. Check connectivity or use --cache-only.", fetchErr.Source, fetchErr.Err)
	default:
		return "Error: " + err.Error()
	}
}
