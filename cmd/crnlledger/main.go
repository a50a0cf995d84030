package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crnlicp/chronolock/pkg/api"
	"github.com/crnlicp/chronolock/pkg/config"
	"github.com/crnlicp/chronolock/pkg/idgen"
	"github.com/crnlicp/chronolock/pkg/journal"
	"github.com/crnlicp/chronolock/pkg/ledger"
	"github.com/crnlicp/chronolock/pkg/log"
	"github.com/crnlicp/chronolock/pkg/metrics"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crnlledger",
	Short: "crnlledger - the chronolock fungible ledger",
	Long: `crnlledger runs the fungible-token ledger: balances, allowances,
the transfer-fee treasury, referral rewards, and the vesting-gated team
pool, served over HTTP+JSON.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"crnlledger version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (optional)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format; overrides LOG_JSON")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ledger server",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.Load(envFile); err != nil {
			return err
		}
		cfg := config.LoadLedgerConfig()

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.LogLevel = level
		}
		if json, _ := cmd.Flags().GetBool("log-json"); json {
			cfg.LogJSON = json
		}
		log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
		logger := log.WithComponent("crnlledger")

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		j := journal.New(store)
		ids := idgen.New(store, nil)

		admin := config.AdminPrincipalOrDefault(cfg.AdminPrincipal)
		l, err := ledger.New(store, j, ids, ledger.InitParams{
			Name:            cfg.Name,
			Symbol:          cfg.Symbol,
			TotalSupply:     types.NewAmount(cfg.TotalSupply),
			VestingDuration: int64(cfg.VestingDuration.Seconds()),
			TransferFee:     types.NewAmount(cfg.TransferFee),
			Admin:           admin,
			Now:             time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize ledger: %w", err)
		}

		collector := metrics.NewCollector(l, nil, store)
		collector.Start()
		logger.Info().Msg("metrics collector started")

		healthServer := api.NewHealthServer(store)
		go func() {
			if err := healthServer.Start(cfg.HealthAddr); err != nil {
				logger.Error().Err(err).Msg("health server error")
			}
		}()
		logger.Info().Str("addr", cfg.HealthAddr).Msg("health server listening")

		apiServer := api.NewServer(l, nil, nil, nil)
		errCh := make(chan error, 1)
		go func() {
			if err := apiServer.Start(cfg.APIAddr); err != nil {
				errCh <- fmt.Errorf("API server error: %w", err)
			}
		}()
		logger.Info().Str("addr", cfg.APIAddr).Msg("ledger API listening")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			logger.Info().Msg("shutdown signal received")
		case err := <-errCh:
			logger.Error().Err(err).Msg("server error, shutting down")
		}

		collector.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Stop(ctx); err != nil {
			logger.Error().Err(err).Msg("error during API server shutdown")
		}
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing storage")
		}

		logger.Info().Msg("shutdown complete")
		return nil
	},
}
