package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riskgate/riskgate/internal/core/api"
	"github.com/riskgate/riskgate/internal/core/config"
	"github.com/riskgate/riskgate/internal/core/db"
	"github.com/riskgate/riskgate/internal/core/server"
	"github.com/riskgate/riskgate/internal/engine"
	"github.com/riskgate/riskgate/internal/observability"
	"github.com/riskgate/riskgate/internal/registry"
	"github.com/riskgate/riskgate/internal/store"
)

const Version = "0.1.0"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP decision API service",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serverCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Storeless by default; a database URL switches on write-through
	// persistence of custom rules.
	var ruleStore store.RuleStore = store.NewMemory()
	if cfg.DatabaseURL != "" {
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		if err := db.MigrateUp(database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		ruleStore, err = store.NewSQL(database)
		if err != nil {
			return fmt.Errorf("failed to create rule store: %w", err)
		}
	}

	reg := registry.New(ruleStore, logger)
	if err := reg.LoadPersisted(ctx); err != nil {
		return err
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	evaluator := engine.NewEvaluator(logger)

	service, err := api.NewService(reg, evaluator, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting riskgate decision API",
		zap.String("version", Version),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
