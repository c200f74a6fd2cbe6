package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/codementor/internal/config"
	"github.com/felixgeelhaar/codementor/internal/daemon"
	mcpserver "github.com/felixgeelhaar/codementor/internal/mcp"
	"github.com/felixgeelhaar/codementor/internal/queue"
	"github.com/felixgeelhaar/codementor/internal/quota"
	"github.com/felixgeelhaar/codementor/internal/review"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagMCPHTTP    string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the review tools over MCP (stdio or HTTP)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// stdout carries the MCP protocol
		closeLog, err := daemon.SetupLogging(cfg.Log.File, daemon.ParseLogLevel(cfg.Log.Level))
		if err != nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("setup logging: %w", err)
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := daemon.OpenBackend(ctx, cfg)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		defer backend.Close()

		srv := mcpserver.NewServer(mcpserver.Config{
			Version:  Version,
			Reviewer: review.NewEngine(),
			Limiter:  quota.New(cfg.Review.FreeLimit),
			Recorder: backend.Recorder,
			History:  backend.Reader,
		})

		if flagMCPHTTP != "" {
			slog.Info("serving mcp over http", "addr", flagMCPHTTP)
			err = srv.ServeHTTP(ctx, flagMCPHTTP)
		} else {
			err = srv.ServeStdio(ctx)
		}
		if err != nil && ctx.Err() == nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Drain the review queue into the history store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		closeLog, err := daemon.SetupLogging(cfg.Log.File, daemon.ParseLogLevel(cfg.Log.Level))
		if err != nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("setup logging: %w", err)
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runWorker(ctx, cfg); err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file path (default: $CODEMENTOR_CONFIG or ./codementor.yaml)")
	mcpCmd.Flags().StringVar(&flagMCPHTTP, "http", "", "Serve MCP over HTTP on this address instead of stdio")
}

func runWorker(ctx context.Context, cfg *config.Config) error {
	store, err := daemon.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	conn, err := queue.NewConnection(cfg.Queue.URL)
	if err != nil {
		return fmt.Errorf("connect queue: %w", err)
	}
	defer conn.Close()

	consumer := queue.NewConsumer(conn, store, queue.ConsumerConfig{
		Workers:  cfg.Queue.Workers,
		Prefetch: cfg.Queue.Prefetch,
	})
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	<-ctx.Done()
	slog.Info("received signal, stopping worker")
	consumer.Stop()
	return nil
}

func loadConfig() (*config.Config, error) {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(appFs, path)
	if err != nil {
		exitCode = ExitUsageError
		return nil, err
	}
	return cfg, nil
}
