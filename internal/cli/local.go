package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maauso/ffmpeg-api/internal/bootstrap"
	"github.com/maauso/ffmpeg-api/internal/config"
	"github.com/maauso/ffmpeg-api/internal/stdio"
)

func init() {
	rootCmd.AddCommand(localCmd)
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Serve JSON-RPC requests over stdin/stdout",
	Long: `local reads line-delimited JSON-RPC 2.0 requests from stdin and writes
responses to stdout, one per line. The session ends when stdin closes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(cmd)
	},
}

func runLocal(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol stream, logs go to stderr
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := stdio.NewServer(deps.Service, os.Stdin, os.Stdout, logger)

	logger.Info("local mode started, reading requests from stdin")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("local mode stopped")

	return nil
}
