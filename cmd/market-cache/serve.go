package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the cache warmer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cc)
		},
	}
}

func runServe(ctx context.Context, cc *cliContext) error {
	root, err := NewCompositionRoot(cc.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := root.Cleanup(); err != nil {
			root.Logger.Error("Failed to cleanup resources", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if path := root.Config.Server.SocketPath; path != "" {
			errCh <- root.HTTPServer.StartUnixSocket(path)
			return
		}
		errCh <- root.HTTPServer.Start(root.Config.Server.ListenAddr)
	}()

	// The first warm-up runs while the server is already accepting requests
	if root.Config.Warmer.Enabled {
		root.Warmer.Start(ctx)
		defer root.Warmer.Stop()
	}

	select {
	case err := <-errCh:
		if err != nil {
			root.Logger.Error("Server failed", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	root.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := root.HTTPServer.Stop(shutdownCtx); err != nil {
		root.Logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	if path := root.Config.Server.SocketPath; path != "" {
		_ = os.Remove(path)
	}

	root.Logger.Info("Server exited")
	return nil
}
