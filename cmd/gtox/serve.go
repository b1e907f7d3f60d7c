package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	gtoxhttp "github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/http"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game tree HTTP server",
	Long: `Starts the node service. Solver outputs are uploaded to /api/upload and
browsed node by node through /api/node, /api/direct_node and /api/tree.
Datasets live in memory unless a Redis address is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.cfg
		logger := app.logger
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis") {
			cfg.Redis.Addr, _ = cmd.Flags().GetString("redis")
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		mgr, closeStore, err := cli.NewManager(sigCtx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		metrics := observability.NewMetrics()
		srv := gtoxhttp.NewServer(mgr,
			gtoxhttp.WithLogger(logger),
			gtoxhttp.WithMetrics(metrics),
			gtoxhttp.WithMaxUploadSize(cfg.Server.MaxUploadSize),
			gtoxhttp.WithSnapshotLimits(cfg.Server.SnapshotDepth, cfg.Server.CardSample),
		)
		handler, err := srv.Handler()
		if err != nil {
			return fmt.Errorf("failed to build handler: %w", err)
		}

		httpServer := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.ReadTimeout,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("gtox server listening", "addr", cfg.Server.Addr)
			serverErrors <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				return httpServer.Close()
			}
			logger.Info("gtox server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":5000", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the dataset store (default: in memory)")
}
