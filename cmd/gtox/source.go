package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	gtoxhttp "github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/http"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/observability"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/session"
	"github.com/spf13/cobra"
)

// source is a loaded explorer and where its dataset came from.
type source struct {
	ex    *explorer.Explorer
	local *cli.LocalDataset
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Solver output to open")
	cmd.Flags().String("session", "", "Session ID on the server to browse")
	cmd.Flags().String("endpoint", "", "Node service URL (default from config)")
	cmd.Flags().Bool("remote", false, "Upload --file to the node service instead of reading it in-process")
	cmd.Flags().String("metrics-addr", "", "Expose navigation metrics on this address")
}

// openSource builds an explorer over the dataset selected by the flags and
// loads it.
func openSource(ctx context.Context, cmd *cobra.Command) (*source, error) {
	cfg := app.cfg
	logger := app.logger

	file, _ := cmd.Flags().GetString("file")
	sessionID, _ := cmd.Flags().GetString("session")
	remote, _ := cmd.Flags().GetBool("remote")
	if cmd.Flags().Changed("endpoint") {
		cfg.Explorer.Endpoint, _ = cmd.Flags().GetString("endpoint")
	}

	var (
		svc   ports.NodeService
		local *cli.LocalDataset
		err   error
	)
	switch {
	case file != "" && !remote:
		mgr := session.NewManager(memory.NewStore(), session.WithLogger(logger))
		svc = memory.NewNodeService(mgr, memory.WithSnapshotLimits(cfg.Server.SnapshotDepth, cfg.Server.CardSample))
		local = cli.NewLocalDataset(mgr, file, logger)
		if sessionID, err = local.Open(ctx); err != nil {
			return nil, err
		}
	case file != "":
		client := gtoxhttp.NewClient(cfg.Explorer.Endpoint, gtoxhttp.WithSnapshotDepth(cfg.Server.SnapshotDepth))
		if sessionID, err = upload(ctx, client, file); err != nil {
			return nil, err
		}
		logger.Info("dataset uploaded", "endpoint", cfg.Explorer.Endpoint, "session_id", sessionID)
		svc = client
	case sessionID != "":
		svc = gtoxhttp.NewClient(cfg.Explorer.Endpoint, gtoxhttp.WithSnapshotDepth(cfg.Server.SnapshotDepth))
	default:
		return nil, errors.New("either --file or --session is required")
	}

	metrics := observability.NewMetrics()
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		serveMetrics(ctx, addr, metrics)
	}

	ex := explorer.New(svc,
		explorer.WithLogger(logger),
		explorer.WithPolicy(explorer.Policy{
			DepthThreshold:  cfg.Explorer.DepthThreshold,
			ChunkSize:       cfg.Explorer.ChunkSize,
			PreExpandLevels: cfg.Explorer.PreExpandLevels,
			CollapseCards:   cfg.Explorer.CollapseCards,
		}),
		explorer.WithRequestTimeout(cfg.Explorer.RequestTimeout),
		explorer.WithLifecycleHooks(metrics.Hooks(logger)),
	)
	if err := ex.Load(ctx, sessionID); err != nil {
		ex.Close()
		return nil, err
	}
	return &source{ex: ex, local: local}, nil
}

func upload(ctx context.Context, client *gtoxhttp.Client, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	resp, err := client.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return resp.SessionID, nil
}

func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}
