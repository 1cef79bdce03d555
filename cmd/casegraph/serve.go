package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"casegraph/internal/framework"
	"casegraph/internal/logger"
	"casegraph/internal/mcp"
)

var (
	serveSnapshot    bool
	serveMetricsAddr string
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&serveSnapshot, "snapshot", false, "Serve the saved snapshot instead of re-ingesting")
	cmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	st, err := p.loadCase(ctx, serveSnapshot, time.Now().UTC())
	if err != nil {
		return err
	}

	opts := mcp.Options{CaseID: p.cfg.Case.ID, Version: version}
	if strings.TrimSpace(p.cfg.Database.DSN) != "" {
		db, err := p.openDB(ctx)
		if err != nil {
			logger.Warn("report archive unavailable", "error", err)
		} else {
			defer db.Close(ctx)
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			opts.Archive = db
		}
	}

	if serveMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: serveMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("serving metrics", "addr", serveMetricsAddr)
	}

	server := mcp.NewServer(framework.New(p.rules, p.cfg.Analysis), st, opts)
	return server.Run(ctx, &sdk.StdioTransport{})
}
