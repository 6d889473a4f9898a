package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/config"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/pipeline"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/project"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/repository"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/wiki"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/workitem"
	"github.com/olgasafonova/azure-devops-mcp-server/tools"
	"github.com/olgasafonova/azure-devops-mcp-server/tracing"
)

const shutdownTimeout = 5 * time.Second

const serverInstructions = `Azure DevOps MCP Server gives access to one Azure DevOps organization.

Wikis: azdo_list_wikis, azdo_get_wiki_page_content, azdo_get_wiki_page, azdo_create_wiki, azdo_update_wiki_page
Work items: azdo_get_work_items (by ID), azdo_list_work_items (WIQL query)
Browse: azdo_list_projects, azdo_get_project, azdo_list_repositories, azdo_list_build_definitions

Most tools take an optional project; the configured default project is used when it is omitted.
Read a page with azdo_get_wiki_page before replacing it with azdo_update_wiki_page.`

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio, or streamable HTTP with --http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

// newMCPServer builds the MCP server with every tool registered against provider.
func newMCPServer(provider *devops.Provider, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	registry := tools.NewHandlerRegistry(tools.Clients{
		Wiki:      wiki.NewClient(provider, logger),
		WorkItems: workitem.NewClient(provider, logger),
		Projects:  project.NewClient(provider, logger),
		Repos:     repository.NewClient(provider, logger),
		Pipelines: pipeline.NewClient(provider, logger),
	}, logger)
	registry.RegisterAll(server)
	return server
}

func runServe(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer recoverPanic(logger, "serve", &err)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceCfg, err := tracing.FromEnv(ServerVersion)
	if err != nil {
		return err
	}
	shutdownTracing, err := tracing.Setup(ctx, traceCfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	provider := devops.NewProvider(cfg, devops.WithLogger(logger))
	defer provider.Close()

	server := newMCPServer(provider, logger)

	logger.Info("Starting Azure DevOps MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"config", cfg,
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.MetricsAddr, logger) })
	}
	g.Go(func() error {
		if cfg.HTTPAddr != "" {
			return serveHTTP(gctx, cfg, server, logger)
		}
		err := server.Run(gctx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// serveHTTP runs the streamable HTTP transport until ctx is done.
func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	secured := NewSecurityMiddleware(handler, logger, DefaultSecurityConfig())
	defer secured.Close()

	mux := http.NewServeMux()
	mux.Handle("/mcp", secured)
	mux.HandleFunc("/healthz", healthz)

	logger.Info("Serving streamable HTTP", "addr", cfg.HTTPAddr, "path", "/mcp")
	return listen(ctx, &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
}

// serveMetrics exposes Prometheus metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthz)

	logger.Info("Serving metrics", "addr", addr, "path", "/metrics")
	return listen(ctx, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
}

func listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
