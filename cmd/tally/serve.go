package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ganot/tally-mcp/internal/config"
	"github.com/ganot/tally-mcp/internal/mcp"
	"github.com/ganot/tally-mcp/internal/transport"
)

const (
	sessionTimeout  = 30 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func addServe(topLevel *cobra.Command, root *rootOptions) {
	var (
		transportMode string
		host          string
		port          int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio or streamable HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(root, func(cfg *config.Config) {
				if cmd.Flags().Changed("transport") {
					cfg.Server.Transport = transportMode
				}
				if cmd.Flags().Changed("host") {
					cfg.Server.Host = host
				}
				if cmd.Flags().Changed("port") {
					cfg.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer rt.close()

			server := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Timesheet: rt.app,
					Timers:    rt.app.Timers,
					Activity:  rt.app,
				},
				Version: version,
				Logger:  rt.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go rt.app.WatchEvents(ctx, nil)

			if rt.cfg.Server.Transport == config.TransportHTTP {
				return runHTTP(ctx, rt.logger, server, rt.cfg.Server)
			}
			return runStdio(ctx, rt.logger, server)
		},
	}
	cmd.Flags().StringVar(&transportMode, "transport", config.TransportStdio, "transport: stdio or http")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port")

	topLevel.AddCommand(cmd)
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is canceled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, cfg config.ServerConfig) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: sessionTimeout},
	)

	var auth func(http.Handler) http.Handler
	if cfg.AuthToken != "" {
		auth = transport.AuthMiddleware(cfg.AuthToken)
	} else {
		logger.Warn("http transport running without auth token")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(mcpHandler, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
