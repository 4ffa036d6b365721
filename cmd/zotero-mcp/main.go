// Package main is the entry point for the zotero-mcp server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/zotero-mcp/internal/config"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/server"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "zotero-mcp",
	Short: "MCP server for searching and reading a Zotero library",
	Long: `zotero-mcp exposes a Zotero library to MCP clients. It searches items,
returns their metadata and reads the full text Zotero has indexed.

By default it talks to the Zotero web API and needs ZOTERO_LIBRARY_ID and
ZOTERO_API_KEY. Set ZOTERO_LOCAL=true to use the API of a running Zotero
desktop application instead.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zotero-mcp.yaml or ~/.config/zotero-mcp/zotero-mcp.yaml)")
	rootCmd.Flags().String("transport", "stdio", "MCP transport: stdio or http")
	rootCmd.Flags().String("addr", "localhost:8080", "listen address for the http transport")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	transport, _ := cmd.Flags().GetString("transport")
	addr, _ := cmd.Flags().GetString("addr")

	if transport != "stdio" && transport != "http" {
		return fmt.Errorf("unknown transport %q (expected stdio or http)", transport)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	zotero.UserAgent = "zotero-mcp/" + version
	server.Version = version

	backend, err := zotero.New(cfg, log)
	if err != nil {
		return err
	}

	log.Info("Starting zotero-mcp %s (%s transport)", version, transport)
	srv := server.CreateServer(backend, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if transport == "http" {
		return serveHTTP(ctx, srv, addr, log)
	}
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Server failed: %v", err)
		return err
	}
	return nil
}

// serveHTTP serves the streamable HTTP transport until ctx is done.
func serveHTTP(ctx context.Context, srv *mcp.Server, addr string, log logger.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on http://%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Error("HTTP server failed: %v", err)
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
