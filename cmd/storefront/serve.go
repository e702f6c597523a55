// cmd/storefront/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/internal/agent/chat"
	"storefront/internal/agent/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat proxy with health and metrics endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	chatCfg := chat.FromAgentConfig(a.cfg.Agent)
	if err := chatCfg.Validate(); err != nil {
		// requests are rejected until configured; the server still answers probes
		a.log.Warn("agent configuration incomplete", map[string]interface{}{"error": err})
	}

	client := chat.NewClient(chatCfg, stream.NewDecoder(a.log), a.log)
	handler := chat.NewHandler(client, func(ctx context.Context) error {
		return chatCfg.Validate()
	}, a.log)

	if a.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           chat.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("chat server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful Shutdown ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutdown signal received, stopping server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error shutting down server", map[string]interface{}{"error": err})
		return err
	}
	a.log.Info("Server stopped gracefully", nil)
	return nil
}
