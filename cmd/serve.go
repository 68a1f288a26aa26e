package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/wallproof/internal/config"
	"github.com/kozaktomas/wallproof/internal/database/postgres"
	"github.com/kozaktomas/wallproof/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proof API server",
	Long: `Start the Wallproof HTTP API.
The server stores configurations posted by the editor and renders their
proof PDFs on demand. DATABASE_URL is required.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to (overrides WEB_HOST)")
}

// resolveServeHostPort resolves port and host from the environment, with
// explicitly set flags taking precedence.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port, host := cfg.Web.Port, cfg.Web.Host
	if cmd.Flags().Changed("port") {
		port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		host = mustGetString(cmd, "host")
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	configureLogging(cfg.Log)

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	fmt.Printf("Configuration storage enabled (PostgreSQL)\n")

	renderer, debugRenderer := newRenderers(cfg)
	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, renderer, debugRenderer, port, host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Wallproof API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	err := server.Start()
	if pool := postgres.GetGlobalPool(); pool != nil {
		pool.Close()
	}
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
