package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/comodofi/perps/config"
	"github.com/comodofi/perps/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trading API",
	Long: `Start the HTTP and WebSocket API that a browser front end trades
against. Sessions are ephemeral: each one holds its own balance, open
positions, and activity log.

Example:
  perps serve -f perps.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "./perps.yaml", "path to config file (YAML or JSON)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()

	core, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	ttl, _ := cfg.Series.CacheTTLDuration()
	hub := server.NewHub(core, ttl, logger)

	srv := server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		AccessKey:   cfg.Server.AccessKey,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, core, hub, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
