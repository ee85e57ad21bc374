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

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/elevator/go/internal/config"
	"github.com/mcdev12/elevator/go/internal/game"
	"github.com/mcdev12/elevator/go/internal/gateway"
	"github.com/mcdev12/elevator/go/internal/report"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			config.SetupLogging(cfg)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	reporter, closeReporter, err := setupReporter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeReporter()

	sessions := game.NewManager(clockwork.NewRealClock(), reporter, cfg.Sessions.TTL)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.AllowedOrigins = cfg.CORS.AllowedOrigins
	gatewayService := gateway.NewService(gatewayConfig, sessions)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           gatewayService.Routes(gatewayConfig),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go gatewayService.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("elevator shutdown complete")
	return nil
}

// setupReporter builds the result sinks from config. Without any endpoint,
// results are only logged.
func setupReporter(ctx context.Context, cfg config.Config) (game.Reporter, func(), error) {
	var (
		reporters report.MultiReporter
		closers   []func() error
	)

	if cfg.Report.URL != "" {
		reporters = append(reporters, report.NewHTTPReporter(cfg.Report.URL, cfg.Report.Timeout))
		log.Info().Str("url", cfg.Report.URL).Msg("reporting results over HTTP")
	}

	if cfg.NATS.URL != "" {
		jsCfg := report.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.StreamName
		jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		js, err := report.NewJetStreamReporter(ctx, jsCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create JetStream reporter: %w", err)
		}
		reporters = append(reporters, js)
		closers = append(closers, js.Close)
		log.Info().Str("nats_url", cfg.NATS.URL).Msg("publishing results to JetStream")
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Error().Err(err).Msg("failed to close reporter")
			}
		}
	}

	if len(reporters) == 0 {
		return report.LogReporter{}, closeAll, nil
	}
	return reporters, closeAll, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
