package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sharpline/sharpline/internal/eligibility"
	httpapi "github.com/sharpline/sharpline/internal/interfaces/http"
	"github.com/sharpline/sharpline/internal/interfaces/ws"
	"github.com/sharpline/sharpline/internal/metrics"
	"github.com/sharpline/sharpline/internal/parlay"
	"github.com/sharpline/sharpline/internal/persistence"
	"github.com/sharpline/sharpline/internal/persistence/postgres"
	"github.com/sharpline/sharpline/internal/pipeline"
	"github.com/sharpline/sharpline/internal/pool"
)

func newServeCmd() *cobra.Command {
	var (
		host      string
		port      int
		redisAddr string
		auditDSN  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation and parlay HTTP service",
		Long:  "Serves POST /v1/evaluate, POST /v1/parlay, GET /health, GET /metrics and a websocket feed of EDGE signals at /ws/edges.",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadSportsRegistry()
			if err != nil {
				return err
			}
			profiles, err := loadParlayConfig()
			if err != nil {
				return err
			}

			metricsRegistry := metrics.NewRegistry()
			metricsRegistry.MustRegister()

			evaluator := pipeline.NewEvaluator(registry, eligibility.NewGate(nil), metricsRegistry)
			builder := parlay.NewBuilder(profiles, registry)

			var legStore *pool.LegStore
			if redisAddr != "" {
				legStore = pool.NewLegStore(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
				defer legStore.Close()
				log.Info().Str("addr", redisAddr).Msg("leg pool store connected")
			}

			var audit persistence.AuditRepo
			if auditDSN != "" {
				db, err := postgres.Connect(auditDSN)
				if err != nil {
					return err
				}
				defer db.Close()
				audit = persistence.NewBreakerRepo(postgres.NewAuditRepo(db, 5*time.Second))
				log.Info().Msg("audit sink connected")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hub := ws.NewHub()
			go hub.Run(ctx)

			handlers := httpapi.NewHandlers(evaluator, builder, audit, legStore, hub).WithMetrics(metricsRegistry)

			config := httpapi.DefaultServerConfig()
			config.Host = host
			config.Port = port
			server := httpapi.NewServer(config, handlers)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Bind address")
	cmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the leg pool store (disabled if empty)")
	cmd.Flags().StringVar(&auditDSN, "audit-dsn", "", "PostgreSQL DSN for the audit sink (disabled if empty)")

	return cmd
}
