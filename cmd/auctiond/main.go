// Command auctiond runs the Dutch-auction settlement engine.
//
// The daemon wires the engine to a store (in-memory by default, PostgreSQL
// with --postgres-dsn), the built-in account ledger, optional AMQP event
// publishing and the HTTP API with its health, drain and metrics endpoints.
//
// # Usage
//
//	go run ./cmd/auctiond --addr=:8080 --metrics-addr=:9090
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shkulipa/auction-contract/api/httpserver"
	"github.com/Shkulipa/auction-contract/auction"
	"github.com/Shkulipa/auction-contract/ledger"
	"github.com/Shkulipa/auction-contract/metrics"
	"github.com/Shkulipa/auction-contract/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A local .env is optional; flags still win over the environment.
	_ = godotenv.Load()

	var (
		addr        = flag.String("addr", envOr("AUCTIOND_ADDR", ":8080"), "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", envOr("AUCTIOND_METRICS_ADDR", ""), "Metrics listen address (empty disables)")
		enablePprof = flag.Bool("pprof", false, "Enable pprof debug API")
		postgresDSN = flag.String("postgres-dsn", envOr("AUCTIOND_POSTGRES_DSN", ""), "PostgreSQL DSN (empty uses the in-memory store)")
		amqpURL     = flag.String("amqp-url", envOr("AUCTIOND_AMQP_URL", ""), "AMQP broker URL for event publishing (empty disables)")
		feeAccount  = flag.String("fee-account", envOr("AUCTIOND_FEE_ACCOUNT", "treasury"), "Ledger account retaining protocol fees")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var store auction.Store
	if *postgresDSN != "" {
		pg, err := services.NewPostgresStore(*postgresDSN)
		if err != nil {
			log.Error("Postgres store init failed", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		log.Info("Using postgres auction store")
	} else {
		store = auction.NewMemoryStore()
		log.Info("Using in-memory auction store")
	}

	accounts := ledger.New()
	engine := auction.NewEngine(store, accounts, auction.Config{
		FeeAccount: auction.AccountID(*feeAccount),
		Log:        log,
	})

	if *amqpURL != "" {
		events, err := services.NewAMQPEvents(*amqpURL, services.DefaultExchange, log)
		if err != nil {
			log.Error("AMQP publisher init failed", "err", err)
			os.Exit(1)
		}
		defer events.Close()
		engine.Subscribe(events)
		log.Info("Publishing lifecycle events", "exchange", services.DefaultExchange)
	}

	m := metrics.New("auctiond")
	handler := httpserver.NewHandler(engine, accounts, m, auction.SystemClock{}, log)

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               *addr,
		MetricsAddr:              *metricsAddr,
		Metrics:                  m,
		EnablePprof:              *enablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              10 * time.Second,
		WriteTimeout:             120 * time.Second, // price feeds are long-lived
	}, handler)
	if err != nil {
		log.Error("Server init failed", "err", err)
		os.Exit(1)
	}

	srv.RunInBackground()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	srv.Shutdown()
}
