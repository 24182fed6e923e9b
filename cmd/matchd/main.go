// Command matchd runs the matching engine behind an HTTP/WebSocket server,
// wiring together internal/config, internal/logging, engine.Engine and the
// server package, the way the teacher's own cmd/matchd bootstraps its
// OrderBook.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"limitbook/bots"
	"limitbook/engine"
	"limitbook/internal/config"
	"limitbook/internal/logging"
	"limitbook/server"
)

func main() {
	configPath := flag.String("config", "matchd.yaml", "path to the configuration file")
	withBots := flag.Bool("bots", false, "run the synthetic bot swarm alongside the server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metrics := engine.NewMetrics(registry)
	eng := engine.NewEngine(engine.EngineConfig{
		GFDHour: cfg.GFDHour,
		Logger:  logger,
		Metrics: metrics,
	})
	defer eng.Close()

	srv := server.New(eng, cfg, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	appSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Routes()}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *withBots {
		sup := bots.NewSupervisor(eng, 50*time.Millisecond, logger)
		go sup.Start(ctx)
	}

	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server exited", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("matchd listening", zap.String("addr", cfg.ListenAddr), zap.String("symbol", cfg.Symbol))
		if err := appSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = appSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
