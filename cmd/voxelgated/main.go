package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"voxelgate/internal/blocks"
	"voxelgate/internal/config"
	"voxelgate/internal/crypto"
	"voxelgate/internal/dispatch"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/metrics"
	"voxelgate/internal/scheduler"
	"voxelgate/internal/world"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOpts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, logOpts)
	if cfg.LogFormat == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, logOpts)
	}
	slog.SetDefault(slog.New(logHandler))
	slog.Info("voxelgate starting", "bind", cfg.BindAddress, "port", cfg.Port)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	m := metrics.New()
	bus := events.NewBus(256)
	codec := mcproto.NewRegistry()
	w := world.NewWorld(world.DimensionType{ID: cfg.DefaultDimID, SectionCount: cfg.SectionCount()})
	driver := world.NewDriver(bus, cfg.TickInterval)
	registry := blocks.NewDefaultRegistry()

	slog.Info("generating RSA key pairs", "count", crypto.RSAKeyPairPoolSize)
	rsaPool, err := crypto.NewRSAKeyPairPool()
	if err != nil {
		return fmt.Errorf("generating RSA key pair pool: %w", err)
	}

	sched := scheduler.New(cfg, bus, codec, w, driver, m, rsaPool)
	disp := dispatch.New(bus, sched.Lookup, w, registry)
	sched.SetDispatcher(disp)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		slog.Info("accept loop started", "address", ln.Addr())
		return sched.Accept(gctx, ln)
	})

	g.Go(func() error {
		return sched.Run(gctx)
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		g.Go(func() error {
			slog.Info("metrics server started", "address", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return metricsSrv.Close()
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
