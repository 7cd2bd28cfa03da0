package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"supplier_ranker/internal/adapters/csvsource"
	server "supplier_ranker/internal/adapters/http_server"
	"supplier_ranker/internal/adapters/observability"
	redisad "supplier_ranker/internal/adapters/redis"
	"supplier_ranker/internal/app"
	"supplier_ranker/internal/bootstrap"
	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/scoring"
	"supplier_ranker/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("scoring config")
	}
	engine := scoring.New(scoringCfg)

	src, closeSrc, err := bootstrap.Source(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset source")
	}
	defer closeSrc()

	// initial load is fatal on failure
	store := dataset.NewStore(nil)
	reloader := app.NewReloadService(src, engine, store)
	if _, err := reloader.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("initial dataset load failed")
	}

	var cache domain.Cache = redisad.Noop{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "suppliers:")
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; continuing, cache errors are ignored")
		}
		defer rc.Close()
		cache = rc
	}
	q := app.NewQueryService(store, engine, cache, cfg.CacheTTL)

	// http
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	srv := server.New(server.Options{
		Timeout:        cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, R: reloader})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	// SIGHUP reloads the dataset from any source
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Info().Msg("SIGHUP received; reloading dataset")
				reloader.ReloadOrKeep(gctx)
			}
		}
	})

	if cs, ok := src.(*csvsource.Source); ok && cfg.WatchData {
		g.Go(func() error {
			return dataset.Watch(gctx, cs.Path(), 500*time.Millisecond, func() {
				reloader.ReloadOrKeep(gctx)
			})
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("shutdown complete")
}
