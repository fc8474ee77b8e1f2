package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"izakaya/config"
	"izakaya/server"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to config YAML")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := config.NewLogger(cfg.Log, os.Stdout)

	if cfg.Upstream.APIKey == "" {
		log.Warn().Str("env", cfg.Upstream.APIKeyEnv).Msg("upstream api key missing; every answer will be a fallback line")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.Redis.SharedLimits || cfg.Redis.Stats {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		if err := pingRedis(ctx, rdb); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping failed")
		}
	}

	a := buildApp(cfg, log, rdb)
	a.startJanitors(ctx)

	srv := server.New(cfg.Server.ListenAddr, a.handler, server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout.ToDuration(),
		Write:      cfg.Server.WriteTimeout.ToDuration(),
	})

	log.Info().
		Str("addr", cfg.Server.ListenAddr).
		Str("env", cfg.Server.Environment).
		Int("per_client_max", cfg.Answer.PerClientMax).
		Dur("per_client_window", cfg.Answer.PerClientWindow.ToDuration()).
		Int("daily_limit", cfg.Answer.DailyLimit).
		Bool("edge", cfg.Edge.Enabled).
		Bool("shared_limits", cfg.Redis.SharedLimits).
		Bool("redis_stats", cfg.Redis.Stats).
		Msg("izakaya listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.ToDuration())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("bye")
}
