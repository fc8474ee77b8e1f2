package main

import (
	"context"
	"net/http"
	"time"

	"izakaya/answer"
	answerapp "izakaya/answer/application"
	answerinfra "izakaya/answer/infra"
	"izakaya/config"
	"izakaya/menu"
	"izakaya/middleware/ratelimit"
	rlapp "izakaya/middleware/ratelimit/application"
	"izakaya/middleware/ratelimit/domain"
	"izakaya/middleware/ratelimit/infra"
	"izakaya/server"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type janitor interface {
	StartJanitor(ctx infra.DoneContext)
}

type app struct {
	handler  http.Handler
	janitors []janitor
}

func (a *app) startJanitors(ctx context.Context) {
	for _, j := range a.janitors {
		j.StartJanitor(ctx)
	}
}

// buildApp monta stores, serviços e a cadeia de middlewares. rdb pode ser nil
// quando nenhum recurso do Redis está habilitado.
func buildApp(cfg config.Config, log zerolog.Logger, rdb *redis.Client) *app {
	a := &app{}

	// estatísticas: Redis quando pedido, senão memória; ambos expostos em /api/stats
	var (
		stats  domain.StatsStore
		reader infra.StatsReader
	)
	if cfg.Redis.Stats && rdb != nil {
		rs := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Redis.Prefix+":stats"),
			infra.WithStatsTTL(cfg.Redis.StatsTTL.ToDuration()),
			infra.WithStatsBucket(cfg.Redis.StatsBucket),
			infra.WithStatsTrackKeys(cfg.Redis.TrackKeys),
		)
		stats, reader = rs, rs
	} else {
		ms := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Redis.TrackKeys))
		stats, reader = ms, ms
	}

	// janela por cliente e cota diária
	var (
		window  domain.LimiterStore
		counter domain.QuotaCounter
	)
	if cfg.Redis.SharedLimits && rdb != nil {
		window = infra.NewRedisWindowStore(
			rdb,
			cfg.Answer.PerClientMax,
			cfg.Answer.PerClientWindow.ToDuration(),
			infra.WithRedisWindowPrefix(cfg.Redis.Prefix+":window"),
			infra.WithRedisWindowLogger(log),
		)
		counter = infra.NewRedisQuotaCounter(
			rdb,
			infra.WithQuotaPrefix(cfg.Redis.Prefix+":quota"),
			infra.WithQuotaTTL(cfg.Redis.QuotaTTL.ToDuration()),
		)
	} else {
		ws := infra.NewWindowStore(
			cfg.Answer.PerClientMax,
			cfg.Answer.PerClientWindow.ToDuration(),
			infra.WithWindowCleanupEvery(cfg.Answer.CleanupEvery.ToDuration()),
		)
		a.janitors = append(a.janitors, ws)
		window = ws
		counter = infra.NewMemoryQuotaCounter()
	}
	quota := rlapp.QuotaService{Counter: counter, Limit: cfg.Answer.DailyLimit}

	upstream := answerinfra.NewClient(
		cfg.Upstream.APIKey,
		answerinfra.WithEndpoint(cfg.Upstream.Endpoint),
		answerinfra.WithModel(cfg.Upstream.Model),
		answerinfra.WithTemperature(cfg.Upstream.Temperature),
	)

	// vagas para o modelo, separadas das vagas do servidor
	var upstreamSlots rlapp.ConcurrencyService
	if cfg.Upstream.MaxInFlight > 0 {
		upstreamSlots = rlapp.ConcurrencyService{
			Pool:           infra.NewSemaphorePool(cfg.Upstream.MaxInFlight),
			AcquireTimeout: cfg.Upstream.QueueTimeout.ToDuration(),
		}
	}
	serverSlots := rlapp.ConcurrencyService{
		AcquireTimeout: cfg.Server.ConcurrencyTimeout.ToDuration(),
	}
	if cfg.Server.ConcurrencyMax > 0 {
		serverSlots.Pool = infra.NewSemaphorePool(cfg.Server.ConcurrencyMax)
	}

	validator := answerapp.DefaultValidator()
	validator.MaxChars = cfg.Answer.MaxQuestionChars
	if len(cfg.Answer.Denylist) > 0 {
		validator.Denylist = cfg.Answer.Denylist
	}

	answerHandler := &answer.Handler{
		Service: answerapp.Service{
			Quota:     quota,
			Upstream:  upstream,
			Slots:     upstreamSlots,
			Validator: validator,
			Timeout:   cfg.Upstream.Timeout.ToDuration(),
			Log:       log.With().Str("component", "answer").Logger(),
		},
		Stats: stats,
		Limit: ratelimit.Middleware(ratelimit.Options{
			Store:               window,
			Stats:               stats,
			KeyFn:               ratelimit.ForwardedKeyFunc(),
			RetryAfter:          cfg.Answer.PerClientWindow.ToDuration(),
			AddRateLimitHeaders: cfg.Edge.AddHeaders,
			OnReject:            answer.RejectTooManyRequests,
		}),
		Production: cfg.IsProduction(),
		Origin:     cfg.Server.ProductionOrigin,
		Log:        log.With().Str("component", "answer").Logger(),
	}
	menuHandler := &menu.Handler{Picker: menu.NewPicker(), Log: log}

	mux := server.NewMux(server.Options{
		SoundsDir: cfg.Server.SoundsDir,
		Stats:     reader,
		Usage:     quota.Usage,
		InFlight: map[string]server.InFlightFunc{
			"server":   serverSlots.InFlight,
			"upstream": upstreamSlots.InFlight,
		},
		Log: log,
	}, answerHandler, menuHandler)

	// de dentro para fora: mux <- concorrência <- token bucket <- recover <- log
	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Pool:           serverSlots.Pool,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: serverSlots.AcquireTimeout,
	})(h)
	if cfg.Edge.Enabled {
		edge := infra.NewStore(cfg.Edge.RPS, cfg.Edge.Burst)
		a.janitors = append(a.janitors, edge)
		h = ratelimit.Middleware(ratelimit.Options{
			Store:               edge,
			KeyHeader:           cfg.Edge.KeyHeader,
			TrustXForwardedFor:  cfg.Edge.TrustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.Edge.RetryAfter.ToDuration(),
			AddRateLimitHeaders: cfg.Edge.AddHeaders,
			OnReject:            answer.RejectTooManyRequests,
		})(h)
	}
	h = server.Recover(log)(h)
	h = server.RequestLog(log)(h)

	a.handler = h
	return a
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
