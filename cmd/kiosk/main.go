package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"izakaya/ambience"
	"izakaya/ambience/application"
	"izakaya/ambience/infra"
	"izakaya/config"

	"github.com/joho/godotenv"
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
	// stdout é da conversa; logs vão para stderr
	log := config.NewLogger(cfg.Log, os.Stderr)

	catalog, err := ambience.LoadCatalog(cfg.Audio.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scene catalog")
	}

	playback, err := infra.NewOtoPlayback(cfg.Server.SoundsDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open audio device")
	}

	engine := application.NewEngine(playback, catalog.EngineConfig(engineConfig(cfg.Audio)), log)
	director := ambience.NewDirector(engine, catalog, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// antes do primeiro gesto isto só fica pendente
	if err := director.EnterScene(cfg.Kiosk.StartScene); err != nil {
		log.Warn().Err(err).Str("scene", cfg.Kiosk.StartScene).Msg("start scene not found")
	}

	k := &kiosk{
		dir:         director,
		api:         newAPIClient(cfg.Kiosk.APIURL, cfg.Kiosk.Timeout.ToDuration()),
		out:         os.Stdout,
		log:         log,
		typingEvery: 120 * time.Millisecond,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := playback.Preload(gctx, catalog.URIs()...); err != nil {
			log.Warn().Err(err).Msg("preload incomplete; missing sounds stay silent")
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return k.run(gctx, os.Stdin)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("kiosk stopped")
	}

	// deixa o fade de saída terminar antes de soltar o dispositivo
	director.Leave()
	time.Sleep(cfg.Audio.ToggleFade.ToDuration())
	if err := engine.Close(); err != nil {
		log.Warn().Err(err).Msg("close engine")
	}
}

func engineConfig(a config.AudioConfig) application.Config {
	cfg := application.DefaultConfig()
	cfg.SceneFade = a.SceneFade.ToDuration()
	cfg.ToggleFade = a.ToggleFade.ToDuration()
	cfg.FadeSteps = a.FadeSteps
	cfg.LoopMaskWindow = a.LoopMaskWindow.ToDuration()
	cfg.LoopMaskPoll = a.LoopMaskPoll.ToDuration()
	cfg.CueMinGap = a.CueMinGap.ToDuration()
	return cfg
}
