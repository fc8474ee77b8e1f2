// Package config carrega a configuração dos binários: valores padrão, depois
// o YAML (opcional), depois variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Edge     EdgeConfig     `yaml:"edge"`
	Answer   AnswerConfig   `yaml:"answer"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Redis    RedisConfig    `yaml:"redis"`
	Audio    AudioConfig    `yaml:"audio"`
	Kiosk    KioskConfig    `yaml:"kiosk"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	ListenAddr        string   `yaml:"listen_addr"`
	Environment       string   `yaml:"environment"` // development, production
	ProductionOrigin  string   `yaml:"production_origin"`
	SoundsDir         string   `yaml:"sounds_dir"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	// ConcurrencyMax limita requisições simultâneas; 0 desliga.
	ConcurrencyMax     int      `yaml:"concurrency_max"`
	ConcurrencyTimeout Duration `yaml:"concurrency_timeout"`
}

// EdgeConfig é o token bucket aplicado a todas as rotas.
type EdgeConfig struct {
	Enabled    bool     `yaml:"enabled"`
	RPS        float64  `yaml:"rps"`
	Burst      int      `yaml:"burst"`
	KeyHeader  string   `yaml:"key_header"`
	TrustXFF   bool     `yaml:"trust_xff"`
	AddHeaders bool     `yaml:"add_headers"`
	RetryAfter Duration `yaml:"retry_after"`
}

type AnswerConfig struct {
	PerClientMax     int      `yaml:"per_client_max"`
	PerClientWindow  Duration `yaml:"per_client_window"`
	DailyLimit       int      `yaml:"daily_limit"`
	MaxQuestionChars int      `yaml:"max_question_chars"`
	Denylist         []string `yaml:"denylist"`
	// CleanupEvery é o intervalo do janitor da janela em memória.
	CleanupEvery Duration `yaml:"cleanup_every"`
}

type UpstreamConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	Model       string   `yaml:"model"`
	Temperature float64  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	// MaxInFlight limita chamadas simultâneas ao modelo; 0 desliga.
	MaxInFlight  int      `yaml:"max_in_flight"`
	QueueTimeout Duration `yaml:"queue_timeout"`

	// APIKey vem só do ambiente (APIKeyEnv).
	APIKey string `yaml:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// SharedLimits move janela por cliente e cota diária para o Redis.
	SharedLimits bool `yaml:"shared_limits"`
	// Stats grava as estatísticas no Redis em vez da memória.
	Stats       bool     `yaml:"stats"`
	Prefix      string   `yaml:"prefix"`
	StatsTTL    Duration `yaml:"stats_ttl"`
	StatsBucket string   `yaml:"stats_bucket"` // minute, hour, "" (sem bucket)
	TrackKeys   bool     `yaml:"track_keys"`
	// QuotaTTL é a expiração da chave diária da cota.
	QuotaTTL Duration `yaml:"quota_ttl"`
}

type AudioConfig struct {
	Catalog        string   `yaml:"catalog"` // vazio = catálogo embutido
	SceneFade      Duration `yaml:"scene_fade"`
	ToggleFade     Duration `yaml:"toggle_fade"`
	FadeSteps      int      `yaml:"fade_steps"`
	LoopMaskWindow Duration `yaml:"loop_mask_window"`
	LoopMaskPoll   Duration `yaml:"loop_mask_poll"`
	CueMinGap      Duration `yaml:"cue_min_gap"`
}

type KioskConfig struct {
	APIURL     string   `yaml:"api_url"`
	StartScene string   `yaml:"start_scene"`
	Timeout    Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:         ":8080",
			Environment:        "development",
			ProductionOrigin:   "https://ren-izakaya.vercel.app",
			SoundsDir:          "./public/sounds",
			ReadHeaderTimeout:  Duration(10 * time.Second),
			WriteTimeout:       Duration(30 * time.Second),
			ShutdownTimeout:    Duration(10 * time.Second),
			ConcurrencyMax:     100,
			ConcurrencyTimeout: 0,
		},
		Edge: EdgeConfig{
			Enabled:    true,
			RPS:        10,
			Burst:      20,
			RetryAfter: Duration(1 * time.Second),
		},
		Answer: AnswerConfig{
			PerClientMax:     5,
			PerClientWindow:  Duration(60 * time.Second),
			DailyLimit:       1000,
			MaxQuestionChars: 500,
			CleanupEvery:     Duration(2 * time.Minute),
		},
		Upstream: UpstreamConfig{
			Endpoint:    "https://api.x.ai/v1/chat/completions",
			Model:       "grok-3",
			Temperature: 0.8,
			Timeout:     Duration(15 * time.Second),
			APIKeyEnv:   "XAI_API_KEY",

			MaxInFlight:  8,
			QueueTimeout: Duration(2 * time.Second),
		},
		Redis: RedisConfig{
			Prefix:      "izakaya",
			StatsTTL:    Duration(24 * time.Hour),
			StatsBucket: "minute",
			QuotaTTL:    Duration(48 * time.Hour),
		},
		Audio: AudioConfig{
			SceneFade:      Duration(2 * time.Second),
			ToggleFade:     Duration(1 * time.Second),
			FadeSteps:      50,
			LoopMaskWindow: Duration(2 * time.Second),
			LoopMaskPoll:   Duration(100 * time.Millisecond),
			CueMinGap:      Duration(40 * time.Millisecond),
		},
		Kiosk: KioskConfig{
			APIURL:     "http://localhost:8080",
			StartScene: "landing",
			Timeout:    Duration(20 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load parte de Default, aplica o YAML em path (arquivo ausente não é erro),
// depois o ambiente, e valida.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// sanitize devolve ao padrão valores ausentes ou sem sentido.
func (c *Config) sanitize() {
	d := Default()

	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		c.Server.ListenAddr = d.Server.ListenAddr
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = d.Server.ReadHeaderTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Edge.RetryAfter <= 0 {
		c.Edge.RetryAfter = d.Edge.RetryAfter
	}
	if c.Answer.PerClientWindow <= 0 {
		c.Answer.PerClientWindow = d.Answer.PerClientWindow
	}
	if c.Answer.MaxQuestionChars <= 0 {
		c.Answer.MaxQuestionChars = d.Answer.MaxQuestionChars
	}
	if c.Answer.CleanupEvery <= 0 {
		c.Answer.CleanupEvery = d.Answer.CleanupEvery
	}
	if strings.TrimSpace(c.Upstream.Endpoint) == "" {
		c.Upstream.Endpoint = d.Upstream.Endpoint
	}
	if c.Upstream.Model == "" {
		c.Upstream.Model = d.Upstream.Model
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = d.Upstream.Timeout
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = d.Redis.Prefix
	}
	// a chave precisa sobreviver ao dia inteiro
	if c.Redis.QuotaTTL < Duration(24*time.Hour) {
		c.Redis.QuotaTTL = d.Redis.QuotaTTL
	}
	if c.Audio.FadeSteps <= 0 {
		c.Audio.FadeSteps = d.Audio.FadeSteps
	}
	if c.Kiosk.APIURL == "" {
		c.Kiosk.APIURL = d.Kiosk.APIURL
	}
	if c.Kiosk.Timeout <= 0 {
		c.Kiosk.Timeout = d.Kiosk.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checa o que não dá para corrigir com um padrão.
func (c Config) Validate() error {
	if c.Edge.Enabled {
		if c.Edge.RPS <= 0 {
			return errors.New("edge.rps must be > 0")
		}
		if c.Edge.Burst <= 0 {
			return errors.New("edge.burst must be > 0")
		}
	}
	if c.Answer.PerClientMax <= 0 {
		return errors.New("answer.per_client_max must be > 0")
	}
	if c.Answer.DailyLimit < 0 {
		return errors.New("answer.daily_limit must be >= 0")
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		return errors.New("upstream.temperature must be in [0,2]")
	}
	if c.Upstream.MaxInFlight < 0 {
		return errors.New("upstream.max_in_flight must be >= 0")
	}
	if c.Server.ConcurrencyMax < 0 {
		return errors.New("server.concurrency_max must be >= 0")
	}
	if (c.Redis.SharedLimits || c.Redis.Stats) && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr is required when redis.shared_limits or redis.stats is enabled")
	}
	switch c.Redis.StatsBucket {
	case "", "minute", "hour":
	default:
		return fmt.Errorf("redis.stats_bucket %q must be minute, hour or empty", c.Redis.StatsBucket)
	}
	return nil
}
