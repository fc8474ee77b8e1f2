package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv sobrepõe o YAML com variáveis de ambiente. Valores inválidos são
// ignorados.
func applyEnv(c *Config) {
	c.Server.ListenAddr = getenvDefault("LISTEN_ADDR", c.Server.ListenAddr)
	c.Server.Environment = getenvDefault("APP_ENV", c.Server.Environment)
	c.Server.SoundsDir = getenvDefault("SOUNDS_DIR", c.Server.SoundsDir)
	c.Server.ConcurrencyMax = getenvIntDefault("CONCURRENCY_MAX", c.Server.ConcurrencyMax)
	c.Server.ConcurrencyTimeout = Duration(getenvDurationDefault("CONCURRENCY_TIMEOUT", c.Server.ConcurrencyTimeout.ToDuration()))

	c.Edge.Enabled = getenvBoolDefault("RATE_ENABLED", c.Edge.Enabled)
	c.Edge.RPS = getenvFloatDefault("RATE_RPS", c.Edge.RPS)
	// com RPS abaixo de 1, um burst alto deixa passar muitas requisições de uma vez
	if burst, ok := getenvInt("RATE_BURST"); ok {
		c.Edge.Burst = burst
	} else if getenvIsSet("RATE_RPS") && c.Edge.RPS > 0 && c.Edge.RPS < 1 {
		c.Edge.Burst = 1
	}
	c.Edge.KeyHeader = getenvDefault("RATE_KEY_HEADER", c.Edge.KeyHeader)
	c.Edge.TrustXFF = getenvBoolDefault("TRUST_XFF", c.Edge.TrustXFF)
	c.Edge.AddHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", c.Edge.AddHeaders)
	c.Edge.RetryAfter = Duration(getenvDurationDefault("RETRY_AFTER", c.Edge.RetryAfter.ToDuration()))

	c.Answer.PerClientMax = getenvIntDefault("ANSWER_PER_CLIENT_MAX", c.Answer.PerClientMax)
	c.Answer.PerClientWindow = Duration(getenvDurationDefault("ANSWER_PER_CLIENT_WINDOW", c.Answer.PerClientWindow.ToDuration()))
	c.Answer.DailyLimit = getenvIntDefault("ANSWER_DAILY_LIMIT", c.Answer.DailyLimit)
	c.Answer.CleanupEvery = Duration(getenvDurationDefault("ANSWER_CLEANUP_EVERY", c.Answer.CleanupEvery.ToDuration()))

	c.Upstream.Endpoint = getenvDefault("UPSTREAM_ENDPOINT", c.Upstream.Endpoint)
	c.Upstream.Model = getenvDefault("UPSTREAM_MODEL", c.Upstream.Model)
	c.Upstream.Timeout = Duration(getenvDurationDefault("UPSTREAM_TIMEOUT", c.Upstream.Timeout.ToDuration()))
	c.Upstream.MaxInFlight = getenvIntDefault("UPSTREAM_MAX_IN_FLIGHT", c.Upstream.MaxInFlight)
	c.Upstream.QueueTimeout = Duration(getenvDurationDefault("UPSTREAM_QUEUE_TIMEOUT", c.Upstream.QueueTimeout.ToDuration()))
	if c.Upstream.APIKeyEnv != "" {
		c.Upstream.APIKey = strings.TrimSpace(os.Getenv(c.Upstream.APIKeyEnv))
	}

	c.Redis.Addr = getenvDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenvDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getenvIntDefault("REDIS_DB", c.Redis.DB)
	c.Redis.SharedLimits = getenvBoolDefault("REDIS_SHARED_LIMITS", c.Redis.SharedLimits)
	c.Redis.Stats = getenvBoolDefault("REDIS_STATS", c.Redis.Stats)
	c.Redis.QuotaTTL = Duration(getenvDurationDefault("REDIS_QUOTA_TTL", c.Redis.QuotaTTL.ToDuration()))

	c.Audio.Catalog = getenvDefault("AUDIO_CATALOG", c.Audio.Catalog)
	c.Kiosk.APIURL = getenvDefault("KIOSK_API_URL", c.Kiosk.APIURL)

	c.Log.Level = getenvDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getenvBoolDefault("LOG_PRETTY", c.Log.Pretty)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvDurationDefault aceita "2s" ou segundos inteiros.
func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return def
}
