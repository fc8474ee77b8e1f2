package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d := Default()
	if cfg.Answer.PerClientMax != 5 || cfg.Answer.DailyLimit != 1000 ||
		cfg.Upstream.Timeout.ToDuration() != 15*time.Second || cfg.Server.ListenAddr != d.Server.ListenAddr {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeFile(t, `
server:
  listen_addr: ":9000"
  environment: production
answer:
  per_client_max: 3
  per_client_window: 30
upstream:
  timeout: 5s
  api_key_env: TEST_IZAKAYA_KEY
audio:
  scene_fade: "1500ms"
`)
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("TEST_IZAKAYA_KEY", "  secret ")
	t.Setenv("ANSWER_DAILY_LIMIT", "10")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Server.ListenAddr != ":7000" {
		t.Fatalf("env deveria vencer o YAML: %q", cfg.Server.ListenAddr)
	}
	if !cfg.IsProduction() {
		t.Fatalf("environment=%q", cfg.Server.Environment)
	}
	if cfg.Answer.PerClientMax != 3 || cfg.Answer.PerClientWindow.ToDuration() != 30*time.Second {
		t.Fatalf("answer=%+v", cfg.Answer)
	}
	if cfg.Answer.DailyLimit != 10 {
		t.Fatalf("daily=%d", cfg.Answer.DailyLimit)
	}
	if cfg.Upstream.Timeout.ToDuration() != 5*time.Second || cfg.Upstream.APIKey != "secret" {
		t.Fatalf("upstream=%+v", cfg.Upstream)
	}
	if cfg.Audio.SceneFade.ToDuration() != 1500*time.Millisecond {
		t.Fatalf("scene_fade=%v", cfg.Audio.SceneFade.ToDuration())
	}
}

func TestLoad_LowRPSDropsBurst(t *testing.T) {
	t.Setenv("RATE_RPS", "0.5")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Edge.Burst != 1 {
		t.Fatalf("burst=%d", cfg.Edge.Burst)
	}

	t.Setenv("RATE_BURST", "4")
	cfg, _ = Load("")
	if cfg.Edge.Burst != 4 {
		t.Fatalf("burst explícito=%d", cfg.Edge.Burst)
	}
}

func TestLoad_SanitizesAndValidates(t *testing.T) {
	cfg, err := Load(writeFile(t, "upstream:\n  timeout: 0\n  model: \"\"\naudio:\n  fade_steps: -3\n"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Upstream.Timeout.ToDuration() != 15*time.Second || cfg.Upstream.Model != "grok-3" || cfg.Audio.FadeSteps != 50 {
		t.Fatalf("sanitize falhou: %+v %+v", cfg.Upstream, cfg.Audio)
	}

	bad := []string{
		"redis:\n  shared_limits: true\n",
		"answer:\n  per_client_max: 0\n",
		"edge:\n  rps: -1\n",
		"redis:\n  stats_bucket: week\n",
		"upstream:\n  temperature: 3\n",
		"audio:\n  scene_fade: soon\n",
	}
	for _, doc := range bad {
		if _, err := Load(writeFile(t, doc)); err == nil {
			t.Fatalf("esperava erro para %q", doc)
		}
	}
}

func TestGetenvDurationDefault(t *testing.T) {
	t.Setenv("TEST_DUR", "7")
	if d := getenvDurationDefault("TEST_DUR", time.Second); d != 7*time.Second {
		t.Fatalf("d=%v", d)
	}
	t.Setenv("TEST_DUR", "bogus")
	if d := getenvDurationDefault("TEST_DUR", time.Second); d != time.Second {
		t.Fatalf("d=%v", d)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn"}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("info não deveria sair em warn: %s", out)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("log não é JSON: %s", out)
	}
	if m["k"] != "v" || m["level"] != "warn" {
		t.Fatalf("m=%v", m)
	}

	if l := NewLogger(LogConfig{Level: "loud"}, &buf); l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("nível inválido deveria cair para info")
	}
}

func TestLoad_ExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "config.example.yaml"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d := Default()
	if cfg.Upstream.MaxInFlight != d.Upstream.MaxInFlight ||
		cfg.Upstream.QueueTimeout != d.Upstream.QueueTimeout ||
		cfg.Audio.CueMinGap != d.Audio.CueMinGap ||
		cfg.Redis.StatsTTL != d.Redis.StatsTTL ||
		cfg.Redis.QuotaTTL != d.Redis.QuotaTTL ||
		cfg.Answer.CleanupEvery != d.Answer.CleanupEvery ||
		cfg.Kiosk.StartScene != d.Kiosk.StartScene {
		t.Fatalf("example drifted from defaults: %+v", cfg)
	}
}

func TestValidate_NegativeMaxInFlight(t *testing.T) {
	cfg := Default()
	cfg.Upstream.MaxInFlight = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_JanitorAndQuotaTTL(t *testing.T) {
	t.Setenv("ANSWER_CLEANUP_EVERY", "30s")
	cfg, err := Load(writeFile(t, "redis:\n  quota_ttl: 72h\n"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Answer.CleanupEvery.ToDuration() != 30*time.Second || cfg.Redis.QuotaTTL.ToDuration() != 72*time.Hour {
		t.Fatalf("answer=%+v redis=%+v", cfg.Answer, cfg.Redis)
	}

	// menos de um dia perderia a contagem antes da virada
	cfg, err = Load(writeFile(t, "redis:\n  quota_ttl: 1h\nanswer:\n  cleanup_every: 0\n"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Redis.QuotaTTL.ToDuration() != 48*time.Hour || cfg.Answer.CleanupEvery.ToDuration() != 2*time.Minute {
		t.Fatalf("answer=%+v redis=%+v", cfg.Answer, cfg.Redis)
	}
}
