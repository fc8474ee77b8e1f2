package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"izakaya/middleware/ratelimit/domain"
	"izakaya/middleware/ratelimit/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type pingModule struct{}

func (pingModule) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

func TestNewMux_ModulesAndHealth(t *testing.T) {
	mux := NewMux(Options{Log: zerolog.Nop()}, pingModule{})

	for path, want := range map[string]string{"/api/ping": "pong", "/healthz": "ok"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Fatalf("%s: status=%d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}

func TestStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	ctx := context.Background()
	_ = stats.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Method: "POST", Path: "/api/generate-answer", At: time.Now()})
	_ = stats.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Method: "POST", Path: "/api/generate-answer", At: time.Now()})
	_ = stats.Record(ctx, domain.StatsEvent{Outcome: domain.OutcomeFallback})

	mux := NewMux(Options{
		Stats: stats,
		Usage: func(context.Context) (string, int, int, error) { return "2026-10-17", 12, 1000, nil },
		Log:   zerolog.Nop(),
	})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	var body struct {
		Total    infra.Counters            `json:"total"`
		Routes   map[string]infra.Counters `json:"routes"`
		Outcomes map[string]int64          `json:"outcomes"`
		Quota    quotaBody                 `json:"quota"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body=%s", rr.Body.String())
	}
	if body.Total.Allowed != 1 || body.Total.Denied != 1 || body.Outcomes["fallback"] != 1 {
		t.Fatalf("body=%+v", body)
	}
	if body.Routes["POST /api/generate-answer"].Denied != 1 {
		t.Fatalf("routes=%v", body.Routes)
	}
	if body.Quota.Used != 12 || body.Quota.Limit != 1000 || body.Quota.Day != "2026-10-17" {
		t.Fatalf("quota=%+v", body.Quota)
	}
}

func TestStats_UsageErrorIsOmitted(t *testing.T) {
	mux := NewMux(Options{
		Usage: func(context.Context) (string, int, int, error) { return "", 0, 0, errors.New("redis down") },
		Log:   zerolog.Nop(),
	})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "quota") {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

type downStats struct{}

func (downStats) Read(context.Context) (infra.StatsSnapshot, error) {
	return infra.StatsSnapshot{}, errors.New("redis down")
}

func TestStats_ReadErrorIsOmitted(t *testing.T) {
	mux := NewMux(Options{Stats: downStats{}, Log: zerolog.Nop()})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "total") {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSounds(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "click.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	mux := NewMux(Options{SoundsDir: dir, Log: zerolog.Nop()})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sounds/click.wav", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "RIFF" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sounds/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("listagem deveria dar 404, status=%d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sounds/missing.mp3", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var seen string
	h := RequestLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	id := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil || id != seen {
		t.Fatalf("id=%q seen=%q", id, seen)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log=%s", buf.String())
	}
	if line["status"] != float64(http.StatusTeapot) || line["path"] != "/x" || line["request_id"] != id {
		t.Fatalf("line=%v", line)
	}

	// id válido do cliente é reaproveitado
	in := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, in)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) != in {
		t.Fatalf("id não reaproveitado")
	}
}

func TestRecover(t *testing.T) {
	h := Recover(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kitchen fire")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-answer", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	var m map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if m["error"] != "Something went wrong. Please try again." {
		t.Fatalf("body=%s", rr.Body.String())
	}
}

func TestStats_InFlight(t *testing.T) {
	mux := NewMux(Options{
		InFlight: map[string]InFlightFunc{
			"upstream": func() (int, int) { return 3, 8 },
		},
		Log: zerolog.Nop(),
	})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	var body struct {
		InFlight map[string]struct {
			InUse    int `json:"in_use"`
			Capacity int `json:"capacity"`
		} `json:"in_flight"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := body.InFlight["upstream"]
	if got.InUse != 3 || got.Capacity != 8 {
		t.Fatalf("expected upstream 3/8, got %+v", got)
	}
}
