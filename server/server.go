// Package server monta o http.Handler do binário izakaya: rotas de API, arquivos
// de som, estatísticas e os middlewares de log e recover.
package server

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"izakaya/middleware/ratelimit/infra"

	"github.com/rs/zerolog"
)

// Registrar é qualquer módulo que pendura rotas no mux (answer.Handler,
// menu.Handler).
type Registrar interface {
	Register(mux *http.ServeMux)
}

// UsageFunc informa o consumo da cota diária. Implementado por
// ratelimit/application.QuotaService.Usage.
type UsageFunc func(ctx context.Context) (day string, used, limit int, err error)

type Options struct {
	SoundsDir string
	// Stats é o store em memória ou o do Redis; nil omite os contadores.
	Stats infra.StatsReader
	Usage UsageFunc
	// InFlight lista vagas em uso por nome (ex: "server", "upstream").
	InFlight map[string]InFlightFunc
	Log      zerolog.Logger
}

// InFlightFunc devolve (em uso, capacidade). Implementado por
// ratelimit/application.ConcurrencyService.InFlight.
type InFlightFunc func() (inUse, capacity int)

// NewMux registra as rotas dos módulos e as rotas próprias do servidor.
func NewMux(opts Options, modules ...Registrar) *http.ServeMux {
	mux := http.NewServeMux()
	for _, m := range modules {
		m.Register(mux)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/stats", statsHandler(opts))

	if opts.SoundsDir != "" {
		mux.Handle("GET /sounds/", http.StripPrefix("/sounds/", soundsHandler(opts.SoundsDir)))
	}
	return mux
}

type statsBody struct {
	*infra.StatsSnapshot
	Quota    *quotaBody              `json:"quota,omitempty"`
	InFlight map[string]inFlightBody `json:"in_flight,omitempty"`
}

type inFlightBody struct {
	InUse    int `json:"in_use"`
	Capacity int `json:"capacity"`
}

type quotaBody struct {
	Day   string `json:"day"`
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
}

func statsHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body statsBody
		if opts.Stats != nil {
			snap, err := opts.Stats.Read(r.Context())
			if err != nil {
				opts.Log.Warn().Err(err).Msg("stats unavailable")
			} else {
				body.StatsSnapshot = &snap
			}
		}
		if opts.Usage != nil {
			day, used, limit, err := opts.Usage(r.Context())
			if err != nil {
				opts.Log.Warn().Err(err).Msg("quota usage unavailable")
			} else {
				body.Quota = &quotaBody{Day: day, Used: used, Limit: limit}
			}
		}
		if len(opts.InFlight) > 0 {
			body.InFlight = make(map[string]inFlightBody, len(opts.InFlight))
			for name, fn := range opts.InFlight {
				inUse, capacity := fn()
				body.InFlight[name] = inFlightBody{InUse: inUse, Capacity: capacity}
			}
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func soundsHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// sem listagem de diretório
		if r.URL.Path == "" || r.URL.Path == "/" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		clean := filepath.Clean(r.URL.Path)
		if clean == "." || clean == ".." || clean[0] == '/' || clean == `\` ||
			strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fs.ServeHTTP(w, r)
	})
}

// Timeouts do http.Server.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
}

func New(addr string, h http.Handler, t Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: t.ReadHeader,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      t.Write,
		IdleTimeout:       90 * time.Second,
	}
}
