// fake-upstream é um provedor de chat-completion local para testar o izakaya
// sem chave de API: FAKE_MODE=ok|slow|error|empty, FAKE_DELAY para o modo slow.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"izakaya/config"
)

func main() {
	log := config.NewLogger(config.LogConfig{Level: "info", Pretty: true}, os.Stdout)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	h := handler{mode: modeOK, delay: 20 * time.Second, log: log}
	if v := os.Getenv("FAKE_MODE"); v != "" {
		h.mode = v
	}
	if v := os.Getenv("FAKE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			h.delay = d
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /v1/chat/completions", h)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Str("mode", h.mode).Dur("delay", h.delay).Msg("fake upstream listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
