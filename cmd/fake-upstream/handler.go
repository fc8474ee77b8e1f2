package main

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// modo de resposta do upstream falso
const (
	modeOK    = "ok"
	modeSlow  = "slow"
	modeError = "error"
	modeEmpty = "empty"
)

var lines = []string{
	"Raw ambition, no seasoning. Add patience before serving.",
	"You keep reheating yesterday's doubts. Cook something new.",
	"Too many spices, no base. Pick one flavour and commit.",
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type handler struct {
	mode  string
	delay time.Duration
	log   zerolog.Logger
}

// ServeHTTP imita POST /v1/chat/completions. A resposta é estável por pergunta.
func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid json"}}`))
		return
	}
	question := ""
	if n := len(req.Messages); n > 0 {
		question = req.Messages[n-1].Content
	}
	h.log.Info().Str("mode", h.mode).Str("model", req.Model).Int("question_chars", len(question)).Msg("completion requested")

	mode := h.mode
	if m := r.URL.Query().Get("mode"); m != "" {
		mode = m
	}

	switch mode {
	case modeSlow:
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			h.log.Info().Msg("client gave up")
			return
		}
	case modeError:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"the oven exploded"}}`))
		return
	case modeEmpty:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
		return
	}

	hs := fnv.New32a()
	_, _ = hs.Write([]byte(question))
	answer := lines[hs.Sum32()%uint32(len(lines))]

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": answer}},
		},
	})
}
