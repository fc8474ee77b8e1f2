// Package answer expõe o endpoint /api/generate-answer.
//
// POST passa pelo middleware de rate limit por cliente (injetado em Limit) e
// depois pelo application.Service. GET e OPTIONS respondem direto.
package answer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"izakaya/answer/application"
	"izakaya/answer/domain"
	rldomain "izakaya/middleware/ratelimit/domain"

	"github.com/rs/zerolog"
)

const (
	Path = "/api/generate-answer"

	DefaultProductionOrigin = "https://ren-izakaya.vercel.app"

	msgTooMany   = "Too many requests. Please wait a minute before trying again."
	msgGeneric   = "Something went wrong. Please try again."
	msgPostOnly  = "This endpoint requires POST method"
	maxBodyBytes = 16 << 10
)

// Answerer é implementado por application.Service. Admit roda antes de ler o
// corpo; Reply recebe a pergunta já extraída.
type Answerer interface {
	Admit(ctx context.Context) (domain.Result, bool)
	Reply(ctx context.Context, question string) (domain.Result, error)
}

var _ Answerer = application.Service{}

type Handler struct {
	Service Answerer
	Stats   rldomain.StatsStore
	// Limit envolve o POST; nil desliga o rate limit por cliente.
	Limit func(http.Handler) http.Handler
	// Production troca o Access-Control-Allow-Origin "*" por Origin.
	Production bool
	Origin     string
	Log        zerolog.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

// Register monta as rotas no mux. Outros métodos recebem 405 do próprio mux.
func (h *Handler) Register(mux *http.ServeMux) {
	var post http.Handler = http.HandlerFunc(h.post)
	if h.Limit != nil {
		post = h.Limit(post)
	}
	mux.Handle("POST "+Path, post)
	mux.HandleFunc("GET "+Path, h.get)
	mux.HandleFunc("OPTIONS "+Path, h.options)
}

// RejectTooManyRequests é o ratelimit.RejectFunc do endpoint: corpo JSON com a
// mensagem mostrada ao usuário.
func RejectTooManyRequests(w http.ResponseWriter, _ *http.Request, status int) {
	writeJSON(w, status, errorBody{Error: msgTooMany})
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	h.cors(w)
	log := application.Logger(r.Context(), h.Log)

	if res, ok := h.Service.Admit(r.Context()); !ok {
		h.record(r, string(res.Source))
		writeJSON(w, http.StatusOK, res)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	question, err := readQuestion(r.Body)
	if err != nil {
		log.Warn().Err(err).Msg("invalid request body")
		h.record(r, rldomain.OutcomeError)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgGeneric})
		return
	}

	res, err := h.Service.Reply(r.Context(), question)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.record(r, rldomain.OutcomeInvalid)
			writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Reason})
			return
		}
		log.Error().Err(err).Msg("answer failed")
		h.record(r, rldomain.OutcomeError)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgGeneric})
		return
	}

	h.record(r, string(res.Source))
	writeJSON(w, http.StatusOK, res)
}

// readQuestion só falha quando o corpo não é JSON. Campo ausente ou de outro
// tipo vira "", que a validação recusa com 400.
func readQuestion(body io.Reader) (string, error) {
	var v any
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return "", err
	}
	m, _ := v.(map[string]any)
	q, _ := m["question"].(string)
	return q, nil
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msgPostOnly})
}

func (h *Handler) options(w http.ResponseWriter, _ *http.Request) {
	h.cors(w)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) cors(w http.ResponseWriter) {
	origin := "*"
	if h.Production {
		origin = h.Origin
		if origin == "" {
			origin = DefaultProductionOrigin
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// record é best-effort: erro do store de estatísticas é ignorado.
func (h *Handler) record(r *http.Request, outcome string) {
	if h.Stats == nil {
		return
	}
	_ = h.Stats.Record(r.Context(), rldomain.StatsEvent{
		Allowed: true,
		Outcome: outcome,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
