package menu

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type Handler struct {
	Picker Picker
	Log    zerolog.Logger
}

// Register monta GET /api/dish (prato sorteado), GET /api/dish/{id} e
// GET /api/dishes (cardápio inteiro).
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dish", h.random)
	mux.HandleFunc("GET /api/dish/{id}", h.byID)
	mux.HandleFunc("GET /api/dishes", h.list)
}

func (h *Handler) random(w http.ResponseWriter, _ *http.Request) {
	d, err := h.Picker.Random()
	if err != nil {
		h.Log.Error().Err(err).Msg("pick dish failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "The kitchen is closed."})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request) {
	d, ok := h.Picker.ByID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"dishes": h.Picker.Dishes})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
