package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/observability"
	"astrodeck/internal/deck"
)

type handlers struct {
	generator DeckGenerator
	store     deck.Store
	apod      ApodSource
	obs       *observability.Observability
	log       logger.Logger

	now func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) generateDeck(w http.ResponseWriter, r *http.Request) {
	var req deck.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	start := h.now()
	d, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, deck.ErrEmptyTopic) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.obs.RecordDeckGenerated(r.Context(), "error")
		h.log.Error("deck generation failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "deck generation failed"})
		return
	}

	if err := h.store.Save(r.Context(), d); err != nil {
		h.log.Error("failed to store deck", map[string]interface{}{
			"deck_id": d.ID,
			"error":   err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to store deck"})
		return
	}

	h.obs.RecordDeckGenerated(r.Context(), "success")
	h.obs.RecordDeckDuration(r.Context(), h.now().Sub(start), "success")
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) getDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDeck(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "max-age=600, public")
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) exportDeckHTML(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDeck(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+deck.ExportFilename(d.Topic, "html"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(deck.ToHTML(d)))
}

func (h *handlers) loadDeck(w http.ResponseWriter, r *http.Request) (*deck.LessonDeck, bool) {
	id := chi.URLParam(r, "id")
	d, err := h.store.Get(r.Context(), id)
	if errors.Is(err, deck.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "deck not found: " + id})
		return nil, false
	}
	if err != nil {
		h.log.Error("failed to load deck", map[string]interface{}{"deck_id": id, "error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load deck"})
		return nil, false
	}
	return d, true
}

func (h *handlers) getApod(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be formatted as YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	apod, err := h.apod.Apod(r.Context(), date)
	if err != nil {
		h.log.Error("failed to load apod", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load picture of the day"})
		return
	}

	w.Header().Set("Cache-Control", "max-age=86400, public")
	writeJSON(w, http.StatusOK, apod)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
