package handlers

import (
	"log"
	"net/http"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, MessageResponse{Message: "Local Marketplace API"}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.HealthCheck(); err != nil {
			log.Printf("Проверка БД не пройдена: %v", err)
			writeSuccess(w, HealthResponse{Status: "degraded", Database: "down"}, http.StatusServiceUnavailable)
			return
		}
	}

	writeSuccess(w, HealthResponse{Status: "ok", Database: "up"}, http.StatusOK)
}

// StatsHandler reports row counts for users, active listings and messages.
func (h *Handlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.StatsService.Counts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, stats, http.StatusOK)
}
