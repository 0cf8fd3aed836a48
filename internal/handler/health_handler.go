package handler

import (
	"net/http"

	"CampusResponseAPI/internal/database"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/mqtt"

	"github.com/gorilla/mux"
)

type HealthHandler struct {
	db   *database.Database
	mqtt *mqtt.Client
	log  *logger.Logger
}

func NewHealthHandler(db *database.Database, mqttClient *mqtt.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, mqtt: mqttClient, log: log}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Live).Methods("GET")
	r.HandleFunc("/health/ready", h.Ready).Methods("GET")
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"mqtt":     "ok",
	}
	status := http.StatusOK

	if err := h.db.Health(r.Context()); err != nil {
		h.log.Error("Health check: database unhealthy: %v", err)
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if !h.mqtt.IsConnected() {
		checks["mqtt"] = "not connected"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, checks)
}
