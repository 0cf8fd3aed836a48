package handler

import (
	"net/http"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/websocket"

	"github.com/gorilla/mux"
)

// WSHandler upgrades staff dashboards onto the live feed channel. Browsers
// cannot attach an Authorization header to a websocket handshake, so the
// session token rides in the query string instead.
type WSHandler struct {
	hub     *websocket.Hub
	manager *auth.Manager
	log     *logger.Logger
}

func NewWSHandler(hub *websocket.Hub, manager *auth.Manager, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, manager: manager, log: log}
}

func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/feed", h.Connect).Methods("GET")
}

func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if session.Role != models.RoleStaff {
		respondError(w, http.StatusForbidden, "Insufficient role")
		return
	}

	websocket.ServeWs(h.hub, w, r, h.log)
}
