package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CampusResponseAPI/internal/geo"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/middleware"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	submission *service.SubmissionService
	status     *service.StatusService
	feed       *service.Feed
	tracking   *geo.Registry
	log        *logger.Logger
}

func NewAlertHandler(
	submission *service.SubmissionService,
	status *service.StatusService,
	feed *service.Feed,
	tracking *geo.Registry,
	log *logger.Logger,
) *AlertHandler {
	return &AlertHandler{
		submission: submission,
		status:     status,
		feed:       feed,
		tracking:   tracking,
		log:        log,
	}
}

func (h *AlertHandler) RegisterRoutes(student, staff *mux.Router) {
	student.HandleFunc("/alerts", h.Submit).Methods("POST")
	student.HandleFunc("/location/status", h.LocationStatus).Methods("GET")

	staff.HandleFunc("/alerts", h.GetFeed).Methods("GET")
	staff.HandleFunc("/alerts/export", h.ExportFeed).Methods("GET")
	staff.HandleFunc("/alerts/{id}/status", h.SetStatus).Methods("PUT")
}

// Submit composes and persists a new alert for the authenticated student.
// Composition runs first so a missing location blocks the request before any
// store call; the draft stays client-side, so a failed submission can be
// retried without re-entering data.
func (h *AlertHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var req struct {
		AlertType   string `json:"alert_type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert payload")
		return
	}

	var fix *models.LocationFix
	if current, ok := h.tracking.Current(session.UserID); ok {
		fix = &current
	}

	draft, err := service.ComposeAlert(req.AlertType, req.Description, fix)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	alertID, err := h.submission.Submit(r.Context(), draft, session)
	if err != nil {
		h.log.Error("Alert submission failed for %s: %v", session.UserID, err)
		respondError(w, statusForError(err), "Failed to send alert")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": alertID})
}

// LocationStatus reports whether a live fix is available for the caller,
// backing the dashboard's location badge.
func (h *AlertHandler) LocationStatus(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	fix, ok := h.tracking.Current(session.UserID)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"available": true,
		"lat":       fix.Lat,
		"lng":       fix.Lng,
		"ts":        fix.Timestamp.Format(time.RFC3339),
	})
}

// GetFeed loads and returns the partitioned staff view. An explicit filter
// query switches the feed's predicate before loading.
func (h *AlertHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	if filter := r.URL.Query().Get("filter"); filter != "" {
		if err := h.feed.SetFilter(filter); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.feed.Load(r.Context()); err != nil {
		h.log.Error("Feed load failed: %v", err)
		respondError(w, statusForError(err), "Failed to load alerts")
		return
	}

	respondJSON(w, http.StatusOK, h.feed.Snapshot())
}

// ExportFeed streams the current snapshot as a PDF roster.
func (h *AlertHandler) ExportFeed(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Load(r.Context()); err != nil {
		h.log.Error("Feed load for export failed: %v", err)
		respondError(w, statusForError(err), "Failed to load alerts")
		return
	}

	pdfBytes, err := service.BuildFeedPDF(h.feed.Snapshot())
	if err != nil {
		h.log.Error("Feed export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		`attachment; filename="alert-feed-%s.pdf"`, time.Now().Format("20060102-150405")))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// SetStatus toggles an alert's resolution status. The response carries no
// updated alert: the feed observes the change through its subscription, so
// the store stays the only source of truth.
func (h *AlertHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status payload")
		return
	}

	if err := h.status.SetStatus(r.Context(), alertID, req.Status); err != nil {
		h.log.Error("Status update failed for alert %s: %v", alertID, err)
		respondError(w, statusForError(err), "Failed to update alert status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
