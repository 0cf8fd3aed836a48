package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/middleware"
	"CampusResponseAPI/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	account *service.AccountService
	log     *logger.Logger

	mu        sync.Mutex
	ssoStates map[string]time.Time
}

func NewAuthHandler(account *service.AccountService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		account:   account,
		log:       log,
		ssoStates: make(map[string]time.Time),
	}
}

// RegisterRoutes wires login/signup onto the public router and the
// session-scoped endpoints onto the authenticated one.
func (h *AuthHandler) RegisterRoutes(public, authed *mux.Router) {
	public.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	public.HandleFunc("/auth/login", h.Login).Methods("POST")
	public.HandleFunc("/auth/sso/login", h.SSOLogin).Methods("GET")
	public.HandleFunc("/auth/sso/callback", h.SSOCallback).Methods("GET")

	authed.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	authed.HandleFunc("/auth/profile", h.GetProfile).Methods("GET")
	authed.HandleFunc("/auth/profile", h.UpdateProfile).Methods("PUT")
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid signup payload")
		return
	}

	result, err := h.account.Signup(r.Context(), req)
	if err != nil {
		h.log.Error("Signup failed for %s: %v", req.Email, err)
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TOTPCode string `json:"totp_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid login payload")
		return
	}

	result, err := h.account.Login(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		respondError(w, statusForError(err), "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) SSOLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	h.mu.Lock()
	now := time.Now()
	for s, issued := range h.ssoStates {
		if now.Sub(issued) > 10*time.Minute {
			delete(h.ssoStates, s)
		}
	}
	h.ssoStates[state] = now
	h.mu.Unlock()

	url := h.account.SSOLoginURL(state)
	if url == "" {
		respondError(w, http.StatusNotFound, "Single sign-on is not enabled")
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (h *AuthHandler) SSOCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	h.mu.Lock()
	_, known := h.ssoStates[state]
	delete(h.ssoStates, state)
	h.mu.Unlock()

	if !known {
		respondError(w, http.StatusBadRequest, "Unknown SSO state")
		return
	}

	result, err := h.account.LoginSSO(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error("SSO login failed: %v", err)
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	h.account.Logout(session)
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	profile, err := h.account.GetProfile(r.Context(), session)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var req service.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid profile payload")
		return
	}

	profile, err := h.account.UpdateProfile(r.Context(), session, req)
	if err != nil {
		h.log.Error("Profile update failed for %s: %v", session.UserID, err)
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
