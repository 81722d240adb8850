package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"parkdeck/internal/client"
	"parkdeck/internal/session"
	"parkdeck/internal/store"
)

type AuthHandler struct {
	Session *session.Session
	Store   *store.Store
}

func NewAuthHandler(sess *session.Session, st *store.Store) *AuthHandler {
	return &AuthHandler{Session: sess, Store: st}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	user, _ := h.Session.Current()
	if err := h.Store.LoadAll(r.Context(), user.Role, user.ID); err != nil {
		logrus.Warnf("initial load after login failed: %v", err)
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.Session.Register(r.Context(), client.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	user, _ := h.Session.Current()
	if err := h.Store.LoadAll(r.Context(), user.Role, user.ID); err != nil {
		logrus.Warnf("initial load after registration failed: %v", err)
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Session.Current()
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
