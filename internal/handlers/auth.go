package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kardemumma/kardemumma/internal/app"
)

type AuthHandler struct {
	service *app.Service
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.service.Auth.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	admin, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, token, h.service.Auth.TTL())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    admin.ID,
		"name":  admin.Name,
		"email": admin.Email,
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if err := h.service.Auth.Revoke(r.Context(), h.service.Auth.TokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, "", -time.Second)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	admin, ok := authenticate(h.service, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"admin": admin})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	admin, err := h.service.CreateAdmin(req.Name, req.Email, req.Password, true)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    admin.ID,
		"name":  admin.Name,
		"email": admin.Email,
	})
}
