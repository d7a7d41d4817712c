package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kardemumma/kardemumma/internal/app"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	admins, err := h.service.ListAdmins()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

type createAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive *bool  `json:"isActive"`
}

func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	admin, err := h.service.CreateAdmin(req.Name, req.Email, req.Password, isActive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch app.AdminPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	admin, err := h.service.UpdateAdmin(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}
