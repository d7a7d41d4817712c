package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kardemumma/kardemumma/internal/app"
)

type ModuleHandler struct {
	service *app.Service
}

func NewModuleHandler(service *app.Service) *ModuleHandler {
	return &ModuleHandler{
		service: service,
	}
}

func (h *ModuleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	modules, err := h.service.ListModules()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

type createModuleRequest struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder *int   `json:"sortOrder"`
}

func (h *ModuleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	var req createModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	module, err := h.service.CreateModule(req.Label, req.Value, req.SortOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (h *ModuleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var patch app.ModulePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	module, err := h.service.UpdateModule(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (h *ModuleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteModule(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
