package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/metrics"
	"github.com/kardemumma/kardemumma/internal/models"
)

type FeatureHandler struct {
	service *app.Service
}

func NewFeatureHandler(service *app.Service) *FeatureHandler {
	return &FeatureHandler{
		service: service,
	}
}

func (h *FeatureHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	features, err := h.service.ListFeatures()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, features)
}

func (h *FeatureHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	feature, err := h.service.GetFeature(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feature)
}

type createFeatureRequest struct {
	models.FeaturePatch
	Code string `json:"code"`
}

func (h *FeatureHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	admin, ok := authenticate(h.service, w, r)
	if !ok {
		return
	}

	var req createFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	feature, err := h.service.CreateFeature(req.Code, req.FeaturePatch, admin)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.FeatureEventsTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	admin, ok := authenticate(h.service, w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch models.FeaturePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	feature, err := h.service.UpdateFeature(id, patch, admin)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.FeatureEventsTotal.WithLabelValues("updated").Inc()
	writeJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteFeature(id); err != nil {
		writeError(w, err)
		return
	}

	metrics.FeatureEventsTotal.WithLabelValues("deleted").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type answersRequest struct {
	Answers []app.RawAnswer `json:"answers"`
}

// HandleAnswers upserts one reviewer's answer batch and returns the
// recomputed feature.
func (h *FeatureHandler) HandleAnswers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	admin, ok := authenticate(h.service, w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	feature, err := h.service.UpsertAnswers(id, admin, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.FeatureEventsTotal.WithLabelValues("scored").Inc()
	metrics.AggregateScoreHistogram.WithLabelValues(string(feature.Priority)).Observe(feature.Total)

	writeJSON(w, http.StatusOK, feature)
}
