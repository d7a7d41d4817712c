package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/models"
)

type QuestionHandler struct {
	service *app.Service
}

func NewQuestionHandler(service *app.Service) *QuestionHandler {
	return &QuestionHandler{
		service: service,
	}
}

func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	questions, err := h.service.ActiveRubric()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observeRequest(r, start)

	if _, ok := authenticate(h.service, w, r); !ok {
		return
	}

	var q models.ScoringQuestion
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.service.CreateQuestion(&q); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var patch app.QuestionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	q, err := h.service.UpdateQuestion(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// HandleDelete retires a question instead of removing it, so stored answers
// keep their referent.
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RetireQuestion(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
