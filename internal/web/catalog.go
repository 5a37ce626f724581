package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/taskdesk/internal/habit"
	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/store"
)

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json: %w", errBadRequest, err)
	}
	return nil
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.store.Projects())
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req model.Project
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	p, err := h.store.AddProject(req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch store.ProjectPatch
	if err := decode(r, &patch); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	p, err := h.store.UpdateProject(chi.URLParam(r, "id"), patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

// DeleteProject leaves tasks pointing at the removed id.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ProjectTasks(w http.ResponseWriter, r *http.Request) {
	_, tasks := h.store.Snapshot()
	respondJSON(w, r, http.StatusOK, query.ByProject(tasks, chi.URLParam(r, "id")))
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.store.Tags())
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req model.Tag
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	tag, err := h.store.AddTag(req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, tag)
}

type tagPatch struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req tagPatch
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	tag, err := h.store.UpdateTag(chi.URLParam(r, "id"), req.Name, req.Color)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, tag)
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTag(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TagTasks(w http.ResponseWriter, r *http.Request) {
	_, tasks := h.store.Snapshot()
	respondJSON(w, r, http.StatusOK, query.ByTag(tasks, chi.URLParam(r, "id")))
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		respondJSON(w, r, http.StatusOK, h.store.TemplatesByCategory(category))
		return
	}
	respondJSON(w, r, http.StatusOK, h.store.Templates())
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req model.Template
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	tpl, err := h.store.AddTemplate(req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, tpl)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.UseTemplate(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respondJSON(w, r, http.StatusCreated, task)
}

type batchRequest struct {
	Action    string         `json:"action"`
	IDs       []string       `json:"ids"`
	Priority  model.Priority `json:"priority,omitempty"`
	ProjectID string         `json:"projectId,omitempty"`
	TagID     string         `json:"tagId,omitempty"`
	DueDate   *time.Time     `json:"dueDate,omitempty"`
}

// Batch applies one action to every listed task. Any unknown id fails the
// whole request and nothing changes.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, r, http.StatusBadRequest, "ids are required")
		return
	}
	var err error
	switch req.Action {
	case "complete":
		err = h.store.BatchComplete(req.IDs)
	case "archive":
		err = h.store.BatchArchive(req.IDs)
	case "delete":
		err = h.store.BatchDelete(req.IDs)
	case "priority":
		err = h.store.BatchSetPriority(req.IDs, req.Priority)
	case "project":
		err = h.store.BatchSetProject(req.IDs, req.ProjectID)
	case "due":
		err = h.store.BatchSetDueDate(req.IDs, req.DueDate)
	case "tag":
		tag, ok := h.findTag(req.TagID)
		if !ok {
			err = fmt.Errorf("%w: unknown tag %q", errBadRequest, req.TagID)
			break
		}
		err = h.store.BatchAddTag(req.IDs, tag)
	default:
		err = fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
	}
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]int{"updated": len(req.IDs)})
}

func (h *Handler) findTag(id string) (model.Tag, bool) {
	for _, tag := range h.store.Tags() {
		if tag.ID == id {
			return tag, true
		}
	}
	return model.Tag{}, false
}

type habitPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Color       *string          `json:"color"`
	Icon        *string          `json:"icon"`
	Frequency   *model.Frequency `json:"frequency"`
	DaysOfWeek  []time.Weekday   `json:"daysOfWeek"`
	GoalType    *model.GoalType  `json:"goalType"`
	GoalValue   *float64         `json:"goalValue"`
}

func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitPatch
	if err := decode(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	tracker := h.store.Habits()
	if _, ok := tracker.Habit(id); !ok {
		h.handleErrors(w, r, fmt.Errorf("%w: %s", habit.ErrNotFound, id))
		return
	}
	updated, err := tracker.UpdateHabit(id, habit.HabitPatch(req))
	if err != nil {
		h.handleErrors(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Habits().DeleteHabit(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tracker := h.store.Habits()
	if err := tracker.ArchiveHabit(id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	archived, _ := tracker.Habit(id)
	respondJSON(w, r, http.StatusOK, archived)
}
