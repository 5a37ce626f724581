package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/habit"
	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/nlp"
	"github.com/sandeepkv93/taskdesk/internal/notify"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/store"
	"github.com/sandeepkv93/taskdesk/internal/transfer"
)

var errBadRequest = errors.New("web: bad request")

type Handler struct {
	store   *store.Store
	cache   *query.Cache
	parser  *nlp.Parser
	monitor *notify.Monitor
	logger  *zap.Logger
}

type HandlerOption func(*Handler)

// WithMonitor shares the notification center with the terminal UI.
func WithMonitor(m *notify.Monitor) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.monitor = m
		}
	}
}

func NewHandler(st *store.Store, cache *query.Cache, parser *nlp.Parser, logger *zap.Logger, opts ...HandlerOption) *Handler {
	if cache == nil {
		cache = query.NewCache(0, time.Minute)
	}
	if parser == nil {
		parser = nlp.NewParser(nlp.WithClock(st.Now))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{store: st, cache: cache, parser: parser, monitor: notify.NewMonitor(), logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{"status": "ok", "revision": h.store.Revision()})
}

// ListTasks accepts comma-separated status, priority, tag and project ids,
// overdue, hasDueDate, hasSubtasks, q, sort and dir.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	f, s, search, err := filterFromQuery(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.cache.Filtered(h.store, f, s, search, h.store.Now()))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respondError(w, r, http.StatusBadRequest, "empty request body")
		return
	}
	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode task", zap.Error(err))
		respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}
	task, err := h.store.AddTask(req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respondJSON(w, r, http.StatusCreated, task)
}

type parseRequest struct {
	Text   string `json:"text"`
	Create bool   `json:"create"`
}

type parseResponse struct {
	Title            string           `json:"title"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	Priority         model.Priority   `json:"priority,omitempty"`
	Tags             []string         `json:"tags"`
	Project          string           `json:"project,omitempty"`
	RepeatType       model.RepeatType `json:"repeatType,omitempty"`
	RepeatInterval   int              `json:"repeatInterval,omitempty"`
	EstimatedMinutes *int             `json:"estimatedTime,omitempty"`
	Preview          string           `json:"preview"`
}

// ParseTask previews parser output, or creates the task when create is set.
func (h *Handler) ParseTask(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	parsed := h.parser.Parse(req.Text)
	if req.Create {
		task, err := h.store.AddParsed(parsed)
		if err != nil {
			h.handleErrors(w, r, err)
			return
		}
		w.Header().Set("Location", "/api/tasks/"+task.ID)
		respondJSON(w, r, http.StatusCreated, task)
		return
	}
	tags := parsed.Tags
	if tags == nil {
		tags = []string{}
	}
	respondJSON(w, r, http.StatusOK, parseResponse{
		Title:            parsed.Title,
		DueDate:          parsed.DueDate,
		Priority:         parsed.Priority,
		Tags:             tags,
		Project:          parsed.ProjectName,
		RepeatType:       parsed.RepeatType,
		RepeatInterval:   parsed.RepeatInterval,
		EstimatedMinutes: parsed.EstimatedMinutes,
		Preview:          nlp.Preview(parsed),
	})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.Task(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch store.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	task, err := h.store.UpdateTask(chi.URLParam(r, "id"), patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	done, next, err := h.store.CompleteTask(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"task": done, "next": next})
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	_, tasks := h.store.Snapshot()
	now := h.store.Now()
	switch chi.URLParam(r, "name") {
	case "overdue":
		respondJSON(w, r, http.StatusOK, query.Overdue(tasks, now))
	case "today":
		respondJSON(w, r, http.StatusOK, query.DueToday(tasks, now))
	case "upcoming":
		respondJSON(w, r, http.StatusOK, query.Upcoming(tasks, now))
	case "matrix":
		respondJSON(w, r, http.StatusOK, query.BuildMatrix(tasks, now))
	case "kanban":
		respondJSON(w, r, http.StatusOK, query.Kanban(tasks))
	case "week":
		respondJSON(w, r, http.StatusOK, query.Timeline(tasks, now))
	case "gantt":
		respondJSON(w, r, http.StatusOK, ganttRows(query.Gantt(tasks)))
	default:
		respondError(w, r, http.StatusNotFound, "unknown view")
	}
}

func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	tracker := h.store.Habits()
	if today, _ := strconv.ParseBool(r.URL.Query().Get("today")); today {
		respondJSON(w, r, http.StatusOK, tracker.TodayHabits(h.store.Now()))
		return
	}
	respondJSON(w, r, http.StatusOK, tracker.Habits())
}

func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req model.Habit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.store.Habits().AddHabit(req)
	if err != nil {
		h.handleErrors(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

// HabitStats answers zeroed stats for unknown habits.
func (h *Handler) HabitStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.store.Habits().Stats(chi.URLParam(r, "id"), h.store.Now()))
}

type completionRequest struct {
	Value *float64 `json:"value"`
	Note  string   `json:"note"`
}

func (h *Handler) MarkHabit(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDay(chi.URLParam(r, "date"), h.store.Now().Location())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	var req completionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid json")
			return
		}
	}
	c, err := h.store.Habits().MarkComplete(chi.URLParam(r, "id"), day, req.Value, req.Note)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, c)
}

func (h *Handler) UnmarkHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	day, err := model.ParseDay(chi.URLParam(r, "date"), h.store.Now().Location())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	tracker := h.store.Habits()
	if _, ok := tracker.Habit(id); !ok {
		h.handleErrors(w, r, fmt.Errorf("%w: %s", habit.ErrNotFound, id))
		return
	}
	tracker.MarkIncomplete(id, day)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	now := h.store.Now()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks-%s.json"`, model.Day(now)))
	if err := transfer.Export(w, h.store.Tasks(), now); err != nil {
		h.logger.Error("export failed", zap.Error(err))
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := transfer.Import(r.Body)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	added, replaced, err := transfer.Merge(h.store, res)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	h.logger.Info("tasks imported", zap.Int("added", added), zap.Int("replaced", replaced))
	respondJSON(w, r, http.StatusOK, map[string]int{"added": added, "replaced": replaced})
}

func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, habit.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidDay), errors.Is(err, query.ErrUnknownSortField):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, transfer.ErrMalformed), errors.Is(err, transfer.ErrMissingList):
		respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func filterFromQuery(r *http.Request) (query.Filter, query.Sort, string, error) {
	q := r.URL.Query()
	var f query.Filter
	for _, raw := range splitList(q.Get("status")) {
		st := model.Status(raw)
		if !st.IsValid() {
			return f, query.Sort{}, "", fmt.Errorf("%w: status %q", errBadRequest, raw)
		}
		f.Statuses = append(f.Statuses, st)
	}
	for _, raw := range splitList(q.Get("priority")) {
		p := model.Priority(raw)
		if !p.IsValid() {
			return f, query.Sort{}, "", fmt.Errorf("%w: priority %q", errBadRequest, raw)
		}
		f.Priorities = append(f.Priorities, p)
	}
	f.TagIDs = splitList(q.Get("tag"))
	f.ProjectIDs = splitList(q.Get("project"))

	var err error
	if f.Overdue, err = optionalBool(q.Get("overdue")); err != nil {
		return f, query.Sort{}, "", err
	}
	if v := q.Get("hasDueDate"); v != "" {
		b, err := optionalBool(v)
		if err != nil {
			return f, query.Sort{}, "", err
		}
		f.HasDueDate = &b
	}
	if v := q.Get("hasSubtasks"); v != "" {
		b, err := optionalBool(v)
		if err != nil {
			return f, query.Sort{}, "", err
		}
		f.HasSubtasks = &b
	}

	s := query.DefaultSort()
	if v := q.Get("sort"); v != "" {
		if s.Field, err = query.ParseSortField(v); err != nil {
			return f, s, "", err
		}
	}
	if v := q.Get("dir"); v != "" {
		if s.Direction, err = query.ParseDirection(v); err != nil {
			return f, s, "", fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}
	return f, s, q.Get("q"), nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optionalBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", errBadRequest, raw)
	}
	return b, nil
}
