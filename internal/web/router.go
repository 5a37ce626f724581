// Package web serves the local JSON API over the shared task store.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Post("/parse", h.ParseTask)
			r.Post("/batch", h.Batch)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.Delete("/", h.DeleteTask)
				r.Post("/complete", h.CompleteTask)
			})
		})
		r.Get("/views/{name}", h.View)
		r.Route("/habits", func(r chi.Router) {
			r.Get("/", h.ListHabits)
			r.Post("/", h.CreateHabit)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.UpdateHabit)
				r.Delete("/", h.DeleteHabit)
				r.Post("/archive", h.ArchiveHabit)
				r.Get("/stats", h.HabitStats)
				r.Post("/completions/{date}", h.MarkHabit)
				r.Delete("/completions/{date}", h.UnmarkHabit)
			})
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Patch("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Get("/{id}/tasks", h.ProjectTasks)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.Post("/", h.CreateTag)
			r.Patch("/{id}", h.UpdateTag)
			r.Delete("/{id}", h.DeleteTag)
			r.Get("/{id}/tasks", h.TagTasks)
		})
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
			r.Post("/{id}/use", h.UseTemplate)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/read", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
			r.Post("/{id}/snooze", h.SnoozeNotification)
			r.Delete("/{id}", h.DismissNotification)
		})
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
	})
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
