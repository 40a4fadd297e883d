// Package api is the REST surface: project and element persistence, sharing,
// and Angular export. The collaboration channel relays live edits; this is
// where state is durably written and read.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"main/internal/auth"
	"main/internal/element"
	"main/internal/middleware"
	"main/internal/room"
	"main/internal/store"
)

type API struct {
	store       *store.Store
	tokens      *auth.Service
	validator   *element.Validator
	limits      *middleware.Limits
	rooms       *room.Manager
	broadcaster *room.Broadcaster
}

func New(
	st *store.Store,
	tokens *auth.Service,
	validator *element.Validator,
	limits *middleware.Limits,
	rooms *room.Manager,
	broadcaster *room.Broadcaster,
) *API {
	return &API{
		store:       st,
		tokens:      tokens,
		validator:   validator,
		limits:      limits,
		rooms:       rooms,
		broadcaster: broadcaster,
	}
}

// Router assembles the full REST surface. Everything except login requires a
// Bearer token.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Post("/api/auth/login", a.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(a.tokens.Middleware)

		r.Route("/api/projects", func(r chi.Router) {
			r.Post("/", a.handleCreateProject)
			r.Get("/", a.handleListProjects)

			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", a.handleGetProject)
				r.Put("/", a.handleUpdateProject)
				r.Delete("/", a.handleDeleteProject)
				r.Post("/share", a.handleShareProject)
				r.Get("/export", a.handleExportProject)

				r.Route("/elements", func(r chi.Router) {
					r.Get("/", a.handleListElements)
					r.Post("/", a.handleCreateElement)
					r.Put("/{elementId}", a.handleUpdateElement)
					r.Delete("/{elementId}", a.handleDeleteElement)
					r.Post("/{elementId}/duplicate", a.handleDuplicateElement)
				})
			})
		})
	})

	return r
}

// mirror pushes a REST mutation into the project's open room, if any, so
// connected editors converge without a refresh. The broadcast has no sender,
// every participant receives it.
func (a *API) mirror(projectID string, payload map[string]interface{}, apply func(rm *room.Room)) {
	rm, ok := a.rooms.GetRoom(projectID)
	if !ok {
		return
	}
	apply(rm)
	rm.Touch()

	msg, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal mirror broadcast", "error", err)
		return
	}
	a.broadcaster.Broadcast(rm, msg, nil)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, store.ErrForbidden):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, element.ErrCycle), errors.Is(err, element.ErrInvalidParent):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
