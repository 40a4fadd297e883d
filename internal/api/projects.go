package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"main/internal/auth"
	"main/internal/codegen"
	"main/internal/store"
	"main/internal/user"
)

// handleLogin mints a token for a username. Identity here is deliberately
// lightweight: callers without an id get a generated one.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Username == "" {
		badRequest(w, "username is required")
		return
	}
	if req.UserID == "" {
		req.UserID = user.GenerateUUID()
	}

	token, err := a.tokens.Mint(req.UserID, a.validator.SanitizeString(req.Username))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"userId": req.UserID,
	})
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req struct {
		Name             string `json:"name"`
		CanvasWidth      int    `json:"canvasWidth"`
		CanvasHeight     int    `json:"canvasHeight"`
		CanvasBackground string `json:"canvasBackground"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "project name is required")
		return
	}

	p, err := a.store.CreateProject(r.Context(), claims.UserID,
		a.validator.SanitizeString(req.Name), req.CanvasWidth, req.CanvasHeight, req.CanvasBackground)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	projects, err := a.store.ListProjects(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	if projects == nil {
		projects = []*store.Project{}
	}
	respondJSON(w, http.StatusOK, projects)
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}
	p, err := a.store.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	var req struct {
		Name             *string `json:"name"`
		CanvasWidth      *int    `json:"canvasWidth"`
		CanvasHeight     *int    `json:"canvasHeight"`
		CanvasBackground *string `json:"canvasBackground"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name != nil {
		clean := a.validator.SanitizeString(*req.Name)
		req.Name = &clean
	}

	p, err := a.store.UpdateProject(r.Context(), claims.UserID, projectID, store.ProjectPatch{
		Name:             req.Name,
		CanvasWidth:      req.CanvasWidth,
		CanvasHeight:     req.CanvasHeight,
		CanvasBackground: req.CanvasBackground,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	if err := a.store.DeleteProject(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleShareProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "userId is required")
		return
	}

	if err := a.store.ShareProject(r.Context(), claims.UserID, projectID, req.UserID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "shared"})
}

// handleExportProject renders the project as an Angular component bundle.
func (a *API) handleExportProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}
	p, err := a.store.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	elements, err := a.store.ListElements(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	bundle := codegen.Generate(codegen.Project{
		Name:             p.Name,
		CanvasWidth:      p.CanvasWidth,
		CanvasHeight:     p.CanvasHeight,
		CanvasBackground: p.CanvasBackground,
	}, elements)
	respondJSON(w, http.StatusOK, bundle)
}
