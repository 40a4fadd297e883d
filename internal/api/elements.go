package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"main/internal/auth"
	"main/internal/element"
	"main/internal/room"
)

func (a *API) handleListElements(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}
	elements, err := a.store.ListElements(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	if elements == nil {
		elements = []*element.Element{}
	}
	respondJSON(w, http.StatusOK, elements)
}

func (a *API) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}

	count, err := a.store.CountElements(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	if count >= a.limits.MaxElements {
		badRequest(w, "project at maximum element capacity")
		return
	}

	el := &element.Element{}
	if err := json.NewDecoder(r.Body).Decode(el); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	el.ProjectID = projectID
	el.ID = ""
	if el.Styles != nil {
		if err := a.limits.ValidateStyleComplexity(el.Styles); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	if err := a.validator.ValidateAndSanitize(el); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := a.store.CreateElement(r.Context(), el)
	if err != nil {
		respondError(w, err)
		return
	}
	a.store.Touch(r.Context(), projectID)

	a.mirror(projectID, map[string]interface{}{
		"type":    "design-updated",
		"change":  "element-added",
		"element": created,
		"userId":  claims.UserID,
	}, func(rm *room.Room) { rm.Tree.ApplyAdded(created) })

	respondJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")
	elementID := chi.URLParam(r, "elementId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name     *string           `json:"name"`
		Content  *string           `json:"content"`
		Position *element.Position `json:"position"`
		Size     *element.Size     `json:"size"`
		Styles   map[string]any    `json:"styles"`
		ParentID *string           `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name != nil {
		clean := a.validator.SanitizeString(*req.Name)
		req.Name = &clean
	}
	if req.Content != nil {
		clean := a.validator.SanitizeString(*req.Content)
		req.Content = &clean
	}
	if req.Styles != nil {
		if err := a.limits.ValidateStyleComplexity(req.Styles); err != nil {
			badRequest(w, err.Error())
			return
		}
		req.Styles = a.validator.SanitizeStyles(req.Styles)
	}

	updated, err := a.store.UpdateElement(r.Context(), projectID, elementID, element.Patch{
		Name:     req.Name,
		Content:  req.Content,
		Position: req.Position,
		Size:     req.Size,
		Styles:   req.Styles,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	a.store.Touch(r.Context(), projectID)

	a.mirror(projectID, map[string]interface{}{
		"type":    "design-updated",
		"change":  "element-updated",
		"element": updated,
		"userId":  claims.UserID,
	}, func(rm *room.Room) { rm.Tree.ApplyUpdated(updated) })

	respondJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")
	elementID := chi.URLParam(r, "elementId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}

	removed, err := a.store.DeleteElement(r.Context(), projectID, elementID)
	if err != nil {
		respondError(w, err)
		return
	}
	a.store.Touch(r.Context(), projectID)

	a.mirror(projectID, map[string]interface{}{
		"type":      "design-updated",
		"change":    "element-deleted",
		"elementId": elementID,
		"userId":    claims.UserID,
	}, func(rm *room.Room) { rm.Tree.ApplyDeleted(elementID) })

	respondJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (a *API) handleDuplicateElement(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	projectID := chi.URLParam(r, "projectId")
	elementID := chi.URLParam(r, "elementId")

	if err := a.store.Access(r.Context(), claims.UserID, projectID); err != nil {
		respondError(w, err)
		return
	}

	count, err := a.store.CountElements(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	if count >= a.limits.MaxElements {
		badRequest(w, "project at maximum element capacity")
		return
	}

	cp, err := a.store.DuplicateElement(r.Context(), projectID, elementID)
	if err != nil {
		respondError(w, err)
		return
	}
	a.store.Touch(r.Context(), projectID)

	a.mirror(projectID, map[string]interface{}{
		"type":    "design-updated",
		"change":  "element-added",
		"element": cp,
		"userId":  claims.UserID,
	}, func(rm *room.Room) { rm.Tree.ApplyAdded(cp) })

	respondJSON(w, http.StatusCreated, cp)
}
