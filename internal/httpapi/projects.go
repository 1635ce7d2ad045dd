package httpapi

import (
	"net/http"

	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	MemberIDs   []uint `json:"member_ids"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	MemberIDs   *[]uint `json:"member_ids"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request, actor models.User) {
	dashboard, err := h.service.GetDashboard(r.Context(), actor)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) routeProjects(w http.ResponseWriter, r *http.Request, actor models.User, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleListProjects(w, r, actor)
		return

	case len(rest) == 1 && rest[0] == "create":
		switch r.Method {
		case http.MethodGet:
			h.handleNewProjectForm(w, r)
		case http.MethodPost:
			h.handleCreateProject(w, r, actor)
		default:
			methodNotAllowed(w)
		}
		return
	}

	projectID, err := parseUintID(rest[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	switch {
	case len(rest) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleProjectBoard(w, r, actor, projectID)

	case len(rest) == 2 && rest[1] == "edit":
		switch r.Method {
		case http.MethodGet:
			h.handleProjectForm(w, r, actor, projectID)
		case http.MethodPost:
			h.handleUpdateProject(w, r, actor, projectID)
		default:
			methodNotAllowed(w)
		}

	case len(rest) == 2 && rest[1] == "delete":
		switch r.Method {
		case http.MethodGet:
			h.handleGetProject(w, r, actor, projectID)
		case http.MethodPost:
			h.handleDeleteProject(w, r, actor, projectID)
		default:
			methodNotAllowed(w)
		}

	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request, actor models.User) {
	projects, err := h.service.ListProjects(r.Context(), actor)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (h *Handler) handleNewProjectForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.NewProjectForm(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request, actor models.User) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.service.CreateProject(r.Context(), actor, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleProjectBoard(w http.ResponseWriter, r *http.Request, actor models.User, projectID uint) {
	board, err := h.service.GetProjectBoard(r.Context(), actor, projectID, taskFilterFromQuery(r))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) handleProjectForm(w http.ResponseWriter, r *http.Request, actor models.User, projectID uint) {
	form, err := h.service.GetProjectForm(r.Context(), actor, projectID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request, actor models.User, projectID uint) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.service.UpdateProject(r.Context(), actor, projectID, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request, actor models.User, projectID uint) {
	project, err := h.service.GetProject(r.Context(), actor, projectID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request, actor models.User, projectID uint) {
	if err := h.service.DeleteProject(r.Context(), actor, projectID); err != nil {
		h.respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
