package httpapi

import (
	"net/http"
	"strings"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

type createTaskRequest struct {
	ProjectID   *uint   `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
	DueDate     *string `json:"due_date"`
	Tags        string  `json:"tags"`
}

type updateTaskRequest struct {
	ProjectID   *uint          `json:"project_id"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	AssigneeID  optionalUint   `json:"assignee_id"`
	DueDate     optionalString `json:"due_date"`
	Tags        *string        `json:"tags"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Success bool          `json:"success"`
	Status  models.Status `json:"status,omitempty"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) routeTasks(w http.ResponseWriter, r *http.Request, actor models.User, rest []string) {
	if len(rest) == 0 {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	if rest[0] == "create" {
		if len(rest) > 2 {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}

		var projectID *uint
		if len(rest) == 2 {
			id, err := parseUintID(rest[1])
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid project id")
				return
			}
			projectID = &id
		}

		switch r.Method {
		case http.MethodGet:
			h.handleNewTaskForm(w, r, actor, projectID)
		case http.MethodPost:
			h.handleCreateTask(w, r, actor, projectID)
		default:
			methodNotAllowed(w)
		}
		return
	}

	taskID, err := parseUintID(rest[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	switch {
	case len(rest) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleGetTask(w, r, actor, taskID)

	case len(rest) == 2 && rest[1] == "edit":
		switch r.Method {
		case http.MethodGet:
			h.handleTaskForm(w, r, actor, taskID)
		case http.MethodPost:
			h.handleUpdateTask(w, r, actor, taskID)
		default:
			methodNotAllowed(w)
		}

	case len(rest) == 2 && rest[1] == "delete":
		switch r.Method {
		case http.MethodGet:
			h.handleGetTask(w, r, actor, taskID)
		case http.MethodPost:
			h.handleDeleteTask(w, r, actor, taskID)
		default:
			methodNotAllowed(w)
		}

	case len(rest) == 2 && rest[1] == "update-status":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleUpdateTaskStatus(w, r, actor, taskID)

	case len(rest) == 2 && rest[1] == "comment":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleAddComment(w, r, actor, taskID)

	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) handleNewTaskForm(w http.ResponseWriter, r *http.Request, actor models.User, projectID *uint) {
	form, err := h.service.NewTaskForm(r.Context(), actor, projectID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// handleCreateTask takes the project from the body and falls back to the one
// in the path.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request, actor models.User, pathProjectID *uint) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	projectID := req.ProjectID
	if projectID == nil {
		projectID = pathProjectID
	}
	var project uint
	if projectID != nil {
		project = *projectID
	}

	task, err := h.service.CreateTask(r.Context(), actor, service.CreateTaskInput{
		ProjectID:   project,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     dueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	detail, err := h.service.GetTask(r.Context(), actor, taskID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleTaskForm(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	form, err := h.service.GetTaskForm(r.Context(), actor, taskID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate.Value, "due_date")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), actor, taskID, service.UpdateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeSet: req.AssigneeID.Set,
		AssigneeID:  req.AssigneeID.Value,
		DueDateSet:  req.DueDate.Set,
		DueDate:     dueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	projectID, err := h.service.DeleteTask(r.Context(), actor, taskID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint{"project_id": projectID})
}

// handleUpdateTaskStatus answers the board's drag-and-drop calls with a bare
// success flag.
func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, updateStatusResponse{Success: false})
		return
	}

	task, err := h.service.UpdateTaskStatus(r.Context(), actor, taskID, strings.TrimSpace(req.Status))
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeValidation {
			writeJSON(w, http.StatusBadRequest, updateStatusResponse{Success: false})
			return
		}
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateStatusResponse{Success: true, Status: task.Status})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request, actor models.User, taskID uint) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.service.AddComment(r.Context(), actor, taskID, service.CommentInput{Text: req.Text})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleMyTasks(w http.ResponseWriter, r *http.Request, actor models.User) {
	list, err := h.service.ListMyTasks(r.Context(), actor, taskFilterFromQuery(r))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
