package httpapi

import (
	"net/http"

	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

type createUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Password1    string `json:"password1"`
	Password2    string `json:"password2"`
	DepartmentID *uint  `json:"department_id"`
	Position     string `json:"position"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
}

type updateUserRequest struct {
	FirstName    *string      `json:"first_name"`
	LastName     *string      `json:"last_name"`
	Email        *string      `json:"email"`
	IsActive     *bool        `json:"is_active"`
	DepartmentID optionalUint `json:"department_id"`
	Position     *string      `json:"position"`
	Role         *string      `json:"role"`
	Phone        *string      `json:"phone"`
}

type createDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) routeUsers(w http.ResponseWriter, r *http.Request, actor models.User, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleListUsers(w, r)
		return

	case len(rest) == 1 && rest[0] == "create":
		switch r.Method {
		case http.MethodGet:
			h.handleNewUserForm(w, r)
		case http.MethodPost:
			h.handleCreateUser(w, r)
		default:
			methodNotAllowed(w)
		}
		return

	case len(rest) != 2:
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	userID, err := parseUintID(rest[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	switch rest[1] {
	case "edit":
		switch r.Method {
		case http.MethodGet:
			h.handleUserForm(w, r, userID)
		case http.MethodPost:
			h.handleUpdateUser(w, r, actor, userID)
		default:
			methodNotAllowed(w)
		}
	case "delete":
		switch r.Method {
		case http.MethodGet:
			h.handleDeactivationPreview(w, r, actor, userID)
		case http.MethodPost:
			h.handleDeactivateUser(w, r, actor, userID)
		default:
			methodNotAllowed(w)
		}
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) routeDepartments(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleListDepartments(w, r)
	case len(rest) == 1 && rest[0] == "create":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleCreateDepartment(w, r)
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	departmentID, err := parseOptionalID(query.Get("department"), "department")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.service.ListUsers(r.Context(), service.UserFilter{
		DepartmentID: departmentID,
		Search:       query.Get("search"),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleNewUserForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.NewUserForm(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.CreateUser(r.Context(), service.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Password1:    req.Password1,
		Password2:    req.Password2,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		Role:         req.Role,
		Phone:        req.Phone,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleUserForm(w http.ResponseWriter, r *http.Request, userID uint) {
	form, err := h.service.GetUserForm(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, actor models.User, userID uint) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actor, userID, service.UpdateUserInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		IsActive:      req.IsActive,
		DepartmentSet: req.DepartmentID.Set,
		DepartmentID:  req.DepartmentID.Value,
		Position:      req.Position,
		Role:          req.Role,
		Phone:         req.Phone,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeactivationPreview(w http.ResponseWriter, r *http.Request, actor models.User, userID uint) {
	if userID == actor.ID {
		writeError(w, http.StatusBadRequest, "you cannot deactivate your own account")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeactivateUser(w http.ResponseWriter, r *http.Request, actor models.User, userID uint) {
	user, err := h.service.DeactivateUser(r.Context(), actor, userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"departments": departments})
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	department, err := h.service.CreateDepartment(r.Context(), service.CreateDepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, department)
}
