package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HappyHacker143/taskflow/internal/access"
	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	service service.Manager
	logger  *slog.Logger
	cookie  CookieConfig
}

func NewHandler(svc service.Manager, logger *slog.Logger, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "sessionid"
	}
	return &Handler{
		service: svc,
		logger:  logger,
		cookie:  cookie,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch parts[0] {
	case "login":
		h.routeLogin(w, r, parts[1:])
		return
	case "logout":
		h.routeLogout(w, r, parts[1:])
		return
	case "", "dashboard", "projects", "tasks", "my-tasks", "users", "departments":
	default:
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch parts[0] {
	case "", "dashboard":
		if len(parts) > 1 {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleDashboard(w, r, actor)
	case "projects":
		h.routeProjects(w, r, actor, parts[1:])
	case "tasks":
		h.routeTasks(w, r, actor, parts[1:])
	case "my-tasks":
		if len(parts) > 1 {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleMyTasks(w, r, actor)
	case "users", "departments":
		if !access.IsAdmin(actor) {
			writeError(w, http.StatusForbidden, "administrator access required")
			return
		}
		if parts[0] == "users" {
			h.routeUsers(w, r, actor, parts[1:])
		} else {
			h.routeDepartments(w, r, parts[1:])
		}
	}
}

// authenticate resolves the session cookie to the acting user and answers
// 401 itself when that fails.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	token := ""
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		token = cookie.Value
	}

	user, err := h.service.Authenticate(r.Context(), token)
	if err != nil {
		h.respondWithError(w, err)
		return models.User{}, false
	}
	return user, true
}

func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	switch apperror.GetCode(err) {
	case apperror.CodeValidation:
		if fields := apperror.FieldErrors(err); len(fields) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  err.Error(),
				"fields": fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
	case apperror.CodeNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperror.CodeConflict:
		writeError(w, http.StatusConflict, err.Error())
	case apperror.CodeUnauthorized:
		writeError(w, http.StatusUnauthorized, err.Error())
	case apperror.CodeForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error("unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return errors.New("invalid JSON body")
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func parseUintID(raw string) (uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id64), nil
}

func parseOptionalID(raw string, field string) (*uint, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsedID, err := parseUintID(value)
	if err != nil {
		return nil, errors.New(field + " must be a positive integer")
	}
	return &parsedID, nil
}

// parseDate reads a YYYY-MM-DD value. A missing or blank value means no date.
func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperror.Validation(map[string]string{
			field: field + " must be in YYYY-MM-DD format",
		})
	}

	return &parsed, nil
}

func taskFilterFromQuery(r *http.Request) service.TaskFilter {
	query := r.URL.Query()
	return service.TaskFilter{
		Status: query.Get("status"),
		Search: query.Get("search"),
	}
}

// optionalUint tells an explicit null apart from an absent field.
type optionalUint struct {
	Set   bool
	Value *uint
}

func (o *optionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	var value uint
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}
