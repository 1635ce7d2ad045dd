package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

const testToken = "11111111-2222-4333-8444-555555555555"

type stubService struct {
	loginFn            func(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
	logoutFn           func(ctx context.Context, token string) error
	authenticateFn     func(ctx context.Context, token string) (models.User, error)
	listUsersFn        func(ctx context.Context, filter service.UserFilter) (service.UserList, error)
	createUserFn       func(ctx context.Context, input service.CreateUserInput) (service.UserDTO, error)
	updateUserFn       func(ctx context.Context, actor models.User, userID uint, input service.UpdateUserInput) (service.UserDTO, error)
	deactivateUserFn   func(ctx context.Context, actor models.User, userID uint) (service.UserDTO, error)
	createDepartmentFn func(ctx context.Context, input service.CreateDepartmentInput) (service.DepartmentDTO, error)
	listProjectsFn     func(ctx context.Context, actor models.User) ([]service.ProjectDTO, error)
	projectBoardFn     func(ctx context.Context, actor models.User, projectID uint, filter service.TaskFilter) (service.ProjectBoard, error)
	deleteProjectFn    func(ctx context.Context, actor models.User, projectID uint) error
	createTaskFn       func(ctx context.Context, actor models.User, input service.CreateTaskInput) (service.TaskDTO, error)
	updateTaskFn       func(ctx context.Context, actor models.User, taskID uint, input service.UpdateTaskInput) (service.TaskDTO, error)
	updateStatusFn     func(ctx context.Context, actor models.User, taskID uint, status string) (service.TaskDTO, error)
	addCommentFn       func(ctx context.Context, actor models.User, taskID uint, input service.CommentInput) (service.CommentDTO, error)
}

func (s stubService) Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error) {
	if s.loginFn == nil {
		return service.LoginResult{}, nil
	}
	return s.loginFn(ctx, input)
}

func (s stubService) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s stubService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if s.authenticateFn == nil {
		if token != testToken {
			return models.User{}, apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		return models.User{ID: 1, Username: "employee"}, nil
	}
	return s.authenticateFn(ctx, token)
}

func (s stubService) ListUsers(ctx context.Context, filter service.UserFilter) (service.UserList, error) {
	if s.listUsersFn == nil {
		return service.UserList{}, nil
	}
	return s.listUsersFn(ctx, filter)
}

func (s stubService) NewUserForm(ctx context.Context) (service.UserForm, error) {
	return service.UserForm{}, nil
}

func (s stubService) GetUserForm(ctx context.Context, userID uint) (service.UserForm, error) {
	return service.UserForm{}, nil
}

func (s stubService) CreateUser(ctx context.Context, input service.CreateUserInput) (service.UserDTO, error) {
	if s.createUserFn == nil {
		return service.UserDTO{}, nil
	}
	return s.createUserFn(ctx, input)
}

func (s stubService) UpdateUser(ctx context.Context, actor models.User, userID uint, input service.UpdateUserInput) (service.UserDTO, error) {
	if s.updateUserFn == nil {
		return service.UserDTO{}, nil
	}
	return s.updateUserFn(ctx, actor, userID, input)
}

func (s stubService) GetUser(ctx context.Context, userID uint) (service.UserDTO, error) {
	return service.UserDTO{ID: userID}, nil
}

func (s stubService) DeactivateUser(ctx context.Context, actor models.User, userID uint) (service.UserDTO, error) {
	if s.deactivateUserFn == nil {
		return service.UserDTO{}, nil
	}
	return s.deactivateUserFn(ctx, actor, userID)
}

func (s stubService) ListDepartments(ctx context.Context) ([]service.DepartmentDTO, error) {
	return []service.DepartmentDTO{}, nil
}

func (s stubService) CreateDepartment(ctx context.Context, input service.CreateDepartmentInput) (service.DepartmentDTO, error) {
	if s.createDepartmentFn == nil {
		return service.DepartmentDTO{}, nil
	}
	return s.createDepartmentFn(ctx, input)
}

func (s stubService) GetDashboard(ctx context.Context, actor models.User) (service.Dashboard, error) {
	return service.Dashboard{}, nil
}

func (s stubService) ListProjects(ctx context.Context, actor models.User) ([]service.ProjectDTO, error) {
	if s.listProjectsFn == nil {
		return []service.ProjectDTO{}, nil
	}
	return s.listProjectsFn(ctx, actor)
}

func (s stubService) GetProject(ctx context.Context, actor models.User, projectID uint) (service.ProjectDTO, error) {
	return service.ProjectDTO{ID: projectID}, nil
}

func (s stubService) GetProjectBoard(ctx context.Context, actor models.User, projectID uint, filter service.TaskFilter) (service.ProjectBoard, error) {
	if s.projectBoardFn == nil {
		return service.ProjectBoard{}, nil
	}
	return s.projectBoardFn(ctx, actor, projectID, filter)
}

func (s stubService) NewProjectForm(ctx context.Context) (service.ProjectForm, error) {
	return service.ProjectForm{}, nil
}

func (s stubService) GetProjectForm(ctx context.Context, actor models.User, projectID uint) (service.ProjectForm, error) {
	return service.ProjectForm{}, nil
}

func (s stubService) CreateProject(ctx context.Context, actor models.User, input service.CreateProjectInput) (service.ProjectDTO, error) {
	return service.ProjectDTO{Name: input.Name}, nil
}

func (s stubService) UpdateProject(ctx context.Context, actor models.User, projectID uint, input service.UpdateProjectInput) (service.ProjectDTO, error) {
	return service.ProjectDTO{ID: projectID}, nil
}

func (s stubService) DeleteProject(ctx context.Context, actor models.User, projectID uint) error {
	if s.deleteProjectFn == nil {
		return nil
	}
	return s.deleteProjectFn(ctx, actor, projectID)
}

func (s stubService) NewTaskForm(ctx context.Context, actor models.User, projectID *uint) (service.TaskForm, error) {
	return service.TaskForm{}, nil
}

func (s stubService) GetTaskForm(ctx context.Context, actor models.User, taskID uint) (service.TaskForm, error) {
	return service.TaskForm{}, nil
}

func (s stubService) CreateTask(ctx context.Context, actor models.User, input service.CreateTaskInput) (service.TaskDTO, error) {
	if s.createTaskFn == nil {
		return service.TaskDTO{}, nil
	}
	return s.createTaskFn(ctx, actor, input)
}

func (s stubService) GetTask(ctx context.Context, actor models.User, taskID uint) (service.TaskDetail, error) {
	return service.TaskDetail{}, nil
}

func (s stubService) UpdateTask(ctx context.Context, actor models.User, taskID uint, input service.UpdateTaskInput) (service.TaskDTO, error) {
	if s.updateTaskFn == nil {
		return service.TaskDTO{}, nil
	}
	return s.updateTaskFn(ctx, actor, taskID, input)
}

func (s stubService) DeleteTask(ctx context.Context, actor models.User, taskID uint) (uint, error) {
	return 7, nil
}

func (s stubService) UpdateTaskStatus(ctx context.Context, actor models.User, taskID uint, status string) (service.TaskDTO, error) {
	if s.updateStatusFn == nil {
		return service.TaskDTO{}, nil
	}
	return s.updateStatusFn(ctx, actor, taskID, status)
}

func (s stubService) AddComment(ctx context.Context, actor models.User, taskID uint, input service.CommentInput) (service.CommentDTO, error) {
	if s.addCommentFn == nil {
		return service.CommentDTO{}, nil
	}
	return s.addCommentFn(ctx, actor, taskID, input)
}

func (s stubService) ListMyTasks(ctx context.Context, actor models.User, filter service.TaskFilter) (service.TaskList, error) {
	return service.TaskList{}, nil
}

func newTestHandler(svc stubService) *Handler {
	return NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), CookieConfig{Name: "sessionid"})
}

func authedRequest(method string, target string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: testToken})
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func TestRequiresSession(t *testing.T) {
	handler := newTestHandler(stubService{
		listProjectsFn: func(ctx context.Context, actor models.User) ([]service.ProjectDTO, error) {
			t.Fatal("service must not be called without a session")
			return nil, nil
		},
	})

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/projects/", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestHandler(stubService{})

	for _, path := range []string{"/nope/", "/projects/1/archive/", "/tasks/", "/tasks/1/comments/", "/dashboard/extra/"} {
		recorder := serve(handler, authedRequest(http.MethodGet, path, ""))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusNotFound, recorder.Code)
		}
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	handler := newTestHandler(stubService{
		listUsersFn: func(ctx context.Context, filter service.UserFilter) (service.UserList, error) {
			t.Fatal("non-admin reached the user list")
			return service.UserList{}, nil
		},
		createUserFn: func(ctx context.Context, input service.CreateUserInput) (service.UserDTO, error) {
			t.Fatal("non-admin created a user")
			return service.UserDTO{}, nil
		},
		createDepartmentFn: func(ctx context.Context, input service.CreateDepartmentInput) (service.DepartmentDTO, error) {
			t.Fatal("non-admin created a department")
			return service.DepartmentDTO{}, nil
		},
	})

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/users/", ""},
		{http.MethodGet, "/users/create/", ""},
		{http.MethodPost, "/users/create/", `{"username":"x"}`},
		{http.MethodGet, "/users/2/edit/", ""},
		{http.MethodPost, "/users/2/delete/", ""},
		{http.MethodGet, "/departments/", ""},
		{http.MethodPost, "/departments/create/", `{"name":"Ops"}`},
	}
	for _, tc := range cases {
		recorder := serve(handler, authedRequest(tc.method, tc.path, tc.body))
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusForbidden, recorder.Code)
		}
	}
}

func adminService(svc stubService) stubService {
	svc.authenticateFn = func(ctx context.Context, token string) (models.User, error) {
		return models.User{ID: 1, Username: "admin", Profile: models.UserProfile{Role: models.RoleAdmin}}, nil
	}
	return svc
}

func TestListUsersParsesFilters(t *testing.T) {
	handler := newTestHandler(adminService(stubService{
		listUsersFn: func(ctx context.Context, filter service.UserFilter) (service.UserList, error) {
			if filter.DepartmentID == nil || *filter.DepartmentID != 3 {
				t.Fatalf("unexpected department filter: %v", filter.DepartmentID)
			}
			if filter.Search != "anna" {
				t.Fatalf("unexpected search: %q", filter.Search)
			}
			return service.UserList{Users: []service.UserDTO{{ID: 5}}}, nil
		},
	}))

	recorder := serve(handler, authedRequest(http.MethodGet, "/users/?department=3&search=anna", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	recorder = serve(handler, authedRequest(http.MethodGet, "/users/?department=abc", ""))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestCreateUserValidationFields(t *testing.T) {
	handler := newTestHandler(adminService(stubService{
		createUserFn: func(ctx context.Context, input service.CreateUserInput) (service.UserDTO, error) {
			if input.Password1 != "a" || input.Password2 != "b" {
				t.Fatalf("passwords not passed through: %+v", input)
			}
			return service.UserDTO{}, apperror.Validation(map[string]string{"password2": "passwords do not match"})
		},
	}))

	body := `{"username":"new","first_name":"N","last_name":"U","password1":"a","password2":"b"}`
	recorder := serve(handler, authedRequest(http.MethodPost, "/users/create/", body))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	payload := decodeBody(t, recorder)
	fields, ok := payload["fields"].(map[string]interface{})
	if !ok || fields["password2"] != "passwords do not match" {
		t.Fatalf("expected password2 field error, got %v", payload)
	}
}

func TestDeactivateSelfPreviewRejected(t *testing.T) {
	handler := newTestHandler(adminService(stubService{}))

	recorder := serve(handler, authedRequest(http.MethodGet, "/users/1/delete/", ""))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	recorder = serve(handler, authedRequest(http.MethodGet, "/users/2/delete/", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	expires := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	handler := newTestHandler(stubService{
		loginFn: func(ctx context.Context, input service.LoginInput) (service.LoginResult, error) {
			if input.Username != "anna" || input.Password != "pw" {
				t.Fatalf("unexpected credentials: %+v", input)
			}
			return service.LoginResult{Token: testToken, ExpiresAt: expires, User: service.UserDTO{ID: 1}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/login/", bytes.NewBufferString(`{"username":"anna","password":"pw"}`))
	recorder := serve(handler, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sessionid" || cookies[0].Value != testToken || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	if strings.Contains(recorder.Body.String(), testToken) {
		t.Fatal("token must not leak into the response body")
	}
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	handler := newTestHandler(stubService{})

	req := httptest.NewRequest(http.MethodPost, "/login/", bytes.NewBufferString(`{"username":"a","password":"b","remember":true}`))
	recorder := serve(handler, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestSessionStatus(t *testing.T) {
	handler := newTestHandler(stubService{})

	payload := decodeBody(t, serve(handler, httptest.NewRequest(http.MethodGet, "/login/", nil)))
	if payload["authenticated"] != false {
		t.Fatalf("expected anonymous session, got %v", payload)
	}

	payload = decodeBody(t, serve(handler, authedRequest(http.MethodGet, "/login/", "")))
	if payload["authenticated"] != true {
		t.Fatalf("expected authenticated session, got %v", payload)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	var loggedOut string
	handler := newTestHandler(stubService{
		logoutFn: func(ctx context.Context, token string) error {
			loggedOut = token
			return nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodPost, "/logout/", ""))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, recorder.Code)
	}
	if loggedOut != testToken {
		t.Fatalf("expected session %s to be closed, got %q", testToken, loggedOut)
	}
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestProjectBoardPassesFilters(t *testing.T) {
	handler := newTestHandler(stubService{
		projectBoardFn: func(ctx context.Context, actor models.User, projectID uint, filter service.TaskFilter) (service.ProjectBoard, error) {
			if projectID != 4 || filter.Status != "review" || filter.Search != "api" {
				t.Fatalf("unexpected board call: %d %+v", projectID, filter)
			}
			return service.ProjectBoard{}, apperror.New(apperror.CodeNotFound, "project not found")
		},
	})

	recorder := serve(handler, authedRequest(http.MethodGet, "/projects/4/?status=review&search=api", ""))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestDeleteProject(t *testing.T) {
	deleted := uint(0)
	handler := newTestHandler(stubService{
		deleteProjectFn: func(ctx context.Context, actor models.User, projectID uint) error {
			deleted = projectID
			return nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodGet, "/projects/9/delete/", ""))
	if recorder.Code != http.StatusOK || deleted != 0 {
		t.Fatalf("confirmation must not delete: status %d, deleted %d", recorder.Code, deleted)
	}

	recorder = serve(handler, authedRequest(http.MethodPost, "/projects/9/delete/", ""))
	if recorder.Code != http.StatusNoContent || deleted != 9 {
		t.Fatalf("expected project 9 deleted, status %d, deleted %d", recorder.Code, deleted)
	}
}

func TestCreateTaskUsesPathProject(t *testing.T) {
	handler := newTestHandler(stubService{
		createTaskFn: func(ctx context.Context, actor models.User, input service.CreateTaskInput) (service.TaskDTO, error) {
			if input.ProjectID != 12 {
				t.Fatalf("expected project 12, got %d", input.ProjectID)
			}
			if input.DueDate == nil || input.DueDate.Format("2006-01-02") != "2025-05-01" {
				t.Fatalf("unexpected due date: %v", input.DueDate)
			}
			if actor.ID != 1 {
				t.Fatalf("unexpected actor: %d", actor.ID)
			}
			return service.TaskDTO{ID: 3, ProjectID: 12}, nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodPost, "/tasks/create/12/", `{"title":"T","due_date":"2025-05-01"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, recorder.Code)
	}

	recorder = serve(handler, authedRequest(http.MethodPost, "/tasks/create/", `{"title":"T","due_date":"01.05.2025"}`))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestUpdateTaskPartialFields(t *testing.T) {
	handler := newTestHandler(stubService{
		updateTaskFn: func(ctx context.Context, actor models.User, taskID uint, input service.UpdateTaskInput) (service.TaskDTO, error) {
			if !input.AssigneeSet || input.AssigneeID != nil {
				t.Fatalf("expected assignee cleared: %+v", input)
			}
			if input.DueDateSet {
				t.Fatalf("due date was not sent: %+v", input)
			}
			if input.Title == nil || *input.Title != "Renamed" {
				t.Fatalf("unexpected title: %v", input.Title)
			}
			return service.TaskDTO{ID: taskID}, nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodPost, "/tasks/5/edit/", `{"title":"Renamed","assignee_id":null}`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	handler := newTestHandler(stubService{
		updateStatusFn: func(ctx context.Context, actor models.User, taskID uint, status string) (service.TaskDTO, error) {
			if !models.Status(status).Valid() {
				return service.TaskDTO{}, apperror.Validation(map[string]string{"status": "invalid"})
			}
			return service.TaskDTO{ID: taskID, Status: models.Status(status)}, nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodPost, "/tasks/2/update-status/", `{"status":"done"}`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	payload := decodeBody(t, recorder)
	if payload["success"] != true || payload["status"] != "done" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	recorder = serve(handler, authedRequest(http.MethodPost, "/tasks/2/update-status/", `{"status":"archived"}`))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	payload = decodeBody(t, recorder)
	if payload["success"] != false {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["status"]; ok {
		t.Fatalf("failure must not echo a status: %v", payload)
	}

	recorder = serve(handler, authedRequest(http.MethodGet, "/tasks/2/update-status/", ""))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, recorder.Code)
	}
}

func TestAddComment(t *testing.T) {
	handler := newTestHandler(stubService{
		addCommentFn: func(ctx context.Context, actor models.User, taskID uint, input service.CommentInput) (service.CommentDTO, error) {
			return service.CommentDTO{ID: 1, TaskID: taskID, Text: input.Text}, nil
		},
	})

	recorder := serve(handler, authedRequest(http.MethodPost, "/tasks/8/comment/", `{"text":"looks good"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, recorder.Code)
	}
	if payload := decodeBody(t, recorder); payload["text"] != "looks good" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	handler := newTestHandler(stubService{
		listProjectsFn: func(ctx context.Context, actor models.User) ([]service.ProjectDTO, error) {
			return nil, io.ErrUnexpectedEOF
		},
	})

	recorder := serve(handler, authedRequest(http.MethodGet, "/projects/", ""))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	if payload := decodeBody(t, recorder); payload["error"] != "internal server error" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestLogRequestsRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := LogRequests(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	serve(handler, httptest.NewRequest(http.MethodGet, "/brew?cup=1", nil))

	line := buf.String()
	for _, want := range []string{"method=GET", "uri=\"/brew?cup=1\"", "status=418"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
