package service

import (
	"context"
	"time"

	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/stats"
)

type LoginInput struct {
	Username string
	Password string
}

type CreateDepartmentInput struct {
	Name        string
	Description string
}

type CreateUserInput struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Password1    string
	Password2    string
	DepartmentID *uint
	Position     string
	Role         string
	Phone        string
	IsSuperuser  bool
}

// UpdateUserInput leaves a field untouched when its pointer is nil.
type UpdateUserInput struct {
	FirstName     *string
	LastName      *string
	Email         *string
	IsActive      *bool
	DepartmentSet bool
	DepartmentID  *uint
	Position      *string
	Role          *string
	Phone         *string
}

type UserFilter struct {
	DepartmentID *uint
	Search       string
}

type CreateProjectInput struct {
	Name        string
	Description string
	Color       string
	MemberIDs   []uint
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
	MemberIDs   *[]uint
}

type CreateTaskInput struct {
	ProjectID   uint
	Title       string
	Description string
	Status      string
	Priority    string
	AssigneeID  *uint
	DueDate     *time.Time
	Tags        string
}

type UpdateTaskInput struct {
	ProjectID   *uint
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeSet bool
	AssigneeID  *uint
	DueDateSet  bool
	DueDate     *time.Time
	Tags        *string
}

type TaskFilter struct {
	Status string
	Search string
}

type CommentInput struct {
	Text string
}

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type DepartmentRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type DepartmentDTO struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	EmployeeCount int64     `json:"employee_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserRef struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Initials    string `json:"initials"`
	Position    string `json:"position"`
	AvatarColor string `json:"avatar_color"`
}

type UserDTO struct {
	ID          uint           `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	FullName    string         `json:"full_name"`
	DisplayName string         `json:"display_name"`
	Initials    string         `json:"initials"`
	IsActive    bool           `json:"is_active"`
	IsSuperuser bool           `json:"is_superuser"`
	IsAdmin     bool           `json:"is_admin"`
	Department  *DepartmentRef `json:"department"`
	Position    string         `json:"position"`
	Role        models.Role    `json:"role"`
	RoleLabel   string         `json:"role_label"`
	Phone       string         `json:"phone"`
	AvatarColor string         `json:"avatar_color"`
	DateJoined  time.Time      `json:"date_joined"`
	LastLogin   *time.Time     `json:"last_login"`
}

type UserList struct {
	Users       []UserDTO       `json:"users"`
	Departments []DepartmentRef `json:"departments"`
	Filter      UserFilterDTO   `json:"filter"`
}

type UserFilterDTO struct {
	DepartmentID *uint  `json:"department"`
	Search       string `json:"search"`
}

type UserFormValues struct {
	Username     string      `json:"username,omitempty"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	IsActive     bool        `json:"is_active"`
	DepartmentID *uint       `json:"department_id"`
	Position     string      `json:"position"`
	Role         models.Role `json:"role"`
	Phone        string      `json:"phone"`
}

type UserForm struct {
	User        *UserDTO        `json:"user,omitempty"`
	Initial     UserFormValues  `json:"initial"`
	Departments []DepartmentRef `json:"departments"`
	Roles       []Choice        `json:"roles"`
}

type LoginResult struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

type ProjectDTO struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Color              string    `json:"color"`
	CreatedBy          UserRef   `json:"created_by"`
	Members            []UserRef `json:"members"`
	TaskCount          int64     `json:"task_count"`
	CompletedTaskCount int64     `json:"completed_task_count"`
	ProgressPercent    float64   `json:"progress_percent"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type MemberOption struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

type ProjectFormValues struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	MemberIDs   []uint `json:"member_ids"`
}

type ProjectForm struct {
	Project *ProjectDTO       `json:"project,omitempty"`
	Initial ProjectFormValues `json:"initial"`
	Members []MemberOption    `json:"members"`
}

type TaskDTO struct {
	ID            uint            `json:"id"`
	ProjectID     uint            `json:"project_id"`
	ProjectName   string          `json:"project_name"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        models.Status   `json:"status"`
	StatusLabel   string          `json:"status_label"`
	Priority      models.Priority `json:"priority"`
	PriorityLabel string          `json:"priority_label"`
	Assignee      *UserRef        `json:"assignee"`
	CreatedBy     UserRef         `json:"created_by"`
	DueDate       *string         `json:"due_date"`
	Tags          string          `json:"tags"`
	TagList       []string        `json:"tag_list"`
	IsOverdue     bool            `json:"is_overdue"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CommentDTO struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	Author    UserRef   `json:"author"`
	Text      string    `json:"text"`
	TextHTML  string    `json:"text_html"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskDetail struct {
	Task            TaskDTO      `json:"task"`
	DescriptionHTML string       `json:"description_html"`
	Comments        []CommentDTO `json:"comments"`
}

type ProjectOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TaskFormValues struct {
	ProjectID   *uint           `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	AssigneeID  *uint           `json:"assignee_id"`
	DueDate     *string         `json:"due_date"`
	Tags        string          `json:"tags"`
}

type TaskForm struct {
	Task       *TaskDTO        `json:"task,omitempty"`
	Initial    TaskFormValues  `json:"initial"`
	Projects   []ProjectOption `json:"projects"`
	Assignees  []MemberOption  `json:"assignees"`
	Statuses   []Choice        `json:"statuses"`
	Priorities []Choice        `json:"priorities"`
}

type KanbanColumn struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
	Tasks  []TaskDTO     `json:"tasks"`
}

type ProjectBoard struct {
	Project      ProjectDTO     `json:"project"`
	Tasks        []TaskDTO      `json:"tasks"`
	Columns      []KanbanColumn `json:"columns"`
	StatusFilter string         `json:"status_filter"`
	Search       string         `json:"search"`
}

type TaskList struct {
	Tasks        []TaskDTO `json:"tasks"`
	StatusFilter string    `json:"status_filter"`
	Search       string    `json:"search"`
}

type Dashboard struct {
	Projects []ProjectDTO         `json:"projects"`
	MyTasks  []TaskDTO            `json:"my_tasks"`
	Stats    stats.DashboardStats `json:"stats"`
}

type AuthManager interface {
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (models.User, error)
}

type UserManager interface {
	ListUsers(ctx context.Context, filter UserFilter) (UserList, error)
	NewUserForm(ctx context.Context) (UserForm, error)
	GetUserForm(ctx context.Context, userID uint) (UserForm, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserDTO, error)
	UpdateUser(ctx context.Context, actor models.User, userID uint, input UpdateUserInput) (UserDTO, error)
	GetUser(ctx context.Context, userID uint) (UserDTO, error)
	DeactivateUser(ctx context.Context, actor models.User, userID uint) (UserDTO, error)
}

type DepartmentManager interface {
	ListDepartments(ctx context.Context) ([]DepartmentDTO, error)
	CreateDepartment(ctx context.Context, input CreateDepartmentInput) (DepartmentDTO, error)
}

type ProjectManager interface {
	GetDashboard(ctx context.Context, actor models.User) (Dashboard, error)
	ListProjects(ctx context.Context, actor models.User) ([]ProjectDTO, error)
	GetProject(ctx context.Context, actor models.User, projectID uint) (ProjectDTO, error)
	GetProjectBoard(ctx context.Context, actor models.User, projectID uint, filter TaskFilter) (ProjectBoard, error)
	NewProjectForm(ctx context.Context) (ProjectForm, error)
	GetProjectForm(ctx context.Context, actor models.User, projectID uint) (ProjectForm, error)
	CreateProject(ctx context.Context, actor models.User, input CreateProjectInput) (ProjectDTO, error)
	UpdateProject(ctx context.Context, actor models.User, projectID uint, input UpdateProjectInput) (ProjectDTO, error)
	DeleteProject(ctx context.Context, actor models.User, projectID uint) error
}

type TaskManager interface {
	NewTaskForm(ctx context.Context, actor models.User, projectID *uint) (TaskForm, error)
	GetTaskForm(ctx context.Context, actor models.User, taskID uint) (TaskForm, error)
	CreateTask(ctx context.Context, actor models.User, input CreateTaskInput) (TaskDTO, error)
	GetTask(ctx context.Context, actor models.User, taskID uint) (TaskDetail, error)
	UpdateTask(ctx context.Context, actor models.User, taskID uint, input UpdateTaskInput) (TaskDTO, error)
	DeleteTask(ctx context.Context, actor models.User, taskID uint) (uint, error)
	UpdateTaskStatus(ctx context.Context, actor models.User, taskID uint, status string) (TaskDTO, error)
	AddComment(ctx context.Context, actor models.User, taskID uint, input CommentInput) (CommentDTO, error)
	ListMyTasks(ctx context.Context, actor models.User, filter TaskFilter) (TaskList, error)
}

type Manager interface {
	AuthManager
	UserManager
	DepartmentManager
	ProjectManager
	TaskManager
}
