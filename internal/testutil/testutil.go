// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HappyHacker143/taskflow/internal/db"
	"github.com/HappyHacker143/taskflow/internal/models"
)

const Password = "s3cret-pass"

// NewDB opens a migrated in-memory database that lives as long as the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	database, err := db.Open(":memory:", logger.Discard)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

type UserOption func(*models.User)

func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Profile.Role = role }
}

func WithDepartment(departmentID uint) UserOption {
	return func(u *models.User) { u.Profile.DepartmentID = &departmentID }
}

func WithPosition(position string) UserOption {
	return func(u *models.User) { u.Profile.Position = position }
}

func Inactive() UserOption {
	return func(u *models.User) { u.IsActive = false }
}

func Superuser() UserOption {
	return func(u *models.User) { u.IsSuperuser = true }
}

// CreateUser stores an active account with a profile. Its password is Password.
func CreateUser(t testing.TB, database *gorm.DB, username string, opts ...UserOption) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "First " + username,
		LastName:     "Last " + username,
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
		Profile: models.UserProfile{
			Role:        models.RoleEmployee,
			AvatarColor: models.DefaultAvatarColor,
		},
	}
	for _, opt := range opts {
		opt(&user)
	}

	active := user.IsActive
	profile := user.Profile
	require.NoError(t, database.Omit("Profile").Create(&user).Error)
	if !active {
		// gorm skips zero values that carry a column default.
		require.NoError(t, database.Model(&user).Update("is_active", false).Error)
	}
	profile.UserID = user.ID
	require.NoError(t, database.Omit("Department").Create(&profile).Error)

	require.NoError(t, database.Preload("Profile.Department").First(&user, user.ID).Error)
	return user
}

func CreateDepartment(t testing.TB, database *gorm.DB, name string) models.Department {
	t.Helper()

	department := models.Department{Name: name}
	require.NoError(t, database.Create(&department).Error)
	return department
}

func CreateProject(t testing.TB, database *gorm.DB, name string, owner models.User, members ...models.User) models.Project {
	t.Helper()

	project := models.Project{
		Name:        name,
		Color:       models.DefaultProjectColor,
		CreatedByID: owner.ID,
	}
	require.NoError(t, database.Omit("CreatedBy", "Members", "Tasks").Create(&project).Error)

	for _, member := range members {
		require.NoError(t, database.Create(&models.ProjectMember{ProjectID: project.ID, UserID: member.ID}).Error)
	}

	require.NoError(t, database.Preload("Members").First(&project, project.ID).Error)
	return project
}

type TaskOption func(*models.Task)

func WithStatus(status models.Status) TaskOption {
	return func(task *models.Task) { task.Status = status }
}

func WithAssignee(user models.User) TaskOption {
	return func(task *models.Task) { task.AssigneeID = &user.ID }
}

func WithDueDate(due time.Time) TaskOption {
	return func(task *models.Task) {
		date := datatypes.Date(due)
		task.DueDate = &date
	}
}

func WithCreatedAt(createdAt time.Time) TaskOption {
	return func(task *models.Task) { task.CreatedAt = createdAt }
}

func WithDescription(description string) TaskOption {
	return func(task *models.Task) { task.Description = description }
}

func WithTags(tags string) TaskOption {
	return func(task *models.Task) { task.Tags = tags }
}

func CreateTask(t testing.TB, database *gorm.DB, project models.Project, creator models.User, title string, opts ...TaskOption) models.Task {
	t.Helper()

	task := models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
		CreatedByID: creator.ID,
	}
	for _, opt := range opts {
		opt(&task)
	}

	require.NoError(t, database.Omit("Project", "Assignee", "CreatedBy", "Comments").Create(&task).Error)
	return task
}

func CreateComment(t testing.TB, database *gorm.DB, task models.Task, author models.User, text string) models.TaskComment {
	t.Helper()

	comment := models.TaskComment{TaskID: task.ID, AuthorID: author.ID, Text: text}
	require.NoError(t, database.Omit("Author").Create(&comment).Error)
	return comment
}
