// Package access holds the single authorization rule of the tracker: a user
// sees a project when they created it or are one of its members, and sees a
// task when they see its project. Admin-only operations are gated by IsAdmin.
package access

import (
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/models"
)

const visibleProjectIDs = "SELECT id FROM projects WHERE created_by_id = ? " +
	"UNION SELECT project_id FROM project_members WHERE user_id = ?"

func IsAdmin(user models.User) bool {
	return user.IsSuperuser || user.Profile.Role == models.RoleAdmin
}

func CanAccessProject(user models.User, project models.Project) bool {
	return project.CreatedByID == user.ID || project.HasMember(user.ID)
}

// FilterProjects keeps the projects user can access, preserving order.
// Members must be preloaded.
func FilterProjects(user models.User, projects []models.Project) []models.Project {
	visible := make([]models.Project, 0, len(projects))
	for _, project := range projects {
		if CanAccessProject(user, project) {
			visible = append(visible, project)
		}
	}
	return visible
}

// VisibleProjects scopes a query on projects to those user can access.
func VisibleProjects(user models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.id IN ("+visibleProjectIDs+")", user.ID, user.ID)
	}
}

// VisibleTasks scopes a query on tasks to those whose project user can access.
func VisibleTasks(user models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.project_id IN ("+visibleProjectIDs+")", user.ID, user.ID)
	}
}
