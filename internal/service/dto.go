package service

import (
	"time"

	"github.com/HappyHacker143/taskflow/internal/access"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/stats"
)

const dateLayout = "2006-01-02"

func userToRef(user models.User) UserRef {
	return UserRef{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Initials:    user.Initials(),
		Position:    user.Profile.Position,
		AvatarColor: user.Profile.AvatarColor,
	}
}

func userToDTO(user models.User) UserDTO {
	var department *DepartmentRef
	if user.Profile.Department != nil {
		department = &DepartmentRef{
			ID:   user.Profile.Department.ID,
			Name: user.Profile.Department.Name,
		}
	}

	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		DisplayName: user.DisplayName(),
		Initials:    user.Initials(),
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		IsAdmin:     access.IsAdmin(user),
		Department:  department,
		Position:    user.Profile.Position,
		Role:        user.Profile.Role,
		RoleLabel:   user.Profile.Role.Label(),
		Phone:       user.Profile.Phone,
		AvatarColor: user.Profile.AvatarColor,
		DateJoined:  user.DateJoined,
		LastLogin:   user.LastLogin,
	}
}

// memberLabel is how an account is shown in member and assignee pickers.
func memberLabel(user models.User) string {
	position := user.Profile.Position
	if position == "" {
		position = models.RoleEmployee.Label()
	}
	return user.FullName() + " (" + position + ")"
}

func usersToOptions(users []models.User) []MemberOption {
	options := make([]MemberOption, 0, len(users))
	for _, user := range users {
		options = append(options, MemberOption{ID: user.ID, Label: memberLabel(user)})
	}
	return options
}

func projectToDTO(project models.Project, counts taskCounts) ProjectDTO {
	members := make([]UserRef, 0, len(project.Members))
	for _, member := range project.Members {
		members = append(members, userToRef(member))
	}

	return ProjectDTO{
		ID:                 project.ID,
		Name:               project.Name,
		Description:        project.Description,
		Color:              project.Color,
		CreatedBy:          userToRef(project.CreatedBy),
		Members:            members,
		TaskCount:          counts.Total,
		CompletedTaskCount: counts.Completed,
		ProgressPercent:    stats.ProgressPercent(int(counts.Completed), int(counts.Total)),
		CreatedAt:          project.CreatedAt,
		UpdatedAt:          project.UpdatedAt,
	}
}

func formatDate(task models.Task) *string {
	due, ok := task.DueOn()
	if !ok {
		return nil
	}
	formatted := due.Format(dateLayout)
	return &formatted
}

func taskToDTO(task models.Task, today time.Time) TaskDTO {
	var assignee *UserRef
	if task.Assignee != nil {
		ref := userToRef(*task.Assignee)
		assignee = &ref
	}

	return TaskDTO{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		ProjectName:   task.Project.Name,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		StatusLabel:   task.Status.Label(),
		Priority:      task.Priority,
		PriorityLabel: task.Priority.Label(),
		Assignee:      assignee,
		CreatedBy:     userToRef(task.CreatedBy),
		DueDate:       formatDate(task),
		Tags:          task.Tags,
		TagList:       task.TagList(),
		IsOverdue:     stats.IsOverdue(task, today),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func tasksToDTO(tasks []models.Task, today time.Time) []TaskDTO {
	result := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, taskToDTO(task, today))
	}
	return result
}

func statusChoices() []Choice {
	choices := make([]Choice, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		choices = append(choices, Choice{Value: string(status), Label: status.Label()})
	}
	return choices
}

func priorityChoices() []Choice {
	choices := make([]Choice, 0, len(models.Priorities))
	for _, priority := range models.Priorities {
		choices = append(choices, Choice{Value: string(priority), Label: priority.Label()})
	}
	return choices
}

func roleChoices() []Choice {
	choices := make([]Choice, 0, len(models.Roles))
	for _, role := range models.Roles {
		choices = append(choices, Choice{Value: string(role), Label: role.Label()})
	}
	return choices
}
