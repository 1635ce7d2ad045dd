package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/access"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/stats"
)

const dashboardTaskLimit = 10

type ProjectService struct {
	db      *gorm.DB
	options Options
}

func NewProjectService(db *gorm.DB, options Options) *ProjectService {
	return &ProjectService{db: db, options: options.withDefaults()}
}

type taskCounts struct {
	Total     int64
	Completed int64
}

type taskCountRow struct {
	ProjectID uint
	Total     int64
	Completed int64
}

func loadTaskCounts(ctx context.Context, db *gorm.DB, projectIDs []uint) (map[uint]taskCounts, error) {
	counts := make(map[uint]taskCounts, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	var rows []taskCountRow
	if err := db.WithContext(ctx).
		Model(&models.Task{}).
		Select("project_id, COUNT(*) AS total, COUNT(CASE WHEN status = ? THEN 1 END) AS completed", models.StatusDone).
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count project tasks: %w", err)
	}

	for _, row := range rows {
		counts[row.ProjectID] = taskCounts{Total: row.Total, Completed: row.Completed}
	}
	return counts, nil
}

func orderMembers(db *gorm.DB) *gorm.DB {
	return db.Order("users.first_name ASC, users.last_name ASC, users.id ASC")
}

// projectsQuery preloads what a ProjectDTO shows.
func projectsQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Preload("CreatedBy.Profile").
		Preload("Members", orderMembers).
		Preload("Members.Profile")
}

func (s *ProjectService) visibleProjects(ctx context.Context, actor models.User) ([]models.Project, error) {
	var projects []models.Project
	if err := projectsQuery(ctx, s.db).
		Scopes(access.VisibleProjects(actor)).
		Order("projects.created_at DESC, projects.id DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) projectsToDTO(ctx context.Context, projects []models.Project) ([]ProjectDTO, error) {
	ids := make([]uint, 0, len(projects))
	for _, project := range projects {
		ids = append(ids, project.ID)
	}

	counts, err := loadTaskCounts(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]ProjectDTO, 0, len(projects))
	for _, project := range projects {
		result = append(result, projectToDTO(project, counts[project.ID]))
	}
	return result, nil
}

// loadVisibleProject returns the project only when actor may access it;
// anything else is reported as not found.
func loadVisibleProject(ctx context.Context, db *gorm.DB, actor models.User, projectID uint) (models.Project, error) {
	var project models.Project
	err := projectsQuery(ctx, db).
		Scopes(access.VisibleProjects(actor)).
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, notFound("project")
		}
		return models.Project{}, fmt.Errorf("load project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetDashboard(ctx context.Context, actor models.User) (Dashboard, error) {
	projects, err := s.visibleProjects(ctx, actor)
	if err != nil {
		return Dashboard{}, err
	}
	projectDTOs, err := s.projectsToDTO(ctx, projects)
	if err != nil {
		return Dashboard{}, err
	}

	var visible []models.Task
	if err := s.db.WithContext(ctx).
		Scopes(access.VisibleTasks(actor)).
		Find(&visible).Error; err != nil {
		return Dashboard{}, fmt.Errorf("load visible tasks: %w", err)
	}

	var mine []models.Task
	if err := tasksQuery(ctx, s.db).
		Scopes(access.VisibleTasks(actor)).
		Where("tasks.assignee_id = ?", actor.ID).
		Order("tasks.created_at DESC, tasks.id DESC").
		Limit(dashboardTaskLimit).
		Find(&mine).Error; err != nil {
		return Dashboard{}, fmt.Errorf("load assigned tasks: %w", err)
	}

	today := s.options.today()
	return Dashboard{
		Projects: projectDTOs,
		MyTasks:  tasksToDTO(mine, today),
		Stats:    stats.Dashboard(visible, today),
	}, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, actor models.User) ([]ProjectDTO, error) {
	projects, err := s.visibleProjects(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.projectsToDTO(ctx, projects)
}

func (s *ProjectService) GetProject(ctx context.Context, actor models.User, projectID uint) (ProjectDTO, error) {
	project, err := loadVisibleProject(ctx, s.db, actor, projectID)
	if err != nil {
		return ProjectDTO{}, err
	}

	dtos, err := s.projectsToDTO(ctx, []models.Project{project})
	if err != nil {
		return ProjectDTO{}, err
	}
	return dtos[0], nil
}

// GetProjectBoard returns the project with its tasks grouped into the status
// columns. Filters apply before grouping.
func (s *ProjectService) GetProjectBoard(ctx context.Context, actor models.User, projectID uint, filter TaskFilter) (ProjectBoard, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return ProjectBoard{}, err
	}

	query := tasksQuery(ctx, s.db).Where("tasks.project_id = ?", project.ID)
	query, status, err := applyTaskFilter(query, filter, "tasks.title", "tasks.description", "tasks.tags")
	if err != nil {
		return ProjectBoard{}, err
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at DESC, tasks.id DESC").Find(&tasks).Error; err != nil {
		return ProjectBoard{}, fmt.Errorf("load project tasks: %w", err)
	}

	today := s.options.today()
	groups := stats.GroupKanban(tasks)
	columns := make([]KanbanColumn, 0, len(groups))
	for _, group := range groups {
		columns = append(columns, KanbanColumn{
			Status: group.Status,
			Label:  group.Label,
			Count:  len(group.Tasks),
			Tasks:  tasksToDTO(group.Tasks, today),
		})
	}

	return ProjectBoard{
		Project:      project,
		Tasks:        tasksToDTO(tasks, today),
		Columns:      columns,
		StatusFilter: status,
		Search:       strings.TrimSpace(filter.Search),
	}, nil
}

func (s *ProjectService) NewProjectForm(ctx context.Context) (ProjectForm, error) {
	members, err := loadActiveUsers(ctx, s.db)
	if err != nil {
		return ProjectForm{}, err
	}

	return ProjectForm{
		Initial: ProjectFormValues{
			Color:     models.DefaultProjectColor,
			MemberIDs: []uint{},
		},
		Members: usersToOptions(members),
	}, nil
}

func (s *ProjectService) GetProjectForm(ctx context.Context, actor models.User, projectID uint) (ProjectForm, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return ProjectForm{}, err
	}

	members, err := loadActiveUsers(ctx, s.db)
	if err != nil {
		return ProjectForm{}, err
	}

	memberIDs := make([]uint, 0, len(project.Members))
	for _, member := range project.Members {
		memberIDs = append(memberIDs, member.ID)
	}

	return ProjectForm{
		Project: &project,
		Initial: ProjectFormValues{
			Name:        project.Name,
			Description: project.Description,
			Color:       project.Color,
			MemberIDs:   memberIDs,
		},
		Members: usersToOptions(members),
	}, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, actor models.User, input CreateProjectInput) (ProjectDTO, error) {
	errs := fieldErrors{}

	name, msg := normalizeRequiredString(input.Name, "name", 200)
	if msg != "" {
		errs.add("name", msg)
	}
	description, msg := normalizeOptionalString(input.Description, "description", 10000)
	if msg != "" {
		errs.add("description", msg)
	}
	color, msg := normalizeColor(input.Color, models.DefaultProjectColor)
	if msg != "" {
		errs.add("color", msg)
	}

	memberIDs := uniqueIDs(input.MemberIDs)
	if err := s.validateMembers(ctx, memberIDs, errs); err != nil {
		return ProjectDTO{}, err
	}

	if err := errs.err(); err != nil {
		return ProjectDTO{}, err
	}

	project := models.Project{
		Name:        name,
		Description: description,
		Color:       color,
		CreatedByID: actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("CreatedBy", "Members", "Tasks").Create(&project).Error; err != nil {
			return err
		}
		return replaceMembers(tx, project.ID, memberIDs)
	})
	if err != nil {
		return ProjectDTO{}, mapDatabaseError(err)
	}

	return s.GetProject(ctx, actor, project.ID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, actor models.User, projectID uint, input UpdateProjectInput) (ProjectDTO, error) {
	project, err := loadVisibleProject(ctx, s.db, actor, projectID)
	if err != nil {
		return ProjectDTO{}, err
	}

	errs := fieldErrors{}
	updates := map[string]interface{}{}

	if input.Name != nil {
		name, msg := normalizeRequiredString(*input.Name, "name", 200)
		if msg != "" {
			errs.add("name", msg)
		}
		updates["name"] = name
	}
	if input.Description != nil {
		description, msg := normalizeOptionalString(*input.Description, "description", 10000)
		if msg != "" {
			errs.add("description", msg)
		}
		updates["description"] = description
	}
	if input.Color != nil {
		color, msg := normalizeColor(*input.Color, models.DefaultProjectColor)
		if msg != "" {
			errs.add("color", msg)
		}
		updates["color"] = color
	}

	var memberIDs []uint
	if input.MemberIDs != nil {
		memberIDs = uniqueIDs(*input.MemberIDs)
		if err := s.validateMembers(ctx, memberIDs, errs); err != nil {
			return ProjectDTO{}, err
		}
	}

	if err := errs.err(); err != nil {
		return ProjectDTO{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates["updated_at"] = s.options.Now().UTC()
		if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return err
		}
		if input.MemberIDs == nil {
			return nil
		}
		return replaceMembers(tx, project.ID, memberIDs)
	})
	if err != nil {
		return ProjectDTO{}, mapDatabaseError(err)
	}

	return s.GetProject(ctx, actor, project.ID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, actor models.User, projectID uint) error {
	project, err := loadVisibleProject(ctx, s.db, actor, projectID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProjects(tx, []uint{project.ID})
	})
}

// validateMembers requires every selected member to be an active account.
func (s *ProjectService) validateMembers(ctx context.Context, memberIDs []uint, errs fieldErrors) error {
	if len(memberIDs) == 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ? AND is_active = ?", memberIDs, true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check members: %w", err)
	}
	if count != int64(len(memberIDs)) {
		errs.add("member_ids", "select valid active members")
	}
	return nil
}

func replaceMembers(tx *gorm.DB, projectID uint, memberIDs []uint) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	if len(memberIDs) == 0 {
		return nil
	}

	rows := make([]models.ProjectMember, 0, len(memberIDs))
	for _, userID := range memberIDs {
		rows = append(rows, models.ProjectMember{ProjectID: projectID, UserID: userID})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("add members: %w", err)
	}
	return nil
}

// deleteProjects removes projects together with their tasks, comments and
// memberships. Callers own the transaction.
func deleteProjects(tx *gorm.DB, projectIDs []uint) error {
	if len(projectIDs) == 0 {
		return nil
	}

	var taskIDs []uint
	if err := tx.Model(&models.Task{}).Where("project_id IN ?", projectIDs).Pluck("id", &taskIDs).Error; err != nil {
		return fmt.Errorf("load project tasks: %w", err)
	}
	if err := deleteTasks(tx, taskIDs); err != nil {
		return err
	}
	if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectMember{}).Error; err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	return nil
}

// loadActiveUsers lists accounts that can be picked as members or assignees.
func loadActiveUsers(ctx context.Context, db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.WithContext(ctx).
		Preload("Profile").
		Where("is_active = ?", true).
		Order("first_name ASC, last_name ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load active users: %w", err)
	}
	return users, nil
}
