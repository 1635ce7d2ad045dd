package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/access"
	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/markup"
	"github.com/HappyHacker143/taskflow/internal/models"
)

type TaskService struct {
	db       *gorm.DB
	options  Options
	renderer *markup.Renderer
}

func NewTaskService(db *gorm.DB, options Options, renderer *markup.Renderer) *TaskService {
	if renderer == nil {
		renderer = markup.NewRenderer()
	}
	return &TaskService{db: db, options: options.withDefaults(), renderer: renderer}
}

// tasksQuery preloads what a TaskDTO shows.
func tasksQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Model(&models.Task{}).
		Preload("Project").
		Preload("Assignee.Profile").
		Preload("CreatedBy.Profile")
}

// applyTaskFilter narrows a task query by status and a search term over the
// given columns. It returns the normalized status.
func applyTaskFilter(query *gorm.DB, filter TaskFilter, searchColumns ...string) (*gorm.DB, string, error) {
	status := strings.TrimSpace(filter.Status)
	if status != "" {
		if !models.Status(status).Valid() {
			return nil, "", apperror.Validation(map[string]string{
				"status": "status must be one of: todo, in_progress, review, done",
			})
		}
		query = query.Where("tasks.status = ?", status)
	}
	return searchAny(query, filter.Search, searchColumns...), status, nil
}

func loadVisibleTask(ctx context.Context, db *gorm.DB, actor models.User, taskID uint) (models.Task, error) {
	var task models.Task
	err := tasksQuery(ctx, db).
		Scopes(access.VisibleTasks(actor)).
		First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, notFound("task")
		}
		return models.Task{}, fmt.Errorf("load task: %w", err)
	}
	return task, nil
}

func (s *TaskService) NewTaskForm(ctx context.Context, actor models.User, projectID *uint) (TaskForm, error) {
	form, err := s.taskFormOptions(ctx, actor)
	if err != nil {
		return TaskForm{}, err
	}

	if projectID != nil {
		if _, err := loadVisibleProject(ctx, s.db, actor, *projectID); err != nil {
			return TaskForm{}, err
		}
	}

	form.Initial = TaskFormValues{
		ProjectID: projectID,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
	}
	return form, nil
}

func (s *TaskService) GetTaskForm(ctx context.Context, actor models.User, taskID uint) (TaskForm, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return TaskForm{}, err
	}

	form, err := s.taskFormOptions(ctx, actor)
	if err != nil {
		return TaskForm{}, err
	}

	dto := taskToDTO(task, s.options.today())
	projectID := task.ProjectID
	form.Task = &dto
	form.Initial = TaskFormValues{
		ProjectID:   &projectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssigneeID:  task.AssigneeID,
		DueDate:     formatDate(task),
		Tags:        task.Tags,
	}
	return form, nil
}

func (s *TaskService) taskFormOptions(ctx context.Context, actor models.User) (TaskForm, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Scopes(access.VisibleProjects(actor)).
		Order("projects.created_at DESC, projects.id DESC").
		Find(&projects).Error; err != nil {
		return TaskForm{}, fmt.Errorf("load projects: %w", err)
	}

	users, err := loadActiveUsers(ctx, s.db)
	if err != nil {
		return TaskForm{}, err
	}

	projectOptions := make([]ProjectOption, 0, len(projects))
	for _, project := range projects {
		projectOptions = append(projectOptions, ProjectOption{ID: project.ID, Name: project.Name})
	}

	assignees := make([]MemberOption, 0, len(users))
	for _, user := range users {
		assignees = append(assignees, MemberOption{ID: user.ID, Label: assigneeLabel(user)})
	}

	return TaskForm{
		Projects:   projectOptions,
		Assignees:  assignees,
		Statuses:   statusChoices(),
		Priorities: priorityChoices(),
	}, nil
}

func assigneeLabel(user models.User) string {
	position := user.Profile.Position
	if position == "" {
		position = models.RoleEmployee.Label()
	}
	return user.FullName() + " - " + position
}

func (s *TaskService) CreateTask(ctx context.Context, actor models.User, input CreateTaskInput) (TaskDTO, error) {
	errs := fieldErrors{}

	title, msg := normalizeRequiredString(input.Title, "title", 300)
	if msg != "" {
		errs.add("title", msg)
	}
	description, msg := normalizeOptionalString(input.Description, "description", 10000)
	if msg != "" {
		errs.add("description", msg)
	}
	tags, msg := normalizeOptionalString(input.Tags, "tags", 500)
	if msg != "" {
		errs.add("tags", msg)
	}

	status, msg := parseStatus(input.Status)
	if msg != "" {
		errs.add("status", msg)
	}
	priority, msg := parsePriority(input.Priority)
	if msg != "" {
		errs.add("priority", msg)
	}

	if input.ProjectID == 0 {
		errs.add("project_id", "project_id is required")
	} else if err := s.checkProject(ctx, actor, input.ProjectID, errs); err != nil {
		return TaskDTO{}, err
	}
	if err := s.checkAssignee(ctx, input.AssigneeID, errs); err != nil {
		return TaskDTO{}, err
	}

	if err := errs.err(); err != nil {
		return TaskDTO{}, err
	}

	task := models.Task{
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		CreatedByID: actor.ID,
		DueDate:     toDate(input.DueDate),
		Tags:        tags,
	}
	if err := s.db.WithContext(ctx).Omit("Project", "Assignee", "CreatedBy", "Comments").Create(&task).Error; err != nil {
		return TaskDTO{}, mapDatabaseError(err)
	}

	return s.loadTaskDTO(ctx, actor, task.ID)
}

func (s *TaskService) GetTask(ctx context.Context, actor models.User, taskID uint) (TaskDetail, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return TaskDetail{}, err
	}

	var comments []models.TaskComment
	if err := s.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("task_id = ?", task.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return TaskDetail{}, fmt.Errorf("load comments: %w", err)
	}

	descriptionHTML, err := s.renderer.Render(task.Description)
	if err != nil {
		return TaskDetail{}, err
	}

	commentDTOs := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		dto, err := s.commentToDTO(comment)
		if err != nil {
			return TaskDetail{}, err
		}
		commentDTOs = append(commentDTOs, dto)
	}

	return TaskDetail{
		Task:            taskToDTO(task, s.options.today()),
		DescriptionHTML: descriptionHTML,
		Comments:        commentDTOs,
	}, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, actor models.User, taskID uint, input UpdateTaskInput) (TaskDTO, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return TaskDTO{}, err
	}

	errs := fieldErrors{}
	updates := map[string]interface{}{}

	if input.Title != nil {
		title, msg := normalizeRequiredString(*input.Title, "title", 300)
		if msg != "" {
			errs.add("title", msg)
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description, msg := normalizeOptionalString(*input.Description, "description", 10000)
		if msg != "" {
			errs.add("description", msg)
		}
		updates["description"] = description
	}
	if input.Tags != nil {
		tags, msg := normalizeOptionalString(*input.Tags, "tags", 500)
		if msg != "" {
			errs.add("tags", msg)
		}
		updates["tags"] = tags
	}
	if input.Status != nil {
		status, msg := parseStatus(*input.Status)
		if msg != "" {
			errs.add("status", msg)
		}
		updates["status"] = status
	}
	if input.Priority != nil {
		priority, msg := parsePriority(*input.Priority)
		if msg != "" {
			errs.add("priority", msg)
		}
		updates["priority"] = priority
	}
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		if err := s.checkProject(ctx, actor, *input.ProjectID, errs); err != nil {
			return TaskDTO{}, err
		}
		updates["project_id"] = *input.ProjectID
	}
	if input.AssigneeSet && !equalUintPtr(input.AssigneeID, task.AssigneeID) {
		if err := s.checkAssignee(ctx, input.AssigneeID, errs); err != nil {
			return TaskDTO{}, err
		}
		updates["assignee_id"] = input.AssigneeID
	}
	if input.DueDateSet {
		updates["due_date"] = toDate(input.DueDate)
	}

	if err := errs.err(); err != nil {
		return TaskDTO{}, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return TaskDTO{}, mapDatabaseError(err)
		}
	}

	return s.loadTaskDTO(ctx, actor, task.ID)
}

// DeleteTask removes the task and its comments and returns the project the
// task belonged to.
func (s *TaskService) DeleteTask(ctx context.Context, actor models.User, taskID uint) (uint, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTasks(tx, []uint{task.ID})
	})
	if err != nil {
		return 0, err
	}
	return task.ProjectID, nil
}

// UpdateTaskStatus moves a task to another board column. An unknown status
// leaves the stored one unchanged.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor models.User, taskID uint, status string) (TaskDTO, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return TaskDTO{}, err
	}

	next := models.Status(strings.TrimSpace(status))
	if !next.Valid() {
		return TaskDTO{}, apperror.Validation(map[string]string{
			"status": "status must be one of: todo, in_progress, review, done",
		})
	}

	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Update("status", next).Error; err != nil {
		return TaskDTO{}, fmt.Errorf("update task status: %w", err)
	}

	return s.loadTaskDTO(ctx, actor, task.ID)
}

func (s *TaskService) AddComment(ctx context.Context, actor models.User, taskID uint, input CommentInput) (CommentDTO, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return CommentDTO{}, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return CommentDTO{}, apperror.Validation(map[string]string{"text": "text is required"})
	}

	comment := models.TaskComment{
		TaskID:   task.ID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := s.db.WithContext(ctx).Omit("Author").Create(&comment).Error; err != nil {
		return CommentDTO{}, mapDatabaseError(err)
	}

	if err := s.db.WithContext(ctx).Preload("Author.Profile").First(&comment, comment.ID).Error; err != nil {
		return CommentDTO{}, fmt.Errorf("reload comment: %w", err)
	}
	return s.commentToDTO(comment)
}

// ListMyTasks lists tasks assigned to actor, newest first.
func (s *TaskService) ListMyTasks(ctx context.Context, actor models.User, filter TaskFilter) (TaskList, error) {
	query := tasksQuery(ctx, s.db).
		Scopes(access.VisibleTasks(actor)).
		Where("tasks.assignee_id = ?", actor.ID)
	query, status, err := applyTaskFilter(query, filter, "tasks.title", "tasks.description")
	if err != nil {
		return TaskList{}, err
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at DESC, tasks.id DESC").Find(&tasks).Error; err != nil {
		return TaskList{}, fmt.Errorf("list my tasks: %w", err)
	}

	return TaskList{
		Tasks:        tasksToDTO(tasks, s.options.today()),
		StatusFilter: status,
		Search:       strings.TrimSpace(filter.Search),
	}, nil
}

func (s *TaskService) loadTaskDTO(ctx context.Context, actor models.User, taskID uint) (TaskDTO, error) {
	task, err := loadVisibleTask(ctx, s.db, actor, taskID)
	if err != nil {
		return TaskDTO{}, err
	}
	return taskToDTO(task, s.options.today()), nil
}

func (s *TaskService) commentToDTO(comment models.TaskComment) (CommentDTO, error) {
	html, err := s.renderer.Render(comment.Text)
	if err != nil {
		return CommentDTO{}, err
	}
	return CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Author:    userToRef(comment.Author),
		Text:      comment.Text,
		TextHTML:  html,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *TaskService) checkProject(ctx context.Context, actor models.User, projectID uint, errs fieldErrors) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(access.VisibleProjects(actor)).
		Where("projects.id = ?", projectID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if count == 0 {
		errs.add("project_id", "select a valid project")
	}
	return nil
}

func (s *TaskService) checkAssignee(ctx context.Context, assigneeID *uint, errs fieldErrors) error {
	if assigneeID == nil {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ?", *assigneeID, true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check assignee: %w", err)
	}
	if count == 0 {
		errs.add("assignee_id", "select a valid assignee")
	}
	return nil
}

// deleteTasks removes tasks and their comments. Callers own the transaction.
func deleteTasks(tx *gorm.DB, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

func parseStatus(raw string) (models.Status, string) {
	status := models.Status(strings.TrimSpace(raw))
	if status == "" {
		return models.StatusTodo, ""
	}
	if !status.Valid() {
		return "", "status must be one of: todo, in_progress, review, done"
	}
	return status, ""
}

func parsePriority(raw string) (models.Priority, string) {
	priority := models.Priority(strings.TrimSpace(raw))
	if priority == "" {
		return models.PriorityMedium, ""
	}
	if !priority.Valid() {
		return "", "priority must be one of: low, medium, high, urgent"
	}
	return priority, ""
}

func toDate(value *time.Time) *datatypes.Date {
	if value == nil {
		return nil
	}
	y, m, d := value.Date()
	date := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &date
}
