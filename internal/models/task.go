package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses is the fixed column order of a board.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return string(p)
}

type Task struct {
	ID          uint     `gorm:"primaryKey"`
	ProjectID   uint     `gorm:"not null;index"`
	Project     Project  `gorm:"foreignKey:ProjectID;references:ID"`
	Title       string   `gorm:"type:varchar(300);not null"`
	Description string   `gorm:"type:text;not null;default:''"`
	Status      Status   `gorm:"type:varchar(20);not null;default:'todo';index;check:chk_tasks_status,status IN ('todo','in_progress','review','done')"`
	Priority    Priority `gorm:"type:varchar(10);not null;default:'medium';check:chk_tasks_priority,priority IN ('low','medium','high','urgent')"`
	AssigneeID  *uint    `gorm:"index"`
	Assignee    *User    `gorm:"foreignKey:AssigneeID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedByID uint     `gorm:"not null;index"`
	CreatedBy   User     `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:CASCADE"`
	DueDate     *datatypes.Date
	Tags        string        `gorm:"type:varchar(500);not null;default:''"`
	Comments    []TaskComment `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"not null;index"`
	UpdatedAt   time.Time     `gorm:"not null"`
}

func (t Task) TagList() []string {
	if t.Tags == "" {
		return []string{}
	}
	tags := make([]string, 0)
	for _, tag := range strings.Split(t.Tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// DueOn returns the due date as midnight UTC, the form every date comparison uses.
func (t Task) DueOn() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	y, m, d := time.Time(*t.DueDate).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

type TaskComment struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uint      `gorm:"not null;index"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
