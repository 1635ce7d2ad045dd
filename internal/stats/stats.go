package stats

import (
	"math"
	"sort"
	"time"

	"github.com/HappyHacker143/taskflow/internal/models"
)

type DashboardStats struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
}

type Column struct {
	Status models.Status
	Label  string
	Tasks  []models.Task
}

// Today returns the calendar date of now in loc, as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsOverdue(task models.Task, today time.Time) bool {
	if task.Status == models.StatusDone {
		return false
	}
	due, ok := task.DueOn()
	if !ok {
		return false
	}
	return due.Before(today)
}

func Dashboard(tasks []models.Task, today time.Time) DashboardStats {
	result := DashboardStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusDone:
			result.Done++
		case models.StatusInProgress:
			result.InProgress++
		}
		if IsOverdue(task, today) {
			result.Overdue++
		}
	}
	return result
}

// ProgressPercent is completed/total*100 rounded half to even at one decimal,
// 0 for an empty project.
func ProgressPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.RoundToEven(float64(completed)*1000/float64(total)) / 10
}

// GroupKanban splits tasks into the fixed status columns, newest first.
// Every column is present even when empty.
func GroupKanban(tasks []models.Task) []Column {
	columns := make([]Column, len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, status := range models.Statuses {
		columns[i] = Column{Status: status, Label: status.Label(), Tasks: []models.Task{}}
		index[status] = i
	}

	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, task)
	}

	for i := range columns {
		SortNewestFirst(columns[i].Tasks)
	}
	return columns
}

func SortNewestFirst(tasks []models.Task) {
	sort.SliceStable(tasks, func(a, b int) bool {
		if tasks[a].CreatedAt.Equal(tasks[b].CreatedAt) {
			return tasks[a].ID > tasks[b].ID
		}
		return tasks[a].CreatedAt.After(tasks[b].CreatedAt)
	})
}
