package dto

import (
	"fmt"
	"time"

	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/reporting"
)

// MetricDTO is one tile of the task-completion panel
type MetricDTO struct {
	Title string      `json:"title"`
	Value interface{} `json:"value"`
}

// CategoryCountDTO is one bar of the category chart
type CategoryCountDTO struct {
	Category  string `json:"category"`
	TaskCount int    `json:"taskCount"`
}

// ProjectCompletionDTO is the completion of one project
type ProjectCompletionDTO struct {
	ProjectID      uint64  `json:"projectId"`
	ProjectName    string  `json:"projectName"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// TeamProductivityDTO is the completion of one team
type TeamProductivityDTO struct {
	TeamID         uint64  `json:"teamId"`
	TeamName       string  `json:"teamName"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// WeeklyTaskDTO is one line of the weekly report
type WeeklyTaskDTO struct {
	ID             uint64            `json:"id"`
	Title          string            `json:"title"`
	Status         models.TaskStatus `json:"status"`
	CompletionDate *time.Time        `json:"completionDate"`
	Progress       int               `json:"progress"`
}

// WeeklyReportDTO is the weekly report of a user
type WeeklyReportDTO struct {
	User  uint64          `json:"user"`
	Week  string          `json:"week"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Tasks []WeeklyTaskDTO `json:"tasks"`
}

// StatisticsDTO is the stored dashboard snapshot
type StatisticsDTO struct {
	UserID         uint64    `json:"userId"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
	OverdueTasks   int       `json:"overdueTasks"`
	CompletionRate float64   `json:"completionRate"`
	ActiveProjects int       `json:"activeProjects"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToTaskCompletionDTO renders the three completion tiles
func ToTaskCompletionDTO(c reporting.Completion) []MetricDTO {
	return []MetricDTO{
		{Title: "Total Tasks", Value: c.Total},
		{Title: "Completed Tasks", Value: c.Completed},
		{Title: "Completion Rate", Value: c.Rate},
	}
}

// ToCompletionRateDTO formats the rate as a percentage string such as "66.67%"
func ToCompletionRateDTO(userID uint64, c reporting.Completion) CompletionRateDTO {
	return CompletionRateDTO{
		UserID:         userID,
		TotalTasks:     c.Total,
		CompletedTasks: c.Completed,
		CompletionRate: fmt.Sprintf("%.2f%%", c.Rate),
	}
}

func ToCategoryCountDTOs(counts []reporting.CategoryCount) []CategoryCountDTO {
	result := make([]CategoryCountDTO, len(counts))
	for i, c := range counts {
		result[i] = CategoryCountDTO{Category: c.Category, TaskCount: c.TaskCount}
	}
	return result
}

func ToProjectCompletionDTOs(groups []reporting.GroupCompletion) []ProjectCompletionDTO {
	result := make([]ProjectCompletionDTO, len(groups))
	for i, g := range groups {
		result[i] = ProjectCompletionDTO{
			ProjectID:      g.ID,
			ProjectName:    g.Name,
			TotalTasks:     g.Total,
			CompletedTasks: g.Completed,
			CompletionRate: g.Rate,
		}
	}
	return result
}

func ToTeamProductivityDTOs(groups []reporting.GroupCompletion) []TeamProductivityDTO {
	result := make([]TeamProductivityDTO, len(groups))
	for i, g := range groups {
		result[i] = TeamProductivityDTO{
			TeamID:         g.ID,
			TeamName:       g.Name,
			TotalTasks:     g.Total,
			CompletedTasks: g.Completed,
			CompletionRate: g.Rate,
		}
	}
	return result
}

// ToWeeklyReportDTO converts a computed weekly report for a user
func ToWeeklyReportDTO(userID uint64, report reporting.Weekly) WeeklyReportDTO {
	tasks := make([]WeeklyTaskDTO, len(report.Tasks))
	for i, t := range report.Tasks {
		tasks[i] = WeeklyTaskDTO{
			ID:             t.ID,
			Title:          t.Title,
			Status:         t.Status,
			CompletionDate: t.CompletionDate,
			Progress:       t.Progress,
		}
	}

	return WeeklyReportDTO{
		User:  userID,
		Week:  report.Week,
		Start: report.Start,
		End:   report.End,
		Tasks: tasks,
	}
}

// ToStatisticsDTO converts the stored snapshot
func ToStatisticsDTO(stats models.DashboardStats) StatisticsDTO {
	return StatisticsDTO{
		UserID:         stats.UserID,
		TotalTasks:     stats.TotalTasks,
		CompletedTasks: stats.CompletedTasks,
		OverdueTasks:   stats.OverdueTasks,
		CompletionRate: stats.CompletionRate,
		ActiveProjects: stats.ActiveProjects,
		UpdatedAt:      stats.UpdatedAt,
	}
}
