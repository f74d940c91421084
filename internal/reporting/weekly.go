package reporting

import (
	"fmt"
	"time"

	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
)

// WeeklyTask is a task as it appears in a weekly report.
type WeeklyTask struct {
	ID             uint64
	Title          string
	Status         models.TaskStatus
	CompletionDate *time.Time
	Progress       int
}

// Weekly is the report for the Sunday-to-Saturday week containing a reference date.
type Weekly struct {
	Week  string
	Start time.Time
	End   time.Time
	Tasks []WeeklyTask
}

// WeekWindow returns the Sunday 00:00 start and the Saturday end-of-day of the week
// containing ref, both in ref's location.
func WeekWindow(ref time.Time) (time.Time, time.Time) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// ISOWeekLabel formats the ISO-8601 week of t as YYYY-Www.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeeklyReport lists the tasks created inside the week containing ref.
func WeeklyReport(tasks []models.Task, ref time.Time) Weekly {
	start, end := WeekWindow(ref)
	report := Weekly{
		Week:  ISOWeekLabel(ref),
		Start: start,
		End:   end,
		Tasks: make([]WeeklyTask, 0),
	}

	for _, task := range tasks {
		if task.CreatedAt.Before(start) || task.CreatedAt.After(end) {
			continue
		}

		item := WeeklyTask{
			ID:       task.ID,
			Title:    task.Title,
			Status:   task.Status,
			Progress: task.Progress,
		}
		if task.IsCompleted() {
			completedAt := task.UpdatedAt
			item.CompletionDate = &completedAt
			item.Progress = constants.MaxProgress
		}
		report.Tasks = append(report.Tasks, item)
	}

	return report
}
