package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
)

func TestWeekWindow(t *testing.T) {
	ref := time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)

	start, end := WeekWindow(ref)

	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 23, 23, 59, 59, 999999999, time.UTC), end)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, time.Saturday, end.Weekday())
}

func TestWeekWindow_SundayStartsItsOwnWeek(t *testing.T) {
	ref := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)

	start, _ := WeekWindow(ref)

	assert.Equal(t, ref, start)
}

func TestWeekWindow_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	ref := time.Date(2024, 3, 20, 1, 0, 0, 0, loc)

	start, _ := WeekWindow(ref)

	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, loc), start)
}

func TestISOWeekLabel(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "2024-W12"},
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ISOWeekLabel(tc.date), tc.date.String())
	}
}

func TestWeeklyReport(t *testing.T) {
	ref := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	finishedAt := time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC)

	inWeekOpen := models.Task{
		ID:        1,
		Title:     "write report",
		Status:    models.TaskStatusInProgress,
		Progress:  40,
		CreatedAt: time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
	}
	inWeekDone := models.Task{
		ID:        2,
		Title:     "ship it",
		Status:    models.TaskStatusCompleted,
		Progress:  70,
		CreatedAt: time.Date(2024, 3, 23, 23, 59, 59, 0, time.UTC),
		UpdatedAt: finishedAt,
	}
	before := models.Task{ID: 3, Title: "old", CreatedAt: time.Date(2024, 3, 16, 23, 59, 59, 0, time.UTC)}
	after := models.Task{ID: 4, Title: "new", CreatedAt: time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)}

	report := WeeklyReport([]models.Task{inWeekOpen, before, inWeekDone, after}, ref)

	assert.Equal(t, "2024-W12", report.Week)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), report.Start)
	require.Len(t, report.Tasks, 2)

	assert.Equal(t, "write report", report.Tasks[0].Title)
	assert.Nil(t, report.Tasks[0].CompletionDate)
	assert.Equal(t, 40, report.Tasks[0].Progress)

	assert.Equal(t, "ship it", report.Tasks[1].Title)
	require.NotNil(t, report.Tasks[1].CompletionDate)
	assert.Equal(t, finishedAt, *report.Tasks[1].CompletionDate)
	assert.Equal(t, 100, report.Tasks[1].Progress)
}

func TestWeeklyReport_NoTasks(t *testing.T) {
	report := WeeklyReport(nil, time.Now())
	assert.NotNil(t, report.Tasks)
	assert.Empty(t, report.Tasks)
}
