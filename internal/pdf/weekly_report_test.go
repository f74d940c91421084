package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/reporting"
)

func TestWeeklyReportGenerator_WritesPDF(t *testing.T) {
	ref := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	done := ref.Add(time.Hour)
	report := reporting.Weekly{
		Week:  "2024-W12",
		Start: time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 23, 23, 59, 59, 0, time.UTC),
		Tasks: []reporting.WeeklyTask{
			{ID: 1, Title: "Write docs", Status: models.TaskStatusCompleted, CompletionDate: &done, Progress: 100},
			{ID: 2, Title: strings.Repeat("Long title ", 10), Status: models.TaskStatusPending, Progress: 0},
		},
	}

	var buf bytes.Buffer
	err := NewWeeklyReportGenerator().WeeklyReport(&buf, WeeklyReportData{
		UserName: "Zoë",
		Username: "zoe",
		Report:   report,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWeeklyReportGenerator_EmptyWeek(t *testing.T) {
	var buf bytes.Buffer
	err := NewWeeklyReportGenerator().WeeklyReport(&buf, WeeklyReportData{
		UserName: "Alice",
		Username: "alice",
		Report:   reporting.Weekly{Week: "2024-W01"},
	})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
