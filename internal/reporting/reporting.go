// Package reporting turns task rows into the numbers shown on the dashboard.
// Every function is pure: callers load the rows and pass the clock in.
package reporting

import (
	"math"
	"sort"
	"time"

	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/models"
)

// Completion is the completion rate of a task set. Rate is a percentage rounded to two decimals.
type Completion struct {
	Total     int
	Completed int
	Rate      float64
}

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Category  string
	TaskCount int
}

// GroupCompletion is the completion rate of the tasks of one team or project.
type GroupCompletion struct {
	ID   uint64
	Name string
	Completion
}

// MergeTaskUniverse deduplicates tasks by ID. The last occurrence of a task wins,
// the position of its first occurrence is kept.
func MergeTaskUniverse(sources ...[]models.Task) []models.Task {
	positions := make(map[uint64]int)
	merged := make([]models.Task, 0)

	for _, source := range sources {
		for _, task := range source {
			if pos, seen := positions[task.ID]; seen {
				merged[pos] = task
				continue
			}
			positions[task.ID] = len(merged)
			merged = append(merged, task)
		}
	}

	return merged
}

// CompletionRate counts completed tasks. An empty set has rate 0.
func CompletionRate(tasks []models.Task) Completion {
	result := Completion{Total: len(tasks)}
	for _, task := range tasks {
		if task.IsCompleted() {
			result.Completed++
		}
	}

	if result.Total == 0 {
		return result
	}

	result.Rate = round2(float64(result.Completed) / float64(result.Total) * 100)
	return result
}

// Overdue returns the tasks due before now that are not completed.
func Overdue(tasks []models.Task, now time.Time) []models.Task {
	overdue := make([]models.Task, 0)
	for _, task := range tasks {
		if isOverdue(task, now) {
			overdue = append(overdue, task)
		}
	}
	return overdue
}

// CountOverdue is len(Overdue(tasks, now)) without the allocation.
func CountOverdue(tasks []models.Task, now time.Time) int {
	count := 0
	for _, task := range tasks {
		if isOverdue(task, now) {
			count++
		}
	}
	return count
}

func isOverdue(task models.Task, now time.Time) bool {
	return task.DueDate.Before(now) && !task.IsCompleted()
}

// CategoryHistogram groups tasks by category, largest group first. Tasks with an
// empty category are counted as Uncategorized.
// Groups with equal counts keep the order in which they were first seen.
func CategoryHistogram(tasks []models.Task) []CategoryCount {
	index := make(map[string]int)
	histogram := make([]CategoryCount, 0)

	for _, task := range tasks {
		category := task.Category
		if category == "" {
			category = constants.UncategorizedLabel
		}

		if i, ok := index[category]; ok {
			histogram[i].TaskCount++
			continue
		}
		index[category] = len(histogram)
		histogram = append(histogram, CategoryCount{Category: category, TaskCount: 1})
	}

	sort.SliceStable(histogram, func(i, j int) bool {
		return histogram[i].TaskCount > histogram[j].TaskCount
	})

	return histogram
}

// TeamProductivity computes a completion rate per team over its preloaded Tasks.
func TeamProductivity(teams []models.Team) []GroupCompletion {
	result := make([]GroupCompletion, len(teams))
	for i, team := range teams {
		result[i] = GroupCompletion{
			ID:         team.ID,
			Name:       team.Name,
			Completion: CompletionRate(team.Tasks),
		}
	}
	return result
}

// ProjectCompletion computes a completion rate per project over its preloaded Tasks.
func ProjectCompletion(projects []models.Project) []GroupCompletion {
	result := make([]GroupCompletion, len(projects))
	for i, project := range projects {
		result[i] = GroupCompletion{
			ID:         project.ID,
			Name:       project.Name,
			Completion: CompletionRate(project.Tasks),
		}
	}
	return result
}

// ActiveProjects counts projects that still have at least one open task.
func ActiveProjects(projects []models.Project) int {
	active := 0
	for _, project := range projects {
		for _, task := range project.Tasks {
			if !task.IsCompleted() {
				active++
				break
			}
		}
	}
	return active
}

// Snapshot builds the denormalized statistics row for a user.
func Snapshot(userID uint64, universe []models.Task, projects []models.Project, now time.Time) models.DashboardStats {
	completion := CompletionRate(universe)
	return models.DashboardStats{
		UserID:         userID,
		TotalTasks:     completion.Total,
		CompletedTasks: completion.Completed,
		OverdueTasks:   CountOverdue(universe, now),
		CompletionRate: completion.Rate,
		ActiveProjects: ActiveProjects(projects),
		UpdatedAt:      now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
