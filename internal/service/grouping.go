package service

import (
	"sort"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// Category is a dashboard bucket.
type Category string

const (
	CategoryUpcoming  Category = "upcoming"
	CategoryCompleted Category = "completed"
	CategorySucceeded Category = "succeeded"
	CategoryFailed    Category = "failed"
)

// CategoryInfo describes a bucket for display.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Title string   `json:"title"`
}

// Categories lists the buckets in dashboard order.
var Categories = []CategoryInfo{
	{ID: CategoryUpcoming, Title: "Upcoming Interviews"},
	{ID: CategoryCompleted, Title: "Completed"},
	{ID: CategorySucceeded, Title: "Passed"},
	{ID: CategoryFailed, Title: "Failed"},
}

// Categorize returns the single bucket iv belongs to.  Persisted outcomes
// win first, then a persisted completed status; anything left is
// upcoming unless its live window has elapsed.
func Categorize(iv model.Interview, now time.Time, window time.Duration) Category {
	switch iv.Status {
	case model.StatusSucceeded:
		return CategorySucceeded
	case model.StatusFailed:
		return CategoryFailed
	case model.StatusCompleted:
		return CategoryCompleted
	}
	if DeriveDisplayState(iv, now, window) == model.DisplayCompleted {
		return CategoryCompleted
	}
	return CategoryUpcoming
}

// GroupInterviews partitions ivs into buckets.  Each interview lands in
// exactly one bucket, ordered by start time with ties kept in input
// order.  Empty buckets are absent from the result.
func GroupInterviews(ivs []model.Interview, now time.Time, window time.Duration) map[Category][]model.Interview {
	out := make(map[Category][]model.Interview)
	for _, iv := range ivs {
		c := Categorize(iv, now, window)
		out[c] = append(out[c], iv)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool { return list[i].StartTime < list[j].StartTime })
	}
	return out
}
