package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DueDate parses due_date from JSON as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC. A null or empty value means
// no due date.
type DueDate struct{ t *time.Time }

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",     // date only
		time.RFC3339,     // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano, // with nanoseconds
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			// If it was date-only (no time component), use start of day UTC
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("due_date: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	DueDate     DueDate `json:"due_date"` // optional: "2026-02-19" or RFC3339
}

// DueDatePatch distinguishes an absent due_date field from an explicit null.
// Set is false only when the field never appeared in the JSON body; a JSON
// null or empty string marks Set with a nil value, which clears the date.
// The field must be a value type: encoding/json short-circuits JSON null on
// pointer fields without calling UnmarshalJSON.
type DueDatePatch struct {
	Set bool
	val *time.Time
}

func (d *DueDatePatch) UnmarshalJSON(data []byte) error {
	d.Set = true
	var dd DueDate
	if err := dd.UnmarshalJSON(data); err != nil {
		return err
	}
	d.val = dd.t
	return nil
}

// Ptr returns the parsed time, nil when clearing.
func (d DueDatePatch) Ptr() *time.Time { return d.val }

type UpdateTaskRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=200"`
	Description *string      `json:"description" binding:"omitempty,max=2000"`
	Status      *string      `json:"status"`
	DueDate     DueDatePatch `json:"due_date"` // absent = keep, null/empty = clear, value = set
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

type ProgressResponse struct {
	TotalTasks           int `json:"total_tasks"`
	CompletedTasks       int `json:"completed_tasks"`
	Pending              int `json:"pending"`
	CompletionPercentage int `json:"completion_percentage"`
}
