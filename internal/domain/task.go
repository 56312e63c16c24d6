package domain

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is the domain entity for a single task. It belongs to exactly one
// user and is only visible to that user.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a task listing by due date. Zero value means no filtering.
// Conditions are combined (ANDed) when more than one is set; a task with a
// null due date never matches any of them.
type Filter struct {
	Overdue bool
	Today   bool
	// UpcomingDays, when non-nil, selects tasks due after today and within
	// the next N days inclusive.
	UpcomingDays *int
}

// IsZero reports whether no filter condition is set.
func (f Filter) IsZero() bool {
	return !f.Overdue && !f.Today && f.UpcomingDays == nil
}

// Progress is the per-user completion aggregate.
type Progress struct {
	Total      int
	Completed  int
	Pending    int
	Percentage int
}

// Draft is an unpersisted task shape produced by free-text parsing. It is
// never written to the store; the user confirms it into a real task.
type Draft struct {
	Title       string
	Description string
	DueDate     *time.Time
	Confidence  float64
}
