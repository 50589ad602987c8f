package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus represents the lifecycle state of a service task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks how urgently a task should be handled.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire format of calendar dates such as due_date.
const DateLayout = "2006-01-02"

// Task is a unit of billable work (a sale, repair or install) tied to a client.
type Task struct {
	ID             string
	Title          string
	Description    string
	Category       string
	Priority       TaskPriority
	Status         TaskStatus
	ClientName     string
	ClientPhone    string
	ClientEmail    string
	Equipment      string
	EquipmentModel string
	RequiredParts  string
	Budget         *decimal.Decimal
	TechnicianID   string
	// DueDate is a calendar date stored as midnight UTC.
	DueDate     *time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// IsOverdue reports whether the due date lies strictly before today's date
// and the task is not completed. today is truncated to its UTC calendar day.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(DateOf(today))
}

// DateOf truncates ts to midnight UTC of its calendar day.
func DateOf(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TaskStats summarises task counts for the dashboard.
type TaskStats struct {
	Total      int64
	Pending    int64
	InProgress int64
	Completed  int64
	Overdue    int64
}
