// Package task provides the task store the tool registry executes against.
package task

import (
	"errors"
	"time"
)

// Priority levels a task can carry.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityNone   = "none"
)

// Recurrence patterns a task can carry.
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// ErrNotFound is returned when a task does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("task not found")

// Task is one todo item owned by a user.
type Task struct {
	ID                int64      `json:"id"`
	UserID            string     `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Completed         bool       `json:"completed"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	RecurrencePattern string     `json:"recurrence_pattern,omitempty"`
	ReminderTime      *time.Time `json:"reminder_time,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	Status        string // "", "all", "pending", "completed"
	Priority      string
	Search        string
	RecurringOnly bool
	Pattern       string
}

// Update describes a partial update. Nil fields are left untouched.
type Update struct {
	Title             *string
	Description       *string
	Priority          *string
	DueDate           *time.Time
	Tags              []string
	RecurrencePattern *string
	ReminderTime      *time.Time
}

// Stats summarizes a user's tasks.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	HighPrio  int `json:"high_priority"`
	Recurring int `json:"recurring"`
	Overdue   int `json:"overdue"`
}
