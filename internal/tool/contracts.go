// Package tool defines the static catalogue of actions the model may call,
// the argument sanitizers that run before execution, and the dispatcher that
// executes a call against the task store.
package tool

import (
	"github.com/evolution-todo/chat-platform/internal/task"
)

// Property describes one field of a tool's input schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Format      string    `json:"format,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is a tool's structured input contract.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Contract describes one registered tool. Contracts are read-only at runtime;
// they are the canonical source of what "valid arguments" means.
type Contract struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

// Registered tool names.
const (
	NameAddTask           = "add_task"
	NameListTasks         = "list_tasks"
	NameCompleteTask      = "complete_task"
	NameDeleteTask        = "delete_task"
	NameUpdateTask        = "update_task"
	NameSearchTasks       = "search_tasks"
	NameSetPriority       = "set_priority"
	NameAddTags           = "add_tags"
	NameScheduleReminder  = "schedule_reminder"
	NameGetRecurringTasks = "get_recurring_tasks"
	NameAnalyticsSummary  = "analytics_summary"
)

var userIDProp = Property{Type: "string", Description: "User ID (required)"}

var priorityEnum = []string{task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityNone}

var recurrenceEnum = []string{task.RecurrenceDaily, task.RecurrenceWeekly, task.RecurrenceMonthly}

// contracts is the static tool catalogue. Every required list includes the
// acting user's identity.
var contracts = []Contract{
	{
		Name: NameAddTask,
		Description: "Create a new task. description is auto-generated when missing. " +
			"recurrence_pattern is ONLY for recurring tasks ('daily'|'weekly'|'monthly'); " +
			"omit the field entirely for one-time tasks. Never send null values.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":     userIDProp,
				"title":       {Type: "string", Description: "Task title (required, 1-200 characters)"},
				"description": {Type: "string", Description: "Task description (use title if not provided by user)"},
				"due_date":    {Type: "string", Format: "date-time", Description: "When the task is due (ISO 8601)"},
				"priority":    {Type: "string", Enum: priorityEnum, Description: "Task priority level"},
				"tags":        {Type: "array", Items: &Property{Type: "string"}, Description: "Task tags for categorization"},
				"recurrence_pattern": {
					Type: "string", Enum: recurrenceEnum,
					Description: "Recurring pattern ONLY for repeating tasks; omit for one-time tasks",
				},
			},
			Required: []string{"user_id", "title"},
		},
	},
	{
		Name:        NameListTasks,
		Description: "List all tasks with optional filtering by status and priority",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":  userIDProp,
				"status":   {Type: "string", Enum: []string{"all", "pending", "completed"}, Description: "Filter by completion status"},
				"priority": {Type: "string", Enum: priorityEnum, Description: "Filter by priority level"},
				"search":   {Type: "string", Description: "Search in task titles and descriptions"},
			},
			Required: []string{"user_id"},
		},
	},
	{
		Name:        NameCompleteTask,
		Description: "Mark a task as completed or toggle its completion status",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id": userIDProp,
				"task_id": {Type: "integer", Description: "Task ID to complete"},
			},
			Required: []string{"user_id", "task_id"},
		},
	},
	{
		Name:        NameDeleteTask,
		Description: "Delete a task permanently",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id": userIDProp,
				"task_id": {Type: "integer", Description: "Task ID to delete"},
			},
			Required: []string{"user_id", "task_id"},
		},
	},
	{
		Name:        NameUpdateTask,
		Description: "Update task details (title, description, priority, due date, tags)",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":     userIDProp,
				"task_id":     {Type: "integer", Description: "Task ID to update"},
				"title":       {Type: "string", Description: "New task title"},
				"description": {Type: "string", Description: "New task description"},
				"priority":    {Type: "string", Enum: priorityEnum, Description: "New priority level"},
				"due_date":    {Type: "string", Format: "date-time", Description: "New due date (ISO 8601)"},
				"tags":        {Type: "array", Items: &Property{Type: "string"}, Description: "New tags list"},
			},
			Required: []string{"user_id", "task_id"},
		},
	},
	{
		Name:        NameSearchTasks,
		Description: "Search tasks across titles and descriptions",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":  userIDProp,
				"query":    {Type: "string", Description: "Search query"},
				"priority": {Type: "string", Enum: priorityEnum, Description: "Filter results by priority"},
			},
			Required: []string{"user_id", "query"},
		},
	},
	{
		Name:        NameSetPriority,
		Description: "Change the priority level of a task",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":  userIDProp,
				"task_id":  {Type: "integer", Description: "Task ID"},
				"priority": {Type: "string", Enum: priorityEnum, Description: "New priority level"},
			},
			Required: []string{"user_id", "task_id", "priority"},
		},
	},
	{
		Name:        NameAddTags,
		Description: "Add tags to a task (appends to existing tags)",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id": userIDProp,
				"task_id": {Type: "integer", Description: "Task ID"},
				"tags":    {Type: "array", Items: &Property{Type: "string"}, Description: "Tags to add"},
			},
			Required: []string{"user_id", "task_id", "tags"},
		},
	},
	{
		Name:        NameScheduleReminder,
		Description: "Schedule a reminder notification for a task",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":       userIDProp,
				"task_id":       {Type: "integer", Description: "Task ID"},
				"reminder_time": {Type: "string", Format: "date-time", Description: "When to send the reminder (ISO 8601)"},
			},
			Required: []string{"user_id", "task_id", "reminder_time"},
		},
	},
	{
		Name:        NameGetRecurringTasks,
		Description: "Get all recurring tasks, optionally filtered by pattern",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id": userIDProp,
				"pattern": {Type: "string", Enum: recurrenceEnum, Description: "Filter by recurrence pattern"},
			},
			Required: []string{"user_id"},
		},
	},
	{
		Name:        NameAnalyticsSummary,
		Description: "Get task statistics and analytics summary",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"user_id": userIDProp,
			},
			Required: []string{"user_id"},
		},
	},
}

// Contracts returns the static tool catalogue.
func Contracts() []Contract {
	return contracts
}
