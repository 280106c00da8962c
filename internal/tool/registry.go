package tool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evolution-todo/chat-platform/internal/task"
)

// ErrUnknownTool is returned when the model requests a tool that is not in
// the catalogue.
var ErrUnknownTool = errors.New("unknown tool")

// ExecutionError wraps a failure from the task store during tool execution.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Registry dispatches tool calls onto the task store. It performs no argument
// validation of its own; sanitization happens before Execute by construction.
type Registry struct {
	tasks task.Store
}

// NewRegistry creates a registry over the given task store.
func NewRegistry(tasks task.Store) *Registry {
	return &Registry{tasks: tasks}
}

// Contracts returns the static catalogue of tools this registry can execute.
func (r *Registry) Contracts() []Contract {
	return Contracts()
}

// Execute runs one tool call and returns a short human-readable status
// string, used directly as conversational content.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	userID, _ := args["user_id"].(string)

	var (
		result string
		err    error
	)

	switch name {
	case NameAddTask:
		result, err = r.addTask(ctx, userID, args)
	case NameListTasks:
		result, err = r.listTasks(ctx, userID, args)
	case NameCompleteTask:
		result, err = r.completeTask(ctx, userID, args)
	case NameDeleteTask:
		result, err = r.deleteTask(ctx, userID, args)
	case NameUpdateTask:
		result, err = r.updateTask(ctx, userID, args)
	case NameSearchTasks:
		result, err = r.searchTasks(ctx, userID, args)
	case NameSetPriority:
		result, err = r.setPriority(ctx, userID, args)
	case NameAddTags:
		result, err = r.addTags(ctx, userID, args)
	case NameScheduleReminder:
		result, err = r.scheduleReminder(ctx, userID, args)
	case NameGetRecurringTasks:
		result, err = r.getRecurringTasks(ctx, userID, args)
	case NameAnalyticsSummary:
		result, err = r.analyticsSummary(ctx, userID)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err != nil {
		return "", &ExecutionError{Tool: name, Err: err}
	}
	return result, nil
}

func (r *Registry) addTask(ctx context.Context, userID string, args map[string]any) (string, error) {
	t := &task.Task{
		UserID:      userID,
		Title:       argString(args, "title"),
		Description: argString(args, "description"),
		Priority:    argString(args, "priority"),
		Tags:        cleanTags(args["tags"]),
	}
	if due, ok := argTime(args, "due_date"); ok {
		t.DueDate = &due
	}
	if pattern := argString(args, "recurrence_pattern"); pattern != "" {
		t.RecurrencePattern = pattern
	}

	created, err := r.tasks.Create(ctx, t)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task created: %q (ID: %d)", created.Title, created.ID)
	if created.DueDate != nil {
		fmt.Fprintf(&b, "\nDue: %s", created.DueDate.Format(time.RFC3339))
	}
	if created.Priority != "" && created.Priority != task.PriorityNone {
		fmt.Fprintf(&b, "\nPriority: %s", created.Priority)
	}
	if len(created.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(created.Tags, ", "))
	}
	if created.RecurrencePattern != "" {
		fmt.Fprintf(&b, "\nRecurring: %s", created.RecurrencePattern)
	}
	return b.String(), nil
}

func (r *Registry) listTasks(ctx context.Context, userID string, args map[string]any) (string, error) {
	tasks, err := r.tasks.List(ctx, userID, task.Filter{
		Status:   argString(args, "status"),
		Priority: argString(args, "priority"),
		Search:   argString(args, "search"),
	})
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No tasks found", nil
	}
	return formatTaskList(fmt.Sprintf("Found %d task(s):", len(tasks)), tasks), nil
}

func (r *Registry) completeTask(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}
	t, err := r.tasks.ToggleComplete(ctx, userID, id)
	if err != nil {
		return "", err
	}
	status := "uncompleted"
	if t.Completed {
		status = "completed"
	}
	return fmt.Sprintf("Task %q marked as %s", t.Title, status), nil
}

func (r *Registry) deleteTask(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}
	if err := r.tasks.Delete(ctx, userID, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %d deleted successfully", id), nil
}

func (r *Registry) updateTask(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}

	var u task.Update
	if title := argString(args, "title"); title != "" {
		u.Title = &title
	}
	if desc := argString(args, "description"); desc != "" {
		u.Description = &desc
	}
	if priority := argString(args, "priority"); priority != "" {
		u.Priority = &priority
	}
	if due, ok := argTime(args, "due_date"); ok {
		u.DueDate = &due
	}
	if _, ok := args["tags"]; ok {
		u.Tags = cleanTags(args["tags"])
	}

	t, err := r.tasks.Update(ctx, userID, id, u)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %q updated successfully", t.Title), nil
}

func (r *Registry) searchTasks(ctx context.Context, userID string, args map[string]any) (string, error) {
	query := argString(args, "query")
	tasks, err := r.tasks.List(ctx, userID, task.Filter{
		Search:   query,
		Priority: argString(args, "priority"),
	})
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return fmt.Sprintf("No tasks found matching %q", query), nil
	}
	return formatTaskList(fmt.Sprintf("Found %d task(s) matching %q:", len(tasks), query), tasks), nil
}

func (r *Registry) setPriority(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}
	priority := argString(args, "priority")
	t, err := r.tasks.Update(ctx, userID, id, task.Update{Priority: &priority})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %q priority set to %s", t.Title, priority), nil
}

func (r *Registry) addTags(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}
	tags := cleanTags(args["tags"])
	t, err := r.tasks.AddTags(ctx, userID, id, tags)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Tags added to %q: %s", t.Title, strings.Join(tags, ", ")), nil
}

func (r *Registry) scheduleReminder(ctx context.Context, userID string, args map[string]any) (string, error) {
	id, ok := argInt64(args, "task_id")
	if !ok {
		return "", errors.New("task_id must be an integer")
	}
	when, ok := argTime(args, "reminder_time")
	if !ok {
		return "", errors.New("reminder_time must be an ISO 8601 timestamp")
	}
	if _, err := r.tasks.Update(ctx, userID, id, task.Update{ReminderTime: &when}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Reminder scheduled for %s", when.Format(time.RFC3339)), nil
}

func (r *Registry) getRecurringTasks(ctx context.Context, userID string, args map[string]any) (string, error) {
	tasks, err := r.tasks.List(ctx, userID, task.Filter{
		RecurringOnly: true,
		Pattern:       argString(args, "pattern"),
	})
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No recurring tasks found", nil
	}
	return formatTaskList(fmt.Sprintf("Found %d recurring task(s):", len(tasks)), tasks), nil
}

func (r *Registry) analyticsSummary(ctx context.Context, userID string) (string, error) {
	stats, err := r.tasks.Stats(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Task summary: %d total, %d completed, %d pending, %d high priority, %d recurring, %d overdue",
		stats.Total, stats.Completed, stats.Pending, stats.HighPrio, stats.Recurring, stats.Overdue,
	), nil
}

func formatTaskList(header string, tasks []*task.Task) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, t := range tasks {
		marker := "[ ]"
		if t.Completed {
			marker = "[x]"
		}
		fmt.Fprintf(&b, "\n%s [%d] %s", marker, t.ID, t.Title)
		if t.Priority != "" && t.Priority != task.PriorityNone {
			fmt.Fprintf(&b, " (%s)", t.Priority)
		}
		if t.DueDate != nil {
			fmt.Fprintf(&b, " due %s", t.DueDate.Format("2006-01-02"))
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(&b, " #%s", strings.Join(t.Tags, " #"))
		}
	}
	return b.String()
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// argInt64 accepts the numeric shapes JSON decoding produces for model
// output: float64, integer types and numeric strings.
func argInt64(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func argTime(args map[string]any, key string) (time.Time, bool) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
