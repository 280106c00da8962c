package tool

import (
	"errors"
	"strings"
	"time"

	"github.com/evolution-todo/chat-platform/internal/task"
)

// ErrMissingTaskID is returned by SanitizeUpdate when the mandatory target
// identifier is absent.
var ErrMissingTaskID = errors.New("task_id is required for update_task")

var validPriorities = map[string]bool{
	task.PriorityLow:    true,
	task.PriorityMedium: true,
	task.PriorityHigh:   true,
	task.PriorityNone:   true,
}

var validRecurrence = map[string]bool{
	task.RecurrenceDaily:   true,
	task.RecurrenceWeekly:  true,
	task.RecurrenceMonthly: true,
}

// SanitizeCreate repairs add_task arguments before execution. It never fails:
// a failed creation is worse than an imperfect one, so every malformed field
// degrades toward a safe default instead.
func SanitizeCreate(args map[string]any, userMessage string) map[string]any {
	sanitized := make(map[string]any, len(args))
	for k, v := range args {
		sanitized[k] = v
	}

	// description must never be null or empty.
	if isEmpty(sanitized["description"]) {
		title, _ := sanitized["title"].(string)
		sanitized["description"] = generateDescription(title, userMessage)
	}

	// recurrence_pattern: omission, not a "none" sentinel, signals a
	// one-time task. Anything outside the enum is dropped.
	if raw, ok := sanitized["recurrence_pattern"]; ok {
		value, isString := raw.(string)
		if !isString || !validRecurrence[value] {
			delete(sanitized, "recurrence_pattern")
		}
	}

	if raw, ok := sanitized["priority"]; ok {
		value, isString := raw.(string)
		if !isString || !validPriorities[value] {
			sanitized["priority"] = task.PriorityNone
		}
	} else {
		sanitized["priority"] = task.PriorityNone
	}

	if raw, ok := sanitized["due_date"]; ok {
		if normalized, valid := normalizeDate(raw); valid {
			sanitized["due_date"] = normalized
		} else {
			delete(sanitized, "due_date")
		}
	}

	if raw, ok := sanitized["tags"]; ok {
		sanitized["tags"] = cleanTags(raw)
	}

	for k, v := range sanitized {
		if v == nil {
			delete(sanitized, k)
		}
	}

	return sanitized
}

// SanitizeUpdate repairs update_task arguments. The target identifier is
// mandatory; every optional field present with a null/empty value is removed
// so an update never nulls out a field the caller did not intend to touch.
func SanitizeUpdate(args map[string]any) (map[string]any, error) {
	if args["task_id"] == nil {
		return nil, ErrMissingTaskID
	}

	sanitized := make(map[string]any, len(args))
	for k, v := range args {
		sanitized[k] = v
	}

	for _, field := range []string{"title", "description", "priority", "due_date", "tags"} {
		raw, ok := sanitized[field]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case nil:
			delete(sanitized, field)
		case string:
			if v == "" {
				delete(sanitized, field)
			}
		case []any:
			if len(v) == 0 {
				delete(sanitized, field)
			}
		case []string:
			if len(v) == 0 {
				delete(sanitized, field)
			}
		}
	}

	if raw, ok := sanitized["priority"]; ok {
		value, isString := raw.(string)
		if !isString || !validPriorities[value] {
			sanitized["priority"] = task.PriorityNone
		}
	}

	if raw, ok := sanitized["due_date"]; ok {
		if normalized, valid := normalizeDate(raw); valid {
			sanitized["due_date"] = normalized
		} else {
			delete(sanitized, "due_date")
		}
	}

	if raw, ok := sanitized["tags"]; ok {
		tags := cleanTags(raw)
		if len(tags) == 0 {
			delete(sanitized, "tags")
		} else {
			sanitized["tags"] = tags
		}
	}

	for k, v := range sanitized {
		if v == nil {
			delete(sanitized, k)
		}
	}

	return sanitized, nil
}

// generateDescription synthesizes a description when the model omitted one:
// from the title, else from a cleaned version of the user's message, else a
// generic placeholder.
func generateDescription(title, userMessage string) string {
	if strings.TrimSpace(title) != "" {
		return "Task: " + strings.TrimSpace(title)
	}

	if strings.TrimSpace(userMessage) != "" {
		cleaned := strings.ToLower(userMessage)
		for _, kw := range []string{"remind me to", "remember to", "add", "create", "new", "task"} {
			cleaned = strings.ReplaceAll(cleaned, kw, "")
		}
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			return capitalize(cleaned)
		}
	}

	return "Task to be completed"
}

// dateLayouts are tried in order when normalizing a due date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate coerces a raw date value to canonical RFC 3339. Unparsable
// values report false and are treated as absent by the callers.
func normalizeDate(raw any) (string, bool) {
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" || value == "null" || value == "none" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.RFC3339), true
		}
	}
	return "", false
}

// cleanTags coerces a raw tags value to a string slice with empty and
// whitespace-only entries dropped. Non-list values become an empty list.
func cleanTags(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []string:
		for _, tag := range v {
			if strings.TrimSpace(tag) != "" {
				out = append(out, tag)
			}
		}
	case []any:
		for _, item := range v {
			if tag, ok := item.(string); ok && strings.TrimSpace(tag) != "" {
				out = append(out, tag)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
