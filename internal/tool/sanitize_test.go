package tool

import (
	"errors"
	"reflect"
	"testing"
)

func TestSanitizeCreateDescription(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		userMessage string
		want        string
	}{
		{
			name: "synthesized from title",
			args: map[string]any{"title": "Buy groceries"},
			want: "Task: Buy groceries",
		},
		{
			name: "null description replaced",
			args: map[string]any{"title": "Call mom", "description": nil},
			want: "Task: Call mom",
		},
		{
			name: "empty description replaced",
			args: map[string]any{"title": "Pay rent", "description": ""},
			want: "Task: Pay rent",
		},
		{
			name:        "no title falls back to cleaned message",
			args:        map[string]any{},
			userMessage: "remind me to water the plants",
			want:        "Water the plants",
		},
		{
			name: "no title and no message",
			args: map[string]any{},
			want: "Task to be completed",
		},
		{
			name: "provided description kept",
			args: map[string]any{"title": "x", "description": "weekly shop"},
			want: "weekly shop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCreate(tt.args, tt.userMessage)
			if got["description"] != tt.want {
				t.Errorf("description = %q, want %q", got["description"], tt.want)
			}
		})
	}
}

func TestSanitizeCreateRecurrence(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		keep bool
	}{
		{"valid daily kept", map[string]any{"title": "t", "recurrence_pattern": "daily"}, true},
		{"none sentinel dropped", map[string]any{"title": "t", "recurrence_pattern": "none"}, false},
		{"null dropped", map[string]any{"title": "t", "recurrence_pattern": nil}, false},
		{"unknown value dropped", map[string]any{"title": "t", "recurrence_pattern": "fortnightly"}, false},
		{"non-string dropped", map[string]any{"title": "t", "recurrence_pattern": 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCreate(tt.args, "")
			if _, ok := got["recurrence_pattern"]; ok != tt.keep {
				t.Errorf("recurrence_pattern present = %v, want %v", ok, tt.keep)
			}
		})
	}
}

func TestSanitizeCreateDefaults(t *testing.T) {
	got := SanitizeCreate(map[string]any{"title": "Buy groceries"}, "add a task to buy groceries")

	if got["priority"] != "none" {
		t.Errorf("priority = %v, want none", got["priority"])
	}
	if _, ok := got["recurrence_pattern"]; ok {
		t.Error("recurrence_pattern should be absent for a one-time task")
	}
	if got["title"] != "Buy groceries" {
		t.Errorf("title = %v, want Buy groceries", got["title"])
	}
}

func TestSanitizeCreateInvalidPriority(t *testing.T) {
	got := SanitizeCreate(map[string]any{"title": "t", "priority": "urgent"}, "")
	if got["priority"] != "none" {
		t.Errorf("priority = %v, want none", got["priority"])
	}
}

func TestSanitizeCreateDueDate(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want any
	}{
		{"rfc3339 preserved", "2026-09-01T10:00:00Z", "2026-09-01T10:00:00Z"},
		{"bare date normalized", "2026-09-01", "2026-09-01T00:00:00Z"},
		{"garbage dropped", "tomorrow-ish", nil},
		{"null string dropped", "null", nil},
		{"non-string dropped", 42, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCreate(map[string]any{"title": "t", "due_date": tt.raw}, "")
			v, ok := got["due_date"]
			if tt.want == nil {
				if ok {
					t.Errorf("due_date = %v, want absent", v)
				}
				return
			}
			if v != tt.want {
				t.Errorf("due_date = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestSanitizeCreateStripsNils(t *testing.T) {
	got := SanitizeCreate(map[string]any{"title": "t", "due_date": nil, "tags": nil}, "")
	for k, v := range got {
		if v == nil {
			t.Errorf("key %q still nil after sanitization", k)
		}
	}
}

func TestSanitizeUpdateRequiresTaskID(t *testing.T) {
	_, err := SanitizeUpdate(map[string]any{"title": "new title"})
	if !errors.Is(err, ErrMissingTaskID) {
		t.Fatalf("err = %v, want ErrMissingTaskID", err)
	}
}

func TestSanitizeUpdateDropsEmptyFields(t *testing.T) {
	got, err := SanitizeUpdate(map[string]any{
		"task_id":     float64(5),
		"title":       "",
		"description": nil,
		"priority":    "urgent",
		"tags":        []any{},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"task_id":  float64(5),
		"priority": "none",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sanitized = %v, want %v", got, want)
	}
}

func TestSanitizeUpdateIdempotent(t *testing.T) {
	args := map[string]any{
		"task_id":  float64(3),
		"title":    "Renamed",
		"priority": "high",
		"due_date": "2026-09-01",
		"tags":     []any{"home", ""},
	}

	once, err := SanitizeUpdate(args)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := SanitizeUpdate(once)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed output:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestSanitizeUpdatePreservesUntouchedFields(t *testing.T) {
	got, err := SanitizeUpdate(map[string]any{
		"task_id": float64(1),
		"title":   "only the title",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := got["description"]; ok {
		t.Error("description should not appear when the caller did not send it")
	}
	if got["title"] != "only the title" {
		t.Errorf("title = %v", got["title"])
	}
}

func TestCleanTags(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"mixed list", []any{"home", "", "urgent"}, []string{"home", "urgent"}},
		{"string slice", []string{"a", " ", "b"}, []string{"a", "b"}},
		{"non-list", "home", []string{}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTags(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cleanTags(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
