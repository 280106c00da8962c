package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCreateGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &Task{UserID: "u1", Title: "Buy groceries"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
	if created.Priority != PriorityNone {
		t.Errorf("Priority = %q, want %q", created.Priority, PriorityNone)
	}

	got, err := s.Get(ctx, "u1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Buy groceries" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestMemoryStoreUserIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &Task{UserID: "alice", Title: "Secret"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "bob", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get as bob: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "bob", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete as bob: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, "bob", created.ID, Update{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update as bob: err = %v, want ErrNotFound", err)
	}

	tasks, err := s.List(ctx, "bob", Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("bob sees %d tasks", len(tasks))
	}
}

func TestMemoryStoreUpdatePartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &Task{
		UserID:      "u1",
		Title:       "Original",
		Description: "keep me",
		Priority:    PriorityHigh,
	})
	if err != nil {
		t.Fatal(err)
	}

	title := "Renamed"
	got, err := s.Update(ctx, "u1", created.ID, Update{Title: &title})
	if err != nil {
		t.Fatal(err)
	}

	if got.Title != "Renamed" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Description != "keep me" {
		t.Errorf("Description overwritten: %q", got.Description)
	}
	if got.Priority != PriorityHigh {
		t.Errorf("Priority overwritten: %q", got.Priority)
	}
}

func TestMemoryStoreListFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seed := []*Task{
		{UserID: "u1", Title: "Buy milk", Priority: PriorityHigh},
		{UserID: "u1", Title: "Standup", RecurrencePattern: RecurrenceDaily},
		{UserID: "u1", Title: "Report", Description: "weekly numbers", RecurrencePattern: RecurrenceWeekly},
	}
	var ids []int64
	for _, ts := range seed {
		created, err := s.Create(ctx, ts)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := s.ToggleComplete(ctx, "u1", ids[0]); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"pending", Filter{Status: "pending"}, 2},
		{"completed", Filter{Status: "completed"}, 1},
		{"high priority", Filter{Priority: PriorityHigh}, 1},
		{"search title", Filter{Search: "milk"}, 1},
		{"search description", Filter{Search: "numbers"}, 1},
		{"recurring only", Filter{RecurringOnly: true}, 2},
		{"recurring daily", Filter{RecurringOnly: true, Pattern: RecurrenceDaily}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d tasks, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMemoryStoreAddTagsDeduplicates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &Task{UserID: "u1", Title: "t", Tags: []string{"home"}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.AddTags(ctx, "u1", created.ID, []string{"home", "urgent"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "home" || got.Tags[1] != "urgent" {
		t.Errorf("Tags = %v", got.Tags)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	seed := []*Task{
		{UserID: "u1", Title: "overdue", DueDate: &past},
		{UserID: "u1", Title: "done", Priority: PriorityHigh},
		{UserID: "u1", Title: "recurring", RecurrencePattern: RecurrenceDaily},
		{UserID: "other", Title: "not mine"},
	}
	var ids []int64
	for _, ts := range seed {
		created, err := s.Create(ctx, ts)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := s.ToggleComplete(ctx, "u1", ids[1]); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
	if stats.Pending != 2 {
		t.Errorf("Pending = %d, want 2", stats.Pending)
	}
	if stats.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", stats.Overdue)
	}
	if stats.HighPrio != 1 {
		t.Errorf("HighPrio = %d, want 1", stats.HighPrio)
	}
	if stats.Recurring != 1 {
		t.Errorf("Recurring = %d, want 1", stats.Recurring)
	}
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &Task{UserID: "u1", Title: "t", Tags: []string{"a"}})
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the returned copy must not affect stored state.
	created.Tags[0] = "mutated"
	created.Title = "mutated"

	got, err := s.Get(ctx, "u1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "t" || got.Tags[0] != "a" {
		t.Errorf("stored task mutated: %+v", got)
	}
}
