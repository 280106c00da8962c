package task

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]*Task
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		tasks:  make(map[int64]*Task),
	}
}

func (s *MemoryStore) Create(ctx context.Context, t *Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := cloneTask(t)
	stored.ID = s.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Priority == "" {
		stored.Priority = PriorityNone
	}
	s.nextID++
	s.tasks[stored.ID] = stored

	return cloneTask(stored), nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string, id int64) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *MemoryStore) List(ctx context.Context, userID string, f Filter) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Task
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if !matchesFilter(t, f) {
			continue
		}
		out = append(out, cloneTask(t))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, userID string, id int64, u Update) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}

	applyUpdate(t, u)
	t.UpdatedAt = time.Now()

	return cloneTask(t), nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) ToggleComplete(ctx context.Context, userID string, id int64) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now()

	return cloneTask(t), nil
}

func (s *MemoryStore) AddTags(ctx context.Context, userID string, id int64, tags []string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	t.Tags = mergeTags(t.Tags, tags)
	t.UpdatedAt = time.Now()

	return cloneTask(t), nil
}

func (s *MemoryStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	now := time.Now()
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
			if t.DueDate != nil && t.DueDate.Before(now) {
				stats.Overdue++
			}
		}
		if t.Priority == PriorityHigh {
			stats.HighPrio++
		}
		if t.RecurrencePattern != "" {
			stats.Recurring++
		}
	}
	return stats, nil
}

func matchesFilter(t *Task, f Filter) bool {
	switch f.Status {
	case "pending":
		if t.Completed {
			return false
		}
	case "completed":
		if !t.Completed {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.RecurringOnly && t.RecurrencePattern == "" {
		return false
	}
	if f.Pattern != "" && t.RecurrencePattern != f.Pattern {
		return false
	}
	return true
}

func applyUpdate(t *Task, u Update) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.Tags != nil {
		t.Tags = append([]string(nil), u.Tags...)
	}
	if u.RecurrencePattern != nil {
		t.RecurrencePattern = *u.RecurrencePattern
	}
	if u.ReminderTime != nil {
		t.ReminderTime = u.ReminderTime
	}
}

func mergeTags(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := append([]string(nil), existing...)
	for _, tag := range existing {
		seen[tag] = true
	}
	for _, tag := range added {
		if !seen[tag] {
			merged = append(merged, tag)
			seen[tag] = true
		}
	}
	return merged
}

func cloneTask(t *Task) *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.ReminderTime != nil {
		r := *t.ReminderTime
		c.ReminderTime = &r
	}
	return &c
}
