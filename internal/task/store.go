package task

import (
	"context"
)

// Store is the task persistence boundary. Every operation is scoped by user
// ID; a lookup with the wrong user behaves as not-found.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Get(ctx context.Context, userID string, id int64) (*Task, error)
	List(ctx context.Context, userID string, f Filter) ([]*Task, error)
	Update(ctx context.Context, userID string, id int64, u Update) (*Task, error)
	Delete(ctx context.Context, userID string, id int64) error
	ToggleComplete(ctx context.Context, userID string, id int64) (*Task, error)
	AddTags(ctx context.Context, userID string, id int64, tags []string) (*Task, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
}
