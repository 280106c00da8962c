package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by Postgres via pgxpool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the tasks table exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool, for sharing one pool
// across stores.
func NewPostgresStoreWithPool(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS tasks (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        completed BOOLEAN NOT NULL DEFAULT FALSE,
        priority TEXT NOT NULL DEFAULT 'none',
        due_date TIMESTAMPTZ,
        tags TEXT[] NOT NULL DEFAULT '{}',
        recurrence_pattern TEXT NOT NULL DEFAULT '',
        reminder_time TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init tasks schema: %w", err)
	}
	if _, err := s.db.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, created_at)`); err != nil {
		return fmt.Errorf("failed to create tasks index: %w", err)
	}
	return nil
}

const taskColumns = `id, user_id, title, description, completed, priority, due_date, tags, recurrence_pattern, reminder_time, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&t.Priority, &t.DueDate, &t.Tags, &t.RecurrencePattern, &t.ReminderTime,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) Create(ctx context.Context, t *Task) (*Task, error) {
	priority := t.Priority
	if priority == "" {
		priority = PriorityNone
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	row := s.db.QueryRow(ctx, `
        INSERT INTO tasks (user_id, title, description, priority, due_date, tags, recurrence_pattern, reminder_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, priority, t.DueDate, tags, t.RecurrencePattern, t.ReminderTime)
	return scanTask(row)
}

func (s *PostgresStore) Get(ctx context.Context, userID string, id int64) (*Task, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTask(row)
}

func (s *PostgresStore) List(ctx context.Context, userID string, f Filter) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	switch f.Status {
	case "pending":
		query += ` AND completed = FALSE`
	case "completed":
		query += ` AND completed = TRUE`
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		query += fmt.Sprintf(` AND (LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)`, len(args), len(args))
	}
	if f.RecurringOnly {
		query += ` AND recurrence_pattern <> ''`
	}
	if f.Pattern != "" {
		args = append(args, f.Pattern)
		query += fmt.Sprintf(` AND recurrence_pattern = $%d`, len(args))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, userID string, id int64, u Update) (*Task, error) {
	sets := []string{}
	args := []any{id, userID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Priority != nil {
		add("priority", *u.Priority)
	}
	if u.DueDate != nil {
		add("due_date", *u.DueDate)
	}
	if u.Tags != nil {
		add("tags", u.Tags)
	}
	if u.RecurrencePattern != nil {
		add("recurrence_pattern", *u.RecurrencePattern)
	}
	if u.ReminderTime != nil {
		add("reminder_time", *u.ReminderTime)
	}

	if len(sets) == 0 {
		return s.Get(ctx, userID, id)
	}

	add("updated_at", time.Now())
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns
	return scanTask(s.db.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) Delete(ctx context.Context, userID string, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ToggleComplete(ctx context.Context, userID string, id int64) (*Task, error) {
	row := s.db.QueryRow(ctx, `
        UPDATE tasks SET completed = NOT completed, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING `+taskColumns, id, userID)
	return scanTask(row)
}

func (s *PostgresStore) AddTags(ctx context.Context, userID string, id int64, tags []string) (*Task, error) {
	// Read-modify-write keeps dedup logic in one place; per-user row access
	// makes lost updates harmless here.
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	merged := mergeTags(current.Tags, tags)
	return s.Update(ctx, userID, id, Update{Tags: merged})
}

func (s *PostgresStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	row := s.db.QueryRow(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE completed),
            COUNT(*) FILTER (WHERE NOT completed),
            COUNT(*) FILTER (WHERE priority = 'high'),
            COUNT(*) FILTER (WHERE recurrence_pattern <> ''),
            COUNT(*) FILTER (WHERE NOT completed AND due_date IS NOT NULL AND due_date < now())
        FROM tasks WHERE user_id = $1`, userID)

	var st Stats
	if err := row.Scan(&st.Total, &st.Completed, &st.Pending, &st.HighPrio, &st.Recurring, &st.Overdue); err != nil {
		return nil, err
	}
	return &st, nil
}
