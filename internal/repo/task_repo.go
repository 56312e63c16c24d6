package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	dom "taskdeck/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence. Every method is scoped to the owning
// user: a task id belonging to someone else behaves as if it did not exist.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Task, error)
	List(ctx context.Context, userID int64, f dom.Filter) ([]dom.Task, error)
	Recent(ctx context.Context, userID int64, limit int) ([]dom.Task, error)
	Update(ctx context.Context, userID, id int64, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	SetStatus(ctx context.Context, userID, id int64, status dom.Status) (dom.Task, error)
	CountByStatus(ctx context.Context, userID int64) (total, completed int, err error)
}

const taskColumns = `id, user_id, title, description, status, due_date, created_at, updated_at`

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns
	row := r.db.QueryRow(ctx, query, t.UserID, t.Title, t.Description, t.Status, t.DueDate)
	return scanTask(row)
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRow(ctx, query, id, userID)
	return scanTask(row)
}

// List returns the user's tasks in insertion order. Filter conditions are
// combined; day boundaries are computed in UTC.
func (r *PGTaskRepo) List(ctx context.Context, userID int64, f dom.Filter) ([]dom.Task, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []interface{}{userID}
	)

	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfToday := startOfToday.Add(24*time.Hour - time.Nanosecond)

	if f.Overdue {
		// Status is intentionally not considered here: completed tasks with a
		// past due date still count as overdue.
		args = append(args, startOfToday)
		where = append(where, fmt.Sprintf("due_date IS NOT NULL AND due_date < $%d", len(args)))
	}
	if f.Today {
		args = append(args, startOfToday)
		where = append(where, fmt.Sprintf("due_date >= $%d", len(args)))
		args = append(args, endOfToday)
		where = append(where, fmt.Sprintf("due_date <= $%d", len(args)))
	}
	if f.UpcomingDays != nil {
		endOfWindow := endOfToday.AddDate(0, 0, *f.UpcomingDays)
		args = append(args, startOfToday)
		where = append(where, fmt.Sprintf("due_date > $%d", len(args)))
		args = append(args, endOfWindow)
		where = append(where, fmt.Sprintf("due_date <= $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY id`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// Recent returns up to limit tasks, newest first.
func (r *PGTaskRepo) Recent(ctx context.Context, userID int64, limit int) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *PGTaskRepo) Update(ctx context.Context, userID, id int64, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET title = $3, description = $4, status = $5, due_date = $6, updated_at = clock_timestamp()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	row := r.db.QueryRow(ctx, query, id, userID, t.Title, t.Description, t.Status, t.DueDate)
	return scanTask(row)
}

// Delete hard-deletes the row. Returns pgx.ErrNoRows when nothing matched.
func (r *PGTaskRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGTaskRepo) SetStatus(ctx context.Context, userID, id int64, status dom.Status) (dom.Task, error) {
	query := `
		UPDATE tasks SET status = $3, updated_at = clock_timestamp()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	row := r.db.QueryRow(ctx, query, id, userID, status)
	return scanTask(row)
}

func (r *PGTaskRepo) CountByStatus(ctx context.Context, userID int64) (total, completed int, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed') FROM tasks WHERE user_id = $1`,
		userID,
	).Scan(&total, &completed)
	return total, completed, err
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTasks(rows pgx.Rows) ([]dom.Task, error) {
	var list []dom.Task
	for rows.Next() {
		var t dom.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.DueDate,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
