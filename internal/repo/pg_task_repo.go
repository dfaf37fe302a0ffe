package repo

import (
	"context"
	"errors"

	dom "tasklist/internal/domain"
	"tasklist/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id::text, title, completed, created_at`

// PGTaskRepo implements TaskRepo with Postgres.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (title, completed)
		VALUES ($1, $2)
		RETURNING ` + taskColumns
	var out dom.Task
	err := r.db.QueryRow(ctx, query, t.Title, t.Completed).Scan(
		&out.ID, &out.Title, &out.Completed, &out.CreatedAt,
	)
	return out, err
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1::text::uuid`
	var t dom.Task
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt)
	if err != nil {
		return dom.Task{}, pgErr(err)
	}
	return t, nil
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		var t dom.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update applies only the non-nil fields of patch; NULL parameters keep the stored value.
func (r *PGTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	query := `
		UPDATE tasks SET
			title = COALESCE($2::text, title),
			completed = COALESCE($3::boolean, completed)
		WHERE id = $1::text::uuid
		RETURNING ` + taskColumns
	var t dom.Task
	err := r.db.QueryRow(ctx, query, id, patch.Title, patch.Completed).Scan(
		&t.ID, &t.Title, &t.Completed, &t.CreatedAt,
	)
	if err != nil {
		return dom.Task{}, pgErr(err)
	}
	return t, nil
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1::text::uuid`, id)
	if err != nil {
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// pgErr maps "no such row" and malformed uuids to dom.ErrNotFound.
func pgErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || utils.IsPGInvalidText(err) {
		return dom.ErrNotFound
	}
	return err
}
