package repo

import (
	"context"

	dom "tasklist/internal/domain"
)

// TaskRepo persists tasks. Implementations return dom.ErrNotFound for unknown
// or malformed ids and assign ID and CreatedAt on Create.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
