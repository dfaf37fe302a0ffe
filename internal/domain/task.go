package domain

import "time"

// Task is the single domain record: a titled, completable to-do item.
// It does not depend on Gin, Mongo, Postgres or Redis.
type Task struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt time.Time
}

// TaskPatch is a partial update. A nil field is left unchanged.
type TaskPatch struct {
	Title     *string
	Completed *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}
