package dto

import "time"

type CreateTaskRequest struct {
	Title string `json:"title" binding:"required,notblank"`
}

// UpdateTaskRequest is a partial update: nil = leave unchanged.
type UpdateTaskRequest struct {
	Title     *string `json:"title" binding:"omitempty,notblank"`
	Completed *bool   `json:"completed"`
}

type TaskResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageResponse is the body of every error and of DELETE confirmations.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
