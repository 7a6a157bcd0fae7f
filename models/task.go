package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the closed set of task states. All transitions between the three
// values are permitted; values outside the set never reach the database.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is the closed set of task priorities. Creating or updating to
// PriorityHigh is additionally gated by policy.CanSetHighPriority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	Id          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Status      Status    `json:"status" gorm:"size:16;not null;default:'pending';index"`
	Priority    Priority  `json:"priority" gorm:"size:16;not null;default:'medium';index"`
	IsPublic    bool      `json:"is_public"`
	OwnerId     string    `json:"owner_id" gorm:"size:36;not null;index"`
	AssignedTo  *string   `json:"assigned_to,omitempty" gorm:"size:36;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (task *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if task.Id == "" {
		task.Id = uuid.NewString()
	}
	return
}

// TaskBasic is the reduced projection served by the v1 endpoints. The
// idempotency cache stores whichever projection was actually sent, so v1
// replays stay in this shape.
type TaskBasic struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

func (task *Task) Basic() TaskBasic {
	return TaskBasic{
		Id:        task.Id,
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		CreatedAt: task.CreatedAt,
	}
}
