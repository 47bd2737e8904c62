package models

import (
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a to-do item, created by the user or extracted from a note.
type Task struct {
	ID          string       `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID      string       `gorm:"type:varchar(50);index;not null" json:"user_id"`
	NoteID      *string      `gorm:"type:varchar(50);index" json:"note_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	IsCompleted bool         `gorm:"default:false" json:"is_completed"`
	DueDate     *string      `gorm:"type:varchar(100)" json:"due_date"` // free text
	Reminder    *string      `gorm:"type:varchar(100)" json:"reminder"` // free text
	Priority    TaskPriority `gorm:"type:varchar(10);default:medium" json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
