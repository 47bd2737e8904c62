package models

import "time"

type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
)

// AIQueueItem records one enrichment run for a note.
type AIQueueItem struct {
	ID          string      `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID      string      `gorm:"type:varchar(50);index;not null" json:"user_id"`
	NoteID      string      `gorm:"type:varchar(50);index;not null" json:"note_id"`
	Status      QueueStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	Attempts    int         `gorm:"default:0" json:"attempts"`
	LastError   *string     `gorm:"type:text" json:"last_error"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	ProcessedAt *time.Time  `json:"processed_at"`
}

func (AIQueueItem) TableName() string {
	return "ai_processing_queue"
}
