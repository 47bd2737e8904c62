package models

import "time"

// Attachment is a file uploaded to the owner's storage folder.
type Attachment struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(50);index;not null" json:"user_id"`
	NoteID      string    `gorm:"type:varchar(50);index;not null" json:"note_id"`
	FileName    string    `gorm:"type:varchar(255)" json:"file_name"`
	MimeType    string    `gorm:"type:varchar(100)" json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `gorm:"type:varchar(255)" json:"storage_path"`
	PublicURL   string    `gorm:"type:varchar(512)" json:"public_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
