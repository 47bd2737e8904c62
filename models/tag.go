package models

import "time"

// Tag is the normalized form of a user tag.
type Tag struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(50);uniqueIndex:idx_tags_user_name;not null" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex:idx_tags_user_name;not null" json:"name"`
	Color     string    `gorm:"type:varchar(20)" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

type NoteTag struct {
	NoteID string `gorm:"type:varchar(50);primaryKey" json:"note_id"`
	TagID  string `gorm:"type:varchar(50);primaryKey" json:"tag_id"`
}

func (NoteTag) TableName() string {
	return "note_tags"
}
