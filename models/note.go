package models

import (
	"time"
)

// NoteType is the kind of content a tile holds.
type NoteType string

const (
	NoteTypeText  NoteType = "text"
	NoteTypeVoice NoteType = "voice"
	NoteTypeImage NoteType = "image"
	NoteTypeLink  NoteType = "link"
)

func (t NoteType) Valid() bool {
	switch t {
	case NoteTypeText, NoteTypeVoice, NoteTypeImage, NoteTypeLink:
		return true
	}
	return false
}

// PlaceholderTitle is shown for notes created without a title.
func (t NoteType) PlaceholderTitle() string {
	switch t {
	case NoteTypeVoice:
		return "Voice Note"
	case NoteTypeImage:
		return "Image Note"
	case NoteTypeLink:
		return "Link"
	default:
		return "Untitled Note"
	}
}

const DefaultNoteColor = "#ffffff"

// Note is a single tile of the grid. The AI* fields are owned by enrichment.
type Note struct {
	ID            string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID        string     `gorm:"type:varchar(50);index;not null" json:"user_id"`
	Title         *string    `gorm:"type:varchar(255)" json:"title"`
	Content       string     `gorm:"type:text" json:"content"`
	NoteType      NoteType   `gorm:"type:varchar(10);default:text" json:"note_type"`
	Tags          []string   `gorm:"type:text;serializer:json" json:"tags"`
	AITags        []string   `gorm:"column:ai_tags;type:text;serializer:json" json:"ai_tags"`
	AISummary     *string    `gorm:"column:ai_summary;type:text" json:"ai_summary"`
	AIProcessedAt *time.Time `gorm:"column:ai_processed_at" json:"ai_processed_at"`
	IsPinned      bool       `gorm:"default:false" json:"is_pinned"`
	Color         string     `gorm:"type:varchar(20)" json:"color"`
	PositionX     int        `gorm:"default:0" json:"position_x"`
	PositionY     int        `gorm:"default:0" json:"position_y"`
	IsArchived    bool       `gorm:"default:false" json:"is_archived"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}

// DisplayTitle returns the title, or the type placeholder when it is empty.
func (n *Note) DisplayTitle() string {
	if n.Title != nil && *n.Title != "" {
		return *n.Title
	}
	return n.NoteType.PlaceholderTitle()
}

// HasTag reports whether tag is among the user or AI tags.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	for _, t := range n.AITags {
		if t == tag {
			return true
		}
	}
	return false
}
