package models

import (
	"fmt"
	"strings"
)

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	Title     *string  `json:"title"`
	Content   string   `json:"content"`
	NoteType  NoteType `json:"note_type"`
	Tags      []string `json:"tags"`
	IsPinned  bool     `json:"is_pinned"`
	Color     string   `json:"color"`
	PositionX int      `json:"position_x"`
	PositionY int      `json:"position_y"`
}

func (r *CreateNoteRequest) Validate() error {
	if r.NoteType != "" && !r.NoteType.Valid() {
		return fmt.Errorf("invalid note_type %q", r.NoteType)
	}
	if r.PositionX < 0 || r.PositionY < 0 {
		return fmt.Errorf("position must not be negative")
	}
	r.Tags = NormalizeTags(r.Tags)
	return nil
}

// UpdateNoteRequest is a partial update; nil fields are left unchanged.
// It deliberately has no AI fields.
type UpdateNoteRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	NoteType   *NoteType `json:"note_type"`
	Tags       *[]string `json:"tags"`
	IsPinned   *bool     `json:"is_pinned"`
	Color      *string   `json:"color"`
	PositionX  *int      `json:"position_x"`
	PositionY  *int      `json:"position_y"`
	IsArchived *bool     `json:"is_archived"`
}

func (r *UpdateNoteRequest) Validate() error {
	if r.NoteType != nil && !r.NoteType.Valid() {
		return fmt.Errorf("invalid note_type %q", *r.NoteType)
	}
	if (r.PositionX != nil && *r.PositionX < 0) || (r.PositionY != nil && *r.PositionY < 0) {
		return fmt.Errorf("position must not be negative")
	}
	if r.Tags != nil {
		tags := NormalizeTags(*r.Tags)
		r.Tags = &tags
	}
	if len(r.Columns()) == 0 {
		return fmt.Errorf("no fields to update")
	}
	return nil
}

// Columns lists the database columns touched by the request.
func (r *UpdateNoteRequest) Columns() []string {
	var cols []string
	if r.Title != nil {
		cols = append(cols, "title")
	}
	if r.Content != nil {
		cols = append(cols, "content")
	}
	if r.NoteType != nil {
		cols = append(cols, "note_type")
	}
	if r.Tags != nil {
		cols = append(cols, "tags")
	}
	if r.IsPinned != nil {
		cols = append(cols, "is_pinned")
	}
	if r.Color != nil {
		cols = append(cols, "color")
	}
	if r.PositionX != nil {
		cols = append(cols, "position_x")
	}
	if r.PositionY != nil {
		cols = append(cols, "position_y")
	}
	if r.IsArchived != nil {
		cols = append(cols, "is_archived")
	}
	return cols
}

// ApplyTo copies the set fields onto note.
func (r *UpdateNoteRequest) ApplyTo(note *Note) {
	if r.Title != nil {
		title := *r.Title
		note.Title = &title
	}
	if r.Content != nil {
		note.Content = *r.Content
	}
	if r.NoteType != nil {
		note.NoteType = *r.NoteType
	}
	if r.Tags != nil {
		note.Tags = append([]string{}, (*r.Tags)...)
	}
	if r.IsPinned != nil {
		note.IsPinned = *r.IsPinned
	}
	if r.Color != nil {
		note.Color = *r.Color
	}
	if r.PositionX != nil {
		note.PositionX = *r.PositionX
	}
	if r.PositionY != nil {
		note.PositionY = *r.PositionY
	}
	if r.IsArchived != nil {
		note.IsArchived = *r.IsArchived
	}
}

// ContentChanged reports whether the edit can affect enrichment input.
func (r *UpdateNoteRequest) ContentChanged() bool {
	return r.Content != nil || r.Title != nil || r.NoteType != nil
}

type ReorderNotesRequest struct {
	DraggedID string `json:"dragged_id" binding:"required"`
	TargetID  string `json:"target_id" binding:"required"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	NoteID      *string      `json:"note_id"`
	Title       string       `json:"title" binding:"required"`
	Description *string      `json:"description"`
	DueDate     *string      `json:"due_date"`
	Reminder    *string      `json:"reminder"`
	Priority    TaskPriority `json:"priority"`
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", r.Priority)
	}
	return nil
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	IsCompleted *bool         `json:"is_completed"`
	DueDate     *string       `json:"due_date"`
	Reminder    *string       `json:"reminder"`
	Priority    *TaskPriority `json:"priority"`
}

func (r *UpdateTaskRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", *r.Priority)
	}
	if len(r.Columns()) == 0 {
		return fmt.Errorf("no fields to update")
	}
	return nil
}

func (r *UpdateTaskRequest) Columns() []string {
	var cols []string
	if r.Title != nil {
		cols = append(cols, "title")
	}
	if r.Description != nil {
		cols = append(cols, "description")
	}
	if r.IsCompleted != nil {
		cols = append(cols, "is_completed")
	}
	if r.DueDate != nil {
		cols = append(cols, "due_date")
	}
	if r.Reminder != nil {
		cols = append(cols, "reminder")
	}
	if r.Priority != nil {
		cols = append(cols, "priority")
	}
	return cols
}

func (r *UpdateTaskRequest) ApplyTo(task *Task) {
	if r.Title != nil {
		task.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		desc := *r.Description
		task.Description = &desc
	}
	if r.IsCompleted != nil {
		task.IsCompleted = *r.IsCompleted
	}
	if r.DueDate != nil {
		due := *r.DueDate
		task.DueDate = &due
	}
	if r.Reminder != nil {
		reminder := *r.Reminder
		task.Reminder = &reminder
	}
	if r.Priority != nil {
		task.Priority = *r.Priority
	}
}

type UpdateSettingsRequest struct {
	NotificationCadence *NotificationCadence `json:"notification_cadence"`
	DefaultColor        *string              `json:"default_color"`
	AutoEnrich          *bool                `json:"auto_enrich"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if r.NotificationCadence != nil && !r.NotificationCadence.Valid() {
		return fmt.Errorf("invalid notification_cadence %q", *r.NotificationCadence)
	}
	return nil
}

func (r *UpdateSettingsRequest) ApplyTo(s *UserSettings) {
	if r.NotificationCadence != nil {
		s.NotificationCadence = *r.NotificationCadence
	}
	if r.DefaultColor != nil {
		s.DefaultColor = *r.DefaultColor
	}
	if r.AutoEnrich != nil {
		s.AutoEnrich = *r.AutoEnrich
	}
}

type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// NormalizeTags trims tags and drops empty and duplicate entries, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
