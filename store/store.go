// Package store is the authoritative, owner-scoped persistence layer.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mkingstonsqr/tile-notes/models"
)

// ErrNotFound is returned when no row matches both the id and the owner.
var ErrNotFound = errors.New("record not found")

// Store is the remote store every in-memory collection is reconciled against.
// Every method is scoped to a single owner.
type Store interface {
	// Notes
	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, owner, id string) (*models.Note, error)
	ListNotes(ctx context.Context, owner string) ([]models.Note, error)
	UpdateNote(ctx context.Context, owner, id string, req *models.UpdateNoteRequest) (*models.Note, error)
	DeleteNote(ctx context.Context, owner, id string) error
	SwapNotePositions(ctx context.Context, owner, aID, bID string) (*models.Note, *models.Note, error)
	SaveEnrichment(ctx context.Context, owner, id string, tags []string, summary *string, at time.Time) (*models.Note, error)
	ReplaceNoteTags(ctx context.Context, owner, noteID string, names []string) error

	// Tasks
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, owner, id string) (*models.Task, error)
	ListTasks(ctx context.Context, owner string) ([]models.Task, error)
	UpdateTask(ctx context.Context, owner, id string, req *models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error

	// Settings
	GetSettings(ctx context.Context, owner string) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, settings *models.UserSettings) error

	// AI processing queue
	EnqueueAI(ctx context.Context, item *models.AIQueueItem) error
	UpdateQueueItem(ctx context.Context, item *models.AIQueueItem) error
	ListQueue(ctx context.Context, owner, noteID string) ([]models.AIQueueItem, error)

	// Attachments
	CreateAttachment(ctx context.Context, a *models.Attachment) error
	GetAttachment(ctx context.Context, owner, id string) (*models.Attachment, error)
	ListAttachments(ctx context.Context, owner, noteID string) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, owner, id string) error

	// Profiles
	CreateProfile(ctx context.Context, p *models.Profile, settings *models.UserSettings) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}
