package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkingstonsqr/tile-notes/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns only enrichment may write.
var aiColumns = map[string]bool{
	"ai_tags":         true,
	"ai_summary":      true,
	"ai_processed_at": true,
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// =============================================================================
// Notes
// =============================================================================

func (s *GormStore) CreateNote(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		return fmt.Errorf("note id is required")
	}
	return s.db.WithContext(ctx).Create(note).Error
}

func (s *GormStore) GetNote(ctx context.Context, owner, id string) (*models.Note, error) {
	var note models.Note
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&note).Error; err != nil {
		return nil, notFound(err)
	}
	return &note, nil
}

func (s *GormStore) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	var notes []models.Note
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("is_pinned desc").
		Order("created_at desc").
		Find(&notes).Error
	return notes, err
}

func (s *GormStore) UpdateNote(ctx context.Context, owner, id string, req *models.UpdateNoteRequest) (*models.Note, error) {
	cols := req.Columns()
	for _, col := range cols {
		if aiColumns[col] {
			return nil, fmt.Errorf("column %s is written by enrichment only", col)
		}
	}

	var note models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&note).Error; err != nil {
			return notFound(err)
		}
		req.ApplyTo(&note)
		note.UpdatedAt = time.Now()
		return tx.Model(&note).Select(append(cols, "updated_at")).Updates(&note).Error
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *GormStore) DeleteNote(ctx context.Context, owner, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, owner).Delete(&models.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.NoteTag{}).Error; err != nil {
			return err
		}
		// Extracted tasks outlive their note.
		return tx.Model(&models.Task{}).
			Where("note_id = ? AND user_id = ?", id, owner).
			Update("note_id", nil).Error
	})
}

// SwapNotePositions exchanges the grid positions of two notes in one transaction.
func (s *GormStore) SwapNotePositions(ctx context.Context, owner, aID, bID string) (*models.Note, *models.Note, error) {
	var a, b models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", aID, owner).First(&a).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("id = ? AND user_id = ?", bID, owner).First(&b).Error; err != nil {
			return notFound(err)
		}

		a.PositionX, b.PositionX = b.PositionX, a.PositionX
		a.PositionY, b.PositionY = b.PositionY, a.PositionY
		now := time.Now()
		a.UpdatedAt, b.UpdatedAt = now, now

		cols := []string{"position_x", "position_y", "updated_at"}
		if err := tx.Model(&a).Select(cols).Updates(&a).Error; err != nil {
			return err
		}
		return tx.Model(&b).Select(cols).Updates(&b).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &a, &b, nil
}

func (s *GormStore) SaveEnrichment(ctx context.Context, owner, id string, tags []string, summary *string, at time.Time) (*models.Note, error) {
	var note models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&note).Error; err != nil {
			return notFound(err)
		}
		note.AITags = tags
		note.AISummary = summary
		note.AIProcessedAt = &at
		note.UpdatedAt = time.Now()
		return tx.Model(&note).
			Select("ai_tags", "ai_summary", "ai_processed_at", "updated_at").
			Updates(&note).Error
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ReplaceNoteTags mirrors a note's user tags into tags/note_tags.
func (s *GormStore) ReplaceNoteTags(ctx context.Context, owner, noteID string, names []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", noteID).Delete(&models.NoteTag{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			var tag models.Tag
			err := tx.Where(models.Tag{UserID: owner, Name: name}).
				Attrs(models.Tag{ID: uuid.New().String()}).
				FirstOrCreate(&tag).Error
			if err != nil {
				return err
			}
			link := models.NoteTag{NoteID: noteID, TagID: tag.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// Tasks
// =============================================================================

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("task id is required")
	}
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *GormStore) GetTask(ctx context.Context, owner, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (s *GormStore) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at desc").
		Find(&tasks).Error
	return tasks, err
}

func (s *GormStore) UpdateTask(ctx context.Context, owner, id string, req *models.UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&task).Error; err != nil {
			return notFound(err)
		}
		req.ApplyTo(&task)
		task.UpdatedAt = time.Now()
		return tx.Model(&task).Select(append(req.Columns(), "updated_at")).Updates(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *GormStore) DeleteTask(ctx context.Context, owner, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Settings
// =============================================================================

// GetSettings returns the stored settings, or the defaults when none exist.
func (s *GormStore) GetSettings(ctx context.Context, owner string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", owner).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings(owner)
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *GormStore) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	return s.db.WithContext(ctx).Save(settings).Error
}

// =============================================================================
// AI processing queue
// =============================================================================

func (s *GormStore) EnqueueAI(ctx context.Context, item *models.AIQueueItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = models.QueueStatusPending
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *GormStore) UpdateQueueItem(ctx context.Context, item *models.AIQueueItem) error {
	return s.db.WithContext(ctx).Model(item).
		Select("status", "attempts", "last_error", "processed_at", "updated_at").
		Updates(item).Error
}

func (s *GormStore) ListQueue(ctx context.Context, owner, noteID string) ([]models.AIQueueItem, error) {
	var items []models.AIQueueItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND note_id = ?", owner, noteID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// =============================================================================
// Attachments
// =============================================================================

func (s *GormStore) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) GetAttachment(ctx context.Context, owner, id string) (*models.Attachment, error) {
	var a models.Attachment
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) ListAttachments(ctx context.Context, owner, noteID string) ([]models.Attachment, error) {
	var list []models.Attachment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND note_id = ?", owner, noteID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

func (s *GormStore) DeleteAttachment(ctx context.Context, owner, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Profiles
// =============================================================================

// CreateProfile inserts the account together with its initial settings.
func (s *GormStore) CreateProfile(ctx context.Context, p *models.Profile, settings *models.UserSettings) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if settings == nil {
			return nil
		}
		return tx.Create(settings).Error
	})
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// DeleteProfile removes the account and everything it owns.
func (s *GormStore) DeleteProfile(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Note{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("note_id IN (?)", owned).Delete(&models.NoteTag{}).Error; err != nil {
			return err
		}
		for _, model := range []any{
			&models.Note{},
			&models.Task{},
			&models.Attachment{},
			&models.Tag{},
			&models.AIQueueItem{},
			&models.UserSettings{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Profile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
