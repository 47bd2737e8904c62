package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/mkingstonsqr/tile-notes/utils"
)

// NoteFilter narrows List results. The zero value lists active notes.
type NoteFilter struct {
	Archived bool
	Type     models.NoteType
	Tag      string
	Query    string
}

func (f NoteFilter) match(n *models.Note) bool {
	if n.IsArchived != f.Archived {
		return false
	}
	if f.Type != "" && n.NoteType != f.Type {
		return false
	}
	if f.Tag != "" && !n.HasTag(f.Tag) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		haystack := strings.ToLower(n.DisplayTitle() + "\n" + n.Content)
		if n.AISummary != nil {
			haystack += "\n" + strings.ToLower(*n.AISummary)
		}
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// notesBefore orders pinned notes first, newest first within each group.
func notesBefore(a, b *models.Note) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// NoteSynchronizer keeps per-owner note collections consistent with the store.
// Local state changes only after the store acknowledges a write.
type NoteSynchronizer struct {
	store store.Store
	feed  ChangeFeed
	cache *ownerCache[models.Note]
	now   func() time.Time

	mu        sync.RWMutex
	onSaved   []func(owner string, note models.Note)
	onDeleted []func(owner, id string)
}

func NewNoteSynchronizer(s store.Store, feed ChangeFeed) *NoteSynchronizer {
	if feed == nil {
		feed = nopFeed{}
	}
	return &NoteSynchronizer{
		store: s,
		feed:  feed,
		cache: newOwnerCache(func(n *models.Note) string { return n.ID }, notesBefore),
		now:   time.Now,
	}
}

// OnSaved registers fn to run after every committed create, and after updates
// that touch title, content or type.
func (s *NoteSynchronizer) OnSaved(fn func(owner string, note models.Note)) {
	s.mu.Lock()
	s.onSaved = append(s.onSaved, fn)
	s.mu.Unlock()
}

// OnDeleted registers fn to run after every committed delete.
func (s *NoteSynchronizer) OnDeleted(fn func(owner, id string)) {
	s.mu.Lock()
	s.onDeleted = append(s.onDeleted, fn)
	s.mu.Unlock()
}

func (s *NoteSynchronizer) notifySaved(owner string, note models.Note) {
	s.mu.RLock()
	hooks := s.onSaved
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(owner, note)
	}
}

func (s *NoteSynchronizer) notifyDeleted(owner, id string) {
	s.mu.RLock()
	hooks := s.onDeleted
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(owner, id)
	}
}

// load returns the owner's collection, fetching it from the store on a miss.
func (s *NoteSynchronizer) load(ctx context.Context, owner string) ([]models.Note, error) {
	if notes, ok := s.cache.get(owner); ok {
		return notes, nil
	}
	version := s.cache.version(owner)
	notes, err := s.store.ListNotes(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !s.cache.set(owner, notes, version) {
		// A write landed while the snapshot was in flight; serve a fresh one uncached.
		fresh, err := s.store.ListNotes(ctx, owner)
		if err != nil {
			return nil, err
		}
		return s.cache.ordered(fresh), nil
	}
	notes, _ = s.cache.get(owner)
	return notes, nil
}

// Invalidate drops the owner's cached notes; the next read reloads them.
func (s *NoteSynchronizer) Invalidate(owner string) {
	s.cache.invalidate(owner)
}

// Reload re-fetches the owner's notes from the store.
func (s *NoteSynchronizer) Reload(ctx context.Context, owner string) ([]models.Note, error) {
	s.cache.invalidate(owner)
	return s.load(ctx, owner)
}

func (s *NoteSynchronizer) List(ctx context.Context, owner string, filter NoteFilter) ([]models.Note, error) {
	notes, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := notes[:0]
	for i := range notes {
		if filter.match(&notes[i]) {
			out = append(out, notes[i])
		}
	}
	return out, nil
}

func (s *NoteSynchronizer) Get(ctx context.Context, owner, id string) (*models.Note, error) {
	notes, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, ErrNoteNotFound
}

// Create fills in defaults, inserts remotely and then adds the note locally.
func (s *NoteSynchronizer) Create(ctx context.Context, owner string, req *models.CreateNoteRequest) (*models.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	noteType := req.NoteType
	if noteType == "" {
		noteType = models.NoteTypeText
	}

	title := noteType.PlaceholderTitle()
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}

	color := req.Color
	if color == "" {
		color = s.defaultColor(ctx, owner)
	}

	now := s.now()
	note := &models.Note{
		ID:         utils.GenerateID(),
		UserID:     owner,
		Title:      &title,
		Content:    req.Content,
		NoteType:   noteType,
		Tags:       req.Tags,
		AITags:     []string{},
		IsPinned:   req.IsPinned,
		Color:      color,
		PositionX:  req.PositionX,
		PositionY:  req.PositionY,
		IsArchived: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		config.Logger.Errorw("create note rejected", "error", err, "owner", owner)
		return nil, persistErr("create note", err, ErrNoteNotFound)
	}

	s.mirrorTags(ctx, owner, note)
	s.cache.upsert(owner, *note)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityNote, Op: "create", ID: note.ID})
	s.notifySaved(owner, *note)

	config.Logger.Infow("note created", "owner", owner, "noteID", note.ID, "type", note.NoteType)
	return note, nil
}

// Update writes the changed fields remotely, then replaces the local copy and re-sorts.
func (s *NoteSynchronizer) Update(ctx context.Context, owner, id string, req *models.UpdateNoteRequest) (*models.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	note, err := s.store.UpdateNote(ctx, owner, id, req)
	if err != nil {
		config.Logger.Errorw("update note rejected", "error", err, "owner", owner, "noteID", id)
		return nil, persistErr("update note", err, ErrNoteNotFound)
	}

	if req.Tags != nil {
		s.mirrorTags(ctx, owner, note)
	}
	s.cache.upsert(owner, *note)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityNote, Op: "update", ID: id})
	if req.ContentChanged() {
		s.notifySaved(owner, *note)
	}
	return note, nil
}

// Delete removes the note remotely, then locally. There is no tombstone.
func (s *NoteSynchronizer) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteNote(ctx, owner, id); err != nil {
		config.Logger.Errorw("delete note rejected", "error", err, "owner", owner, "noteID", id)
		return persistErr("delete note", err, ErrNoteNotFound)
	}

	s.cache.remove(owner, id)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityNote, Op: "delete", ID: id})
	s.notifyDeleted(owner, id)
	return nil
}

// Reorder swaps the grid positions of the dragged note and the drop target.
func (s *NoteSynchronizer) Reorder(ctx context.Context, owner, draggedID, targetID string) (*models.Note, *models.Note, error) {
	if draggedID == targetID {
		return nil, nil, invalid(errors.New("cannot drop a note onto itself"))
	}

	dragged, target, err := s.store.SwapNotePositions(ctx, owner, draggedID, targetID)
	if err != nil {
		config.Logger.Errorw("reorder rejected",
			"error", err,
			"owner", owner,
			"dragged", draggedID,
			"target", targetID,
		)
		return nil, nil, persistErr("reorder notes", err, ErrNoteNotFound)
	}

	s.cache.upsert(owner, *dragged)
	s.cache.upsert(owner, *target)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityNote, Op: "reorder", ID: draggedID})
	return dragged, target, nil
}

// ApplyEnrichment stores AI results. It is the only writer of the AI fields.
func (s *NoteSynchronizer) ApplyEnrichment(ctx context.Context, owner, id string, tags []string, summary *string, at time.Time) (*models.Note, error) {
	note, err := s.store.SaveEnrichment(ctx, owner, id, tags, summary, at)
	if err != nil {
		return nil, persistErr("save enrichment", err, ErrNoteNotFound)
	}
	s.cache.upsert(owner, *note)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityNote, Op: "enrich", ID: id})
	return note, nil
}

func (s *NoteSynchronizer) defaultColor(ctx context.Context, owner string) string {
	settings, err := s.store.GetSettings(ctx, owner)
	if err != nil || settings.DefaultColor == "" {
		return models.DefaultNoteColor
	}
	return settings.DefaultColor
}

func (s *NoteSynchronizer) mirrorTags(ctx context.Context, owner string, note *models.Note) {
	if err := s.store.ReplaceNoteTags(ctx, owner, note.ID, note.Tags); err != nil {
		// The note itself is committed; the tag table is a derived index.
		config.Logger.Warnw("mirror note tags failed", "error", err, "owner", owner, "noteID", note.ID)
	}
}
