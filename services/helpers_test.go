package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := config.OpenDB(config.Config{Environment: "test", DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGormStore(db)
}

// tickingClock returns a strictly increasing time on every call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestNotes(t *testing.T, s store.Store) *NoteSynchronizer {
	t.Helper()
	notes := NewNoteSynchronizer(s, nil)
	notes.now = tickingClock()
	return notes
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

var errRejected = errors.New("permission denied")

// rejectingStore fails every write it is told to fail.
type rejectingStore struct {
	store.Store
	rejectCreateNote bool
	rejectUpdateNote bool
	rejectCreateTask bool
}

func (r *rejectingStore) CreateNote(ctx context.Context, note *models.Note) error {
	if r.rejectCreateNote {
		return errRejected
	}
	return r.Store.CreateNote(ctx, note)
}

func (r *rejectingStore) UpdateNote(ctx context.Context, owner, id string, req *models.UpdateNoteRequest) (*models.Note, error) {
	if r.rejectUpdateNote {
		return nil, errRejected
	}
	return r.Store.UpdateNote(ctx, owner, id, req)
}

func (r *rejectingStore) CreateTask(ctx context.Context, task *models.Task) error {
	if r.rejectCreateTask {
		return errRejected
	}
	return r.Store.CreateTask(ctx, task)
}

// recordingFeed captures published events.
type recordingFeed struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (f *recordingFeed) Publish(_ context.Context, ev ChangeEvent) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
}

func (f *recordingFeed) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Entity + ":" + ev.Op
	}
	return out
}

// stallingStore holds the first list call open after its snapshot is taken,
// so a test can commit a write in between.
type stallingStore struct {
	store.Store
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func newStallingStore(t *testing.T) *stallingStore {
	return &stallingStore{
		Store:   newTestStore(t),
		listed:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *stallingStore) stall() {
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
}

func (s *stallingStore) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	notes, err := s.Store.ListNotes(ctx, owner)
	s.stall()
	return notes, err
}

func (s *stallingStore) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	tasks, err := s.Store.ListTasks(ctx, owner)
	s.stall()
	return tasks, err
}
