package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/mkingstonsqr/tile-notes/utils"
)

// TaskFilter narrows List results. Nil fields match everything.
type TaskFilter struct {
	NoteID    *string
	Completed *bool
}

func (f TaskFilter) match(t *models.Task) bool {
	if f.NoteID != nil && (t.NoteID == nil || *t.NoteID != *f.NoteID) {
		return false
	}
	if f.Completed != nil && t.IsCompleted != *f.Completed {
		return false
	}
	return true
}

// tasksBefore lists open tasks first, newest first within each group.
func tasksBefore(a, b *models.Task) bool {
	if a.IsCompleted != b.IsCompleted {
		return !a.IsCompleted
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// TaskSynchronizer is the task counterpart of NoteSynchronizer.
type TaskSynchronizer struct {
	store store.Store
	feed  ChangeFeed
	cache *ownerCache[models.Task]
	now   func() time.Time
}

func NewTaskSynchronizer(s store.Store, feed ChangeFeed) *TaskSynchronizer {
	if feed == nil {
		feed = nopFeed{}
	}
	return &TaskSynchronizer{
		store: s,
		feed:  feed,
		cache: newOwnerCache(func(t *models.Task) string { return t.ID }, tasksBefore),
		now:   time.Now,
	}
}

func (s *TaskSynchronizer) load(ctx context.Context, owner string) ([]models.Task, error) {
	if tasks, ok := s.cache.get(owner); ok {
		return tasks, nil
	}
	version := s.cache.version(owner)
	tasks, err := s.store.ListTasks(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !s.cache.set(owner, tasks, version) {
		// A write landed while the snapshot was in flight; serve a fresh one uncached.
		fresh, err := s.store.ListTasks(ctx, owner)
		if err != nil {
			return nil, err
		}
		return s.cache.ordered(fresh), nil
	}
	tasks, _ = s.cache.get(owner)
	return tasks, nil
}

func (s *TaskSynchronizer) Invalidate(owner string) {
	s.cache.invalidate(owner)
}

func (s *TaskSynchronizer) List(ctx context.Context, owner string, filter TaskFilter) ([]models.Task, error) {
	tasks, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := tasks[:0]
	for i := range tasks {
		if filter.match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out, nil
}

func (s *TaskSynchronizer) Get(ctx context.Context, owner, id string) (*models.Task, error) {
	tasks, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, ErrTaskNotFound
}

func (s *TaskSynchronizer) Create(ctx context.Context, owner string, req *models.CreateTaskRequest) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	if req.NoteID != nil {
		if _, err := s.store.GetNote(ctx, owner, *req.NoteID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, invalid(errors.New("note_id does not reference one of your notes"))
			}
			return nil, &PersistenceError{Op: "create task", Err: err}
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	task := &models.Task{
		ID:          utils.GenerateID(),
		UserID:      owner,
		NoteID:      req.NoteID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Reminder:    req.Reminder,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insert(ctx, owner, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateFromNote inserts one open, medium-priority task per title, linked to noteID.
// It stops at the first rejected write and returns the tasks created so far.
func (s *TaskSynchronizer) CreateFromNote(ctx context.Context, owner, noteID string, titles []string) ([]models.Task, error) {
	created := make([]models.Task, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		id := noteID
		now := s.now()
		task := &models.Task{
			ID:        utils.GenerateID(),
			UserID:    owner,
			NoteID:    &id,
			Title:     title,
			Priority:  models.PriorityMedium,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.insert(ctx, owner, task); err != nil {
			return created, err
		}
		created = append(created, *task)
	}
	return created, nil
}

func (s *TaskSynchronizer) insert(ctx context.Context, owner string, task *models.Task) error {
	if err := s.store.CreateTask(ctx, task); err != nil {
		config.Logger.Errorw("create task rejected", "error", err, "owner", owner)
		return persistErr("create task", err, ErrTaskNotFound)
	}
	s.cache.upsert(owner, *task)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityTask, Op: "create", ID: task.ID})
	return nil
}

func (s *TaskSynchronizer) Update(ctx context.Context, owner, id string, req *models.UpdateTaskRequest) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	task, err := s.store.UpdateTask(ctx, owner, id, req)
	if err != nil {
		config.Logger.Errorw("update task rejected", "error", err, "owner", owner, "taskID", id)
		return nil, persistErr("update task", err, ErrTaskNotFound)
	}

	s.cache.upsert(owner, *task)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityTask, Op: "update", ID: id})
	return task, nil
}

func (s *TaskSynchronizer) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteTask(ctx, owner, id); err != nil {
		config.Logger.Errorw("delete task rejected", "error", err, "owner", owner, "taskID", id)
		return persistErr("delete task", err, ErrTaskNotFound)
	}

	s.cache.remove(owner, id)
	s.feed.Publish(ctx, ChangeEvent{Owner: owner, Entity: EntityTask, Op: "delete", ID: id})
	return nil
}
