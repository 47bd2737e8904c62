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
)

const voicePlaceholder = "(voice recording, transcript not available)"

type EnrichmentOptions struct {
	SettleDelay      time.Duration
	MinContentLength int
	SummaryBudget    int
}

func EnrichmentOptionsFromConfig(conf config.Config) EnrichmentOptions {
	return EnrichmentOptions{
		SettleDelay:      conf.SettleDelay(),
		MinContentLength: conf.EnrichMinContentLength,
		SummaryBudget:    conf.EnrichSummaryBudget,
	}
}

// EnrichmentScheduler runs enrichment for a note once edits have settled.
// At most one timer is pending per note; a newer edit replaces it.
type EnrichmentScheduler struct {
	notes *NoteSynchronizer
	tasks *TaskSynchronizer
	store store.Store
	ai    *AIClient
	opts  EnrichmentOptions
	now   func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
	baseCtx context.Context
}

// NewEnrichmentScheduler hooks the scheduler into note saves and deletes.
func NewEnrichmentScheduler(notes *NoteSynchronizer, tasks *TaskSynchronizer, s store.Store, ai *AIClient, opts EnrichmentOptions) *EnrichmentScheduler {
	sched := &EnrichmentScheduler{
		notes:   notes,
		tasks:   tasks,
		store:   s,
		ai:      ai,
		opts:    opts,
		now:     time.Now,
		timers:  make(map[string]*time.Timer),
		baseCtx: context.Background(),
	}
	notes.OnSaved(sched.noteSaved)
	notes.OnDeleted(sched.Cancel)
	return sched
}

func timerKey(owner, id string) string {
	return owner + "/" + id
}

// eligible reports whether a saved note qualifies for automatic enrichment.
func (e *EnrichmentScheduler) eligible(note *models.Note) bool {
	if note.AIProcessedAt != nil {
		return false
	}
	return len(strings.TrimSpace(note.Content)) > e.opts.MinContentLength
}

func (e *EnrichmentScheduler) noteSaved(owner string, note models.Note) {
	if !e.eligible(&note) {
		return
	}
	e.Schedule(owner, note.ID)
}

// Schedule arms the settle timer for a note, replacing any pending one.
func (e *EnrichmentScheduler) Schedule(owner, id string) {
	key := timerKey(owner, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if old, ok := e.timers[key]; ok && old.Stop() {
		e.wg.Done()
	}

	e.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(e.opts.SettleDelay, func() {
		defer e.wg.Done()

		e.mu.Lock()
		if e.timers[key] == t {
			delete(e.timers, key)
		}
		e.mu.Unlock()

		if _, err := e.run(e.baseCtx, owner, id, false); err != nil {
			config.Logger.Warnw("enrichment failed", "error", err, "owner", owner, "noteID", id)
		}
	})
	e.timers[key] = t

	config.Logger.Debugw("enrichment scheduled", "owner", owner, "noteID", id, "delay", e.opts.SettleDelay)
}

// Cancel drops the pending timer for a note, if any.
func (e *EnrichmentScheduler) Cancel(owner, id string) {
	key := timerKey(owner, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[key]; ok {
		delete(e.timers, key)
		if t.Stop() {
			e.wg.Done()
		}
	}
}

// Pending reports whether a settle timer is armed for the note.
func (e *EnrichmentScheduler) Pending(owner, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.timers[timerKey(owner, id)]
	return ok
}

// Trigger enriches a note now, whatever its previous state.
func (e *EnrichmentScheduler) Trigger(ctx context.Context, owner, id string) (*models.Note, error) {
	key := timerKey(owner, id)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil, ErrSchedulerStopped
	}
	if t, ok := e.timers[key]; ok {
		delete(e.timers, key)
		if t.Stop() {
			e.wg.Done()
		}
	}
	e.wg.Add(1)
	e.mu.Unlock()

	defer e.wg.Done()
	return e.run(ctx, owner, id, true)
}

// Stop cancels every pending timer. Runs already in flight finish normally.
func (e *EnrichmentScheduler) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	for key, t := range e.timers {
		if t.Stop() {
			e.wg.Done()
		}
		delete(e.timers, key)
	}
}

// Wait blocks until pending timers and in-flight runs are done.
func (e *EnrichmentScheduler) Wait() {
	e.wg.Wait()
}

func (e *EnrichmentScheduler) run(ctx context.Context, owner, id string, manual bool) (*models.Note, error) {
	note, err := e.notes.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			config.Logger.Debugw("enrichment target gone", "owner", owner, "noteID", id)
		}
		return nil, err
	}

	if !manual {
		if !e.eligible(note) {
			return note, nil
		}
		settings, err := e.store.GetSettings(ctx, owner)
		if err != nil {
			return nil, &PersistenceError{Op: "load settings", Err: err}
		}
		if !settings.AutoEnrich {
			return note, nil
		}
	}

	item := &models.AIQueueItem{UserID: owner, NoteID: id, Status: models.QueueStatusPending}
	if err := e.store.EnqueueAI(ctx, item); err != nil {
		config.Logger.Warnw("record enrichment run failed", "error", err, "noteID", id)
		item = nil
	}
	e.markQueue(ctx, item, models.QueueStatusProcessing, nil)

	input := e.input(ctx, note)
	result, aiErr := e.ai.Analyze(ctx, input, note.NoteType)
	if aiErr != nil {
		if !errors.Is(aiErr, ErrCompletionUnavailable) {
			config.Logger.Warnw("completion failed, using heuristic", "error", aiErr, "noteID", id)
		}
		fallback := HeuristicEnrichment(input, e.opts.SummaryBudget)
		result = &fallback
	}

	updated, err := e.notes.ApplyEnrichment(ctx, owner, id, result.Tags, result.Summary, e.now())
	if err != nil {
		e.markQueue(ctx, item, models.QueueStatusFailed, err)
		return nil, err
	}

	titles, err := e.newTaskTitles(ctx, owner, id, result.Tasks)
	if err == nil {
		_, err = e.tasks.CreateFromNote(ctx, owner, id, titles)
	}
	if err != nil {
		config.Logger.Warnw("create extracted tasks failed", "error", err, "noteID", id)
	}

	e.markQueue(ctx, item, models.QueueStatusCompleted, aiErr)
	config.Logger.Infow("note enriched",
		"owner", owner,
		"noteID", id,
		"tags", len(result.Tags),
		"tasks", len(titles),
		"heuristic", aiErr != nil,
	)
	return updated, nil
}

// input picks the text the completion service sees for each note type.
func (e *EnrichmentScheduler) input(ctx context.Context, note *models.Note) string {
	switch note.NoteType {
	case models.NoteTypeImage:
		if src := strings.TrimSpace(note.Content); src != "" {
			caption, err := e.ai.DescribeImage(ctx, src)
			if err == nil {
				return caption
			}
			if !errors.Is(err, ErrCompletionUnavailable) {
				config.Logger.Warnw("image caption failed", "error", err, "noteID", note.ID)
			}
		}
		return note.DisplayTitle()
	case models.NoteTypeVoice:
		return note.DisplayTitle() + " " + voicePlaceholder
	case models.NoteTypeLink:
		return note.DisplayTitle() + "\n" + note.Content
	default:
		return note.Content
	}
}

// newTaskTitles drops phrases that already exist as tasks of the note.
func (e *EnrichmentScheduler) newTaskTitles(ctx context.Context, owner, noteID string, phrases []string) ([]string, error) {
	if len(phrases) == 0 {
		return nil, nil
	}
	existing, err := e.tasks.List(ctx, owner, TaskFilter{NoteID: &noteID})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[strings.ToLower(t.Title)] = true
	}
	var out []string
	for _, p := range phrases {
		if !seen[strings.ToLower(p)] {
			seen[strings.ToLower(p)] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (e *EnrichmentScheduler) markQueue(ctx context.Context, item *models.AIQueueItem, status models.QueueStatus, runErr error) {
	if item == nil {
		return
	}
	item.Status = status
	switch status {
	case models.QueueStatusProcessing:
		item.Attempts++
	case models.QueueStatusCompleted, models.QueueStatusFailed:
		at := e.now()
		item.ProcessedAt = &at
	}
	if runErr != nil {
		msg := runErr.Error()
		item.LastError = &msg
	}
	if err := e.store.UpdateQueueItem(ctx, item); err != nil {
		config.Logger.Warnw("update enrichment run failed", "error", err, "queueID", item.ID)
	}
}
