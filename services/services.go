package services

import (
	"github.com/hack-pad/hackpadfs"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/store"
)

// Services is the wired application graph shared by the HTTP layer.
type Services struct {
	Store       store.Store
	Notes       *NoteSynchronizer
	Tasks       *TaskSynchronizer
	Enricher    *EnrichmentScheduler
	Tags        *TagService
	Calendar    *CalendarService
	Attachments *AttachmentService
	Auth        *AuthService
}

// New wires every service. feed may be nil when no change feed is configured.
func New(conf config.Config, s store.Store, feed ChangeFeed, ai *AIClient, fsys hackpadfs.FS) *Services {
	notes := NewNoteSynchronizer(s, feed)
	tasks := NewTaskSynchronizer(s, feed)

	// Deleting a note detaches its tasks in the store.
	notes.OnDeleted(func(owner, _ string) { tasks.Invalidate(owner) })

	return &Services{
		Store:       s,
		Notes:       notes,
		Tasks:       tasks,
		Enricher:    NewEnrichmentScheduler(notes, tasks, s, ai, EnrichmentOptionsFromConfig(conf)),
		Tags:        NewTagService(notes),
		Calendar:    NewCalendarService(notes, tasks),
		Attachments: NewAttachmentService(s, notes, fsys, conf.StoragePublicURL),
		Auth:        NewAuthService(s, conf.JWTSecret),
	}
}

// Shutdown cancels pending enrichment and waits for runs in flight.
func (s *Services) Shutdown() {
	s.Enricher.Stop()
	s.Enricher.Wait()
}
