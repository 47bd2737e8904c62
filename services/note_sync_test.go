package services

import (
	"context"
	"testing"

	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteIDs(notes []models.Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}

func TestCreateNoteDefaults(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		req      models.CreateNoteRequest
		wantType models.NoteType
		title    string
	}{
		{"text without title", models.CreateNoteRequest{Content: "hello"}, models.NoteTypeText, "Untitled Note"},
		{"blank title", models.CreateNoteRequest{Title: strPtr("   ")}, models.NoteTypeText, "Untitled Note"},
		{"voice", models.CreateNoteRequest{NoteType: models.NoteTypeVoice}, models.NoteTypeVoice, "Voice Note"},
		{"image", models.CreateNoteRequest{NoteType: models.NoteTypeImage}, models.NoteTypeImage, "Image Note"},
		{"link", models.CreateNoteRequest{NoteType: models.NoteTypeLink}, models.NoteTypeLink, "Link"},
		{"explicit title", models.CreateNoteRequest{Title: strPtr(" Groceries ")}, models.NoteTypeText, "Groceries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := notes.Create(ctx, "user-1", &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, note.NoteType)
			assert.Equal(t, tt.title, *note.Title)
			assert.Equal(t, models.DefaultNoteColor, note.Color)
			assert.Zero(t, note.PositionX)
			assert.Zero(t, note.PositionY)
			assert.False(t, note.IsArchived)
			assert.Nil(t, note.AIProcessedAt)
		})
	}
}

func TestCreateNoteUsesOwnerDefaultColor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	settings := models.DefaultSettings("user-1")
	settings.DefaultColor = "#fde68a"
	require.NoError(t, s.SaveSettings(ctx, &settings))

	note, err := newTestNotes(t, s).Create(ctx, "user-1", &models.CreateNoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, "#fde68a", note.Color)
}

func TestPinnedNotesSortFirst(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	old, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "old"})
	require.NoError(t, err)
	pinned, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "pinned", IsPinned: true})
	require.NoError(t, err)
	newest, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "newest"})
	require.NoError(t, err)

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{pinned.ID, newest.ID, old.ID}, noteIDs(list))
}

func TestTogglePinKeepsGroupOrder(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	var created []*models.Note
	for _, c := range []string{"a", "b", "c", "d"} {
		n, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: c})
		require.NoError(t, err)
		created = append(created, n)
	}
	a, b, c, d := created[0], created[1], created[2], created[3]

	_, err := notes.Update(ctx, "u", b.ID, &models.UpdateNoteRequest{IsPinned: boolPtr(true)})
	require.NoError(t, err)

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, d.ID, c.ID, a.ID}, noteIDs(list))

	_, err = notes.Update(ctx, "u", b.ID, &models.UpdateNoteRequest{IsPinned: boolPtr(false)})
	require.NoError(t, err)

	list, err = notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{d.ID, c.ID, b.ID, a.ID}, noteIDs(list))
}

func TestRejectedCreateLeavesCacheUntouched(t *testing.T) {
	backing := &rejectingStore{Store: newTestStore(t)}
	notes := newTestNotes(t, backing)
	ctx := context.Background()

	_, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "kept"})
	require.NoError(t, err)

	backing.rejectCreateNote = true
	_, err = notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "lost"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, errRejected)

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Content)
}

func TestRejectedUpdateLeavesCacheUntouched(t *testing.T) {
	backing := &rejectingStore{Store: newTestStore(t)}
	notes := newTestNotes(t, backing)
	ctx := context.Background()

	note, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "original"})
	require.NoError(t, err)

	backing.rejectUpdateNote = true
	_, err = notes.Update(ctx, "u", note.ID, &models.UpdateNoteRequest{Content: strPtr("changed")})
	require.Error(t, err)

	got, err := notes.Get(ctx, "u", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
}

func TestUpdateMissingNote(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	_, err := notes.Update(context.Background(), "u", "nope", &models.UpdateNoteRequest{Content: strPtr("x")})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestUpdateRejectsEmptyRequest(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	_, err := notes.Update(context.Background(), "u", "any", &models.UpdateNoteRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeletedNoteGoneAfterReload(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	keep, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "keep"})
	require.NoError(t, err)
	drop, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "drop"})
	require.NoError(t, err)

	var deleted []string
	notes.OnDeleted(func(owner, id string) { deleted = append(deleted, id) })

	require.NoError(t, notes.Delete(ctx, "u", drop.ID))
	assert.Equal(t, []string{drop.ID}, deleted)

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, noteIDs(list))

	reloaded, err := notes.Reload(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, noteIDs(reloaded))

	assert.ErrorIs(t, notes.Delete(ctx, "u", drop.ID), ErrNoteNotFound)
}

func TestReorderSwapsPositions(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	a, err := notes.Create(ctx, "u", &models.CreateNoteRequest{PositionX: 0, PositionY: 0})
	require.NoError(t, err)
	b, err := notes.Create(ctx, "u", &models.CreateNoteRequest{PositionX: 1, PositionY: 2})
	require.NoError(t, err)

	dragged, target, err := notes.Reorder(ctx, "u", a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dragged.PositionX)
	assert.Equal(t, 2, dragged.PositionY)
	assert.Equal(t, 0, target.PositionX)

	cached, err := notes.Get(ctx, "u", b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.PositionY)

	_, _, err = notes.Reorder(ctx, "u", a.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = notes.Reorder(ctx, "u", a.ID, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestListFilters(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	ctx := context.Background()

	work, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "Quarterly planning", Tags: []string{"work"}})
	require.NoError(t, err)
	link, err := notes.Create(ctx, "u", &models.CreateNoteRequest{NoteType: models.NoteTypeLink, Content: "https://go.dev"})
	require.NoError(t, err)
	archived, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "old plans"})
	require.NoError(t, err)
	_, err = notes.Update(ctx, "u", archived.ID, &models.UpdateNoteRequest{IsArchived: boolPtr(true)})
	require.NoError(t, err)

	byTag, err := notes.List(ctx, "u", NoteFilter{Tag: "work"})
	require.NoError(t, err)
	assert.Equal(t, []string{work.ID}, noteIDs(byTag))

	byType, err := notes.List(ctx, "u", NoteFilter{Type: models.NoteTypeLink})
	require.NoError(t, err)
	assert.Equal(t, []string{link.ID}, noteIDs(byType))

	byQuery, err := notes.List(ctx, "u", NoteFilter{Query: "PLAN"})
	require.NoError(t, err)
	assert.Equal(t, []string{work.ID}, noteIDs(byQuery))

	onlyArchived, err := notes.List(ctx, "u", NoteFilter{Archived: true})
	require.NoError(t, err)
	assert.Equal(t, []string{archived.ID}, noteIDs(onlyArchived))
}

func TestNotesPublishChanges(t *testing.T) {
	feed := &recordingFeed{}
	notes := NewNoteSynchronizer(newTestStore(t), feed)
	ctx := context.Background()

	n, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "x"})
	require.NoError(t, err)
	_, err = notes.Update(ctx, "u", n.ID, &models.UpdateNoteRequest{Content: strPtr("y")})
	require.NoError(t, err)
	require.NoError(t, notes.Delete(ctx, "u", n.ID))

	assert.Equal(t, []string{"note:create", "note:update", "note:delete"}, feed.ops())
}

func TestInvalidateForcesReload(t *testing.T) {
	s := newTestStore(t)
	notes := newTestNotes(t, s)
	ctx := context.Background()

	_, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)

	// Another instance writes straight to the store.
	require.NoError(t, s.CreateNote(ctx, &models.Note{ID: "remote", UserID: "u", NoteType: models.NoteTypeText, Tags: []string{}}))

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	notes.Invalidate("u")
	list, err = notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"remote"}, noteIDs(list))
}

func TestWriteDuringFirstLoadIsKept(t *testing.T) {
	s := newStallingStore(t)
	notes := newTestNotes(t, s)
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() {
		_, err := notes.List(ctx, "u", NoteFilter{})
		loaded <- err
	}()
	<-s.listed

	note, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Content: "written mid-load"})
	require.NoError(t, err)
	close(s.release)
	require.NoError(t, <-loaded)

	list, err := notes.List(ctx, "u", NoteFilter{})
	require.NoError(t, err)
	assert.Contains(t, noteIDs(list), note.ID)

	got, err := notes.Get(ctx, "u", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "written mid-load", got.Content)
}
