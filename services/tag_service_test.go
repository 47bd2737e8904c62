package services

import (
	"context"
	"testing"
	"time"

	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTags(t *testing.T) {
	notes := newTestNotes(t, newTestStore(t))
	tags := NewTagService(notes)
	ctx := context.Background()

	a, err := notes.Create(ctx, "u", &models.CreateNoteRequest{Tags: []string{"work", "ideas"}})
	require.NoError(t, err)
	_, err = notes.Create(ctx, "u", &models.CreateNoteRequest{Tags: []string{"work"}})
	require.NoError(t, err)
	_, err = notes.ApplyEnrichment(ctx, "u", a.ID, []string{"work", "roadmap"}, nil, time.Now())
	require.NoError(t, err)
	_, err = notes.Create(ctx, "other", &models.CreateNoteRequest{Tags: []string{"work"}})
	require.NoError(t, err)

	got, err := tags.ListTags(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []models.TagCount{
		{Name: "work", Count: 2},
		{Name: "ideas", Count: 1},
		{Name: "roadmap", Count: 1, AI: true},
	}, got)
}
