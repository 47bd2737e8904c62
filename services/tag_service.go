package services

import (
	"context"
	"sort"

	"github.com/mkingstonsqr/tile-notes/models"
)

// TagService derives the tag sidebar from the owner's notes.
type TagService struct {
	notes *NoteSynchronizer
}

func NewTagService(notes *NoteSynchronizer) *TagService {
	return &TagService{notes: notes}
}

// ListTags counts, per distinct tag, the active notes carrying it as a user or AI tag.
func (s *TagService) ListTags(ctx context.Context, owner string) ([]models.TagCount, error) {
	notes, err := s.notes.List(ctx, owner, NoteFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]*models.TagCount)
	for i := range notes {
		seen := make(map[string]bool)
		for _, tag := range notes[i].Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tc := entry(counts, tag)
			tc.Count++
			tc.AI = false
		}
		for _, tag := range notes[i].AITags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tc, ok := counts[tag]
			if !ok {
				tc = entry(counts, tag)
				tc.AI = true
			}
			tc.Count++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func entry(counts map[string]*models.TagCount, tag string) *models.TagCount {
	tc, ok := counts[tag]
	if !ok {
		tc = &models.TagCount{Name: tag}
		counts[tag] = tc
	}
	return tc
}
