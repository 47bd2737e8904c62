package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/services"
)

type NoteController struct {
	notes    *services.NoteSynchronizer
	enricher *services.EnrichmentScheduler
}

func NewNoteController(notes *services.NoteSynchronizer, enricher *services.EnrichmentScheduler) *NoteController {
	return &NoteController{notes: notes, enricher: enricher}
}

// ListNotes supports ?archived=true, ?type=, ?tag= and ?q= filters.
func (nc *NoteController) ListNotes(c *gin.Context) {
	filter := services.NoteFilter{
		Type:  models.NoteType(c.Query("type")),
		Tag:   c.Query("tag"),
		Query: c.Query("q"),
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "archived must be a boolean"})
			return
		}
		filter.Archived = archived
	}
	if filter.Type != "" && !filter.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown note type"})
		return
	}

	notes, err := nc.notes.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (nc *NoteController) GetNote(c *gin.Context) {
	note, err := nc.notes.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (nc *NoteController) CreateNote(c *gin.Context) {
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	note, err := nc.notes.Create(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (nc *NoteController) UpdateNote(c *gin.Context) {
	var req models.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	note, err := nc.notes.Update(c.Request.Context(), ownerID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (nc *NoteController) DeleteNote(c *gin.Context) {
	if err := nc.notes.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderNotes swaps the grid positions of the dragged tile and the drop target.
func (nc *NoteController) ReorderNotes(c *gin.Context) {
	var req models.ReorderNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	dragged, target, err := nc.notes.Reorder(c.Request.Context(), ownerID(c), req.DraggedID, req.TargetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": []*models.Note{dragged, target}})
}

// EnrichNote re-runs enrichment right away.
func (nc *NoteController) EnrichNote(c *gin.Context) {
	note, err := nc.enricher.Trigger(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}
