package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/services"
)

type TagController struct {
	tags *services.TagService
}

func NewTagController(tags *services.TagService) *TagController {
	return &TagController{tags: tags}
}

func (tc *TagController) ListTags(c *gin.Context) {
	tags, err := tc.tags.ListTags(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
