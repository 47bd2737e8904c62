package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
)

type SettingsController struct {
	store store.Store
}

func NewSettingsController(s store.Store) *SettingsController {
	return &SettingsController{store: s}
}

func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.store.GetSettings(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	settings, err := sc.store.GetSettings(ctx, ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	req.ApplyTo(settings)
	if err := sc.store.SaveSettings(ctx, settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
