package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/middleware"
	"github.com/mkingstonsqr/tile-notes/services"
	"github.com/mkingstonsqr/tile-notes/store"
)

func ownerID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// respondError maps service errors onto HTTP statuses. Store rejections carry
// their raw message so the client can show it.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, services.ErrAttachmentTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrSchedulerStopped):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		config.Logger.Errorw("request failed",
			"error", err,
			"path", c.FullPath(),
			"uid", ownerID(c),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
