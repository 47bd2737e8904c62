package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/services"
)

type UserController struct {
	auth  *services.AuthService
	notes *services.NoteSynchronizer
	tasks *services.TaskSynchronizer
}

func NewUserController(auth *services.AuthService, notes *services.NoteSynchronizer, tasks *services.TaskSynchronizer) *UserController {
	return &UserController{auth: auth, notes: notes, tasks: tasks}
}

func (uc *UserController) GetUser(c *gin.Context) {
	profile, err := uc.auth.Profile(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": models.NewUserResponse(profile)})
}

// DeleteUser removes the account and everything it owns.
func (uc *UserController) DeleteUser(c *gin.Context) {
	uid := ownerID(c)
	if err := uc.auth.DeleteAccount(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	uc.notes.Invalidate(uid)
	uc.tasks.Invalidate(uid)

	config.Logger.Infow("account deleted", "uid", uid)
	c.Status(http.StatusNoContent)
}
