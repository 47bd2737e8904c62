package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/services"
)

type TaskController struct {
	tasks *services.TaskSynchronizer
}

func NewTaskController(tasks *services.TaskSynchronizer) *TaskController {
	return &TaskController{tasks: tasks}
}

// ListTasks supports ?note_id= and ?completed= filters.
func (tc *TaskController) ListTasks(c *gin.Context) {
	var filter services.TaskFilter
	if noteID, ok := c.GetQuery("note_id"); ok {
		filter.NoteID = &noteID
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be a boolean"})
			return
		}
		filter.Completed = &completed
	}

	tasks, err := tc.tasks.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := tc.tasks.Create(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := tc.tasks.Update(c.Request.Context(), ownerID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	if err := tc.tasks.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
