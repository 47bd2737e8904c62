package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/controllers"
	"github.com/mkingstonsqr/tile-notes/middleware"
	"github.com/mkingstonsqr/tile-notes/services"
)

func RegisterRoutes(r *gin.Engine, svc *services.Services) {
	authController := controllers.NewAuthController(svc.Auth)
	userController := controllers.NewUserController(svc.Auth, svc.Notes, svc.Tasks)
	noteController := controllers.NewNoteController(svc.Notes, svc.Enricher)
	taskController := controllers.NewTaskController(svc.Tasks)
	tagController := controllers.NewTagController(svc.Tags)
	calendarController := controllers.NewCalendarController(svc.Calendar)
	settingsController := controllers.NewSettingsController(svc.Store)
	attachmentController := controllers.NewAttachmentController(svc.Attachments)

	public := r.Group("/api/v1")
	{
		public.POST("/auth/signup", authController.SignUp)
		public.POST("/auth/signin", authController.SignIn)
	}

	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(svc.Auth))
	{
		private.GET("/notes", noteController.ListNotes)
		private.POST("/notes", noteController.CreateNote)
		private.POST("/notes/reorder", noteController.ReorderNotes)
		private.GET("/notes/:id", noteController.GetNote)
		private.PATCH("/notes/:id", noteController.UpdateNote)
		private.DELETE("/notes/:id", noteController.DeleteNote)
		private.POST("/notes/:id/enrich", noteController.EnrichNote)
		private.POST("/notes/:id/attachments", attachmentController.Upload)
		private.GET("/notes/:id/attachments", attachmentController.List)
		private.DELETE("/attachments/:id", attachmentController.Delete)

		private.GET("/tasks", taskController.ListTasks)
		private.POST("/tasks", taskController.CreateTask)
		private.PATCH("/tasks/:id", taskController.UpdateTask)
		private.DELETE("/tasks/:id", taskController.DeleteTask)

		private.GET("/tags", tagController.ListTags)
		private.GET("/calendar", calendarController.GetMonth)

		private.GET("/settings", settingsController.GetSettings)
		private.PUT("/settings", settingsController.UpdateSettings)

		private.GET("/user", userController.GetUser)
		private.DELETE("/user", userController.DeleteUser)
	}

	// Uploaded files are publicly readable once stored.
	r.GET("/files/*path", attachmentController.Serve)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
