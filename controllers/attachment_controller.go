package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/services"
)

type AttachmentController struct {
	attachments *services.AttachmentService
}

func NewAttachmentController(attachments *services.AttachmentService) *AttachmentController {
	return &AttachmentController{attachments: attachments}
}

// Upload accepts a multipart "file" field.
func (ac *AttachmentController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxAttachmentBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > services.MaxAttachmentBytes {
		respondError(c, services.ErrAttachmentTooLarge)
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	a, err := ac.attachments.Upload(c.Request.Context(), ownerID(c), c.Param("id"), header.Filename, header.Header.Get("Content-Type"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ac *AttachmentController) List(c *gin.Context) {
	list, err := ac.attachments.List(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": list})
}

func (ac *AttachmentController) Delete(c *gin.Context) {
	if err := ac.attachments.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Serve is the public read path for uploaded files.
func (ac *AttachmentController) Serve(c *gin.Context) {
	data, contentType, err := ac.attachments.Open(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
