package server

import (
	"errors"
	"net/http"

	"citywatch/api"
	"citywatch/backend/media"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no file uploaded"})
		return
	}
	mediaType := c.PostForm("type")

	f, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "upload failed"})
		return
	}
	defer f.Close()

	url, err := h.media.Save(mediaType, fileHeader.Filename, f)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "file too large"})
			return
		}
		log.Errorf("Failed to store upload %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "upload failed"})
		return
	}
	c.JSON(http.StatusOK, api.UploadResponse{URL: url})
}
