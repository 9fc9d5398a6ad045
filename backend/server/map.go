package server

import (
	"net/http"

	"citywatch/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetMap(c *gin.Context) {
	var args api.MapArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.MapEndpoint, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not read JSON input"})
		return
	}

	markers, err := h.problems.Map(c.Request.Context(), &args)
	if err != nil {
		log.Errorf("Failed to build map: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to build the map"})
		return
	}
	c.JSON(http.StatusOK, markers)
}
