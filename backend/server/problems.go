package server

import (
	"errors"
	"net/http"

	"citywatch/api"
	"citywatch/backend/store"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProblems(c *gin.Context) {
	list, err := h.problems.List(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to list problems: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list problems"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateProblem(c *gin.Context) {
	var input api.ProblemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.ProblemsEndpoint, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not read JSON input"})
		return
	}

	p, err := h.problems.Create(c.Request.Context(), &input, c.GetString("username"))
	if err != nil {
		log.Errorf("Failed to save problem: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save the problem"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpvoteProblem(c *gin.Context) {
	id := c.Param("id")
	p, err := h.problems.Upvote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "problem not found"})
			return
		}
		log.Errorf("Failed to upvote problem %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to upvote the problem"})
		return
	}
	c.JSON(http.StatusOK, p)
}
