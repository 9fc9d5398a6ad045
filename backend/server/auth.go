package server

import (
	"errors"
	"net/http"
	"strings"

	"citywatch/api"
	"citywatch/backend/auth"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.LoginEndpoint, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not read JSON input"})
		return
	}

	resp, err := h.auth.LogIn(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid credentials"})
			return
		}
		log.Errorf("Login failed for %s: %v", creds.Username, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "login failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Signup(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.SignupEndpoint, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not read JSON input"})
		return
	}

	resp, err := h.auth.SignUp(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "user already exists"})
			return
		}
		log.Errorf("Signup failed for %s: %v", creds.Username, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "signup failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// OptionalAuth attributes the request to a user when a valid Bearer token is
// present and lets it through anonymously otherwise. Problem submission
// stays open; identity is attached when the client proves one.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if username, err := h.auth.ValidateToken(parts[1]); err == nil {
					c.Set("username", username)
				}
			}
		}
		c.Next()
	}
}
