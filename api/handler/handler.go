// Package handler implements the HTTP handlers of the Agora API. Business
// failures surface as JSON error payloads; only storage failures become 500s.
package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/agorabbs/agora/api/auth"
	"github.com/agorabbs/agora/api/models"
	"github.com/agorabbs/agora/forum"
)

// Handler serves the public forum endpoints.
type Handler struct {
	svc *forum.Service
}

// New creates a handler on top of the forum service.
func New(svc *forum.Service) *Handler {
	return &Handler{svc: svc}
}

// fail maps a forum error to an HTTP status and JSON error payload.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forum.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrUserNotFound),
		errors.Is(err, forum.ErrTopicNotFound),
		errors.Is(err, forum.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. Self-registration never grants admin.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password, false); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Login checks the credentials and opens a cookie session.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(auth.SessionKeyUsername, user.Username)
	session.Set(auth.SessionKeyIsAdmin, user.IsAdmin)
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": models.ToUser(user)})
}

// Logout clears both the forum session slot and the cookie session.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Error("failed to clear session", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the current session user, or null.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": auth.SessionUser(c)})
}

// Topics lists all visible topics.
func (h *Handler) Topics(c *gin.Context) {
	topics, err := h.svc.Topics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// RandomTopics returns a random sample of visible topics.
func (h *Handler) RandomTopics(c *gin.Context) {
	var query struct {
		Count int `form:"count"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count"})
		return
	}
	topics, err := h.svc.RandomTopics(c.Request.Context(), query.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// CreateTopic creates a topic owned by the authenticated user and returns
// its id so the client can navigate straight to it.
func (h *Handler) CreateTopic(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	user := c.MustGet("user").(*models.User)
	id, err := h.svc.CreateTopic(c.Request.Context(), req.Title, user.Username, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Messages lists the messages of a topic. Admin sessions see hidden
// messages; the filter matches a case-sensitive literal substring.
func (h *Handler) Messages(c *gin.Context) {
	var user *forum.User
	if u := auth.SessionUser(c); u != nil {
		user = &forum.User{Username: u.Username, IsAdmin: u.IsAdmin}
	}
	messages, err := h.svc.Messages(c.Request.Context(), c.Param("id"), c.Query("filter"), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// AddMessage posts a message authored by the authenticated user.
func (h *Handler) AddMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	user := c.MustGet("user").(*models.User)
	id, err := h.svc.AddMessage(c.Request.Context(), c.Param("id"), user.Username, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
