package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agorabbs/agora/api/models"
)

// AdminHandler serves the moderation and admin-panel endpoints. All routes
// are mounted behind RequireAuth and RequireAdmin.
type AdminHandler struct {
	*Handler
}

// NewAdmin creates the admin handler on top of the public one.
func NewAdmin(h *Handler) *AdminHandler {
	return &AdminHandler{Handler: h}
}

// Users lists all accounts for the admin panel, passwords redacted.
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.svc.AllUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": models.ToUsers(users)})
}

// ChangeCredentials resets a user's username and/or password. Empty fields
// keep the existing values, which is how the admin panel resets a password
// without renaming.
func (h *AdminHandler) ChangeCredentials(c *gin.Context) {
	var req struct {
		NewUsername string `json:"newUsername"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.ChangeCredentials(c.Request.Context(), c.Param("username"), req.NewUsername, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteTopic removes a topic and all of its messages.
func (h *AdminHandler) DeleteTopic(c *gin.Context) {
	if err := h.svc.DeleteTopic(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HideTopic soft-deletes a topic without touching its messages.
func (h *AdminHandler) HideTopic(c *gin.Context) {
	if err := h.svc.HideTopic(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EditMessage overwrites a message's text.
func (h *AdminHandler) EditMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if err := h.svc.EditMessage(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HideMessage excludes a message from non-admin reads.
func (h *AdminHandler) HideMessage(c *gin.Context) {
	if err := h.svc.HideMessage(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ShowMessage makes a hidden message visible again.
func (h *AdminHandler) ShowMessage(c *gin.Context) {
	if err := h.svc.ShowMessage(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logs returns the activity log, optionally filtered by username.
func (h *AdminHandler) Logs(c *gin.Context) {
	logs, err := h.svc.Logs(c.Request.Context(), c.Query("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// ExportLogs downloads the activity log as an XML document.
func (h *AdminHandler) ExportLogs(c *gin.Context) {
	xml, err := h.svc.ExportLogsXML(c.Request.Context(), c.Query("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="logs.xml"`)
	c.Data(http.StatusOK, "application/xml", []byte(xml))
}
