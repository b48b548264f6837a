// Package auth provides the session middleware for the Agora API. Identity
// lives in an encrypted cookie session written by the login handler.
package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/agorabbs/agora/api/models"
)

// Session keys for the authenticated user.
const (
	SessionKeyUsername = "user_username"
	SessionKeyIsAdmin  = "user_is_admin"
)

// SessionUser returns the user stored in the cookie session, or nil.
func SessionUser(c *gin.Context) *models.User {
	session := sessions.Default(c)
	username, ok := session.Get(SessionKeyUsername).(string)
	if !ok || username == "" {
		return nil
	}
	isAdmin, _ := session.Get(SessionKeyIsAdmin).(bool)
	return &models.User{
		Username: username,
		IsAdmin:  isAdmin,
	}
}

// RequireAuth rejects requests without an authenticated session and exposes
// the user on the gin context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := SessionUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
