// Package api wires the HTTP surface of the Agora forum: routing, cookie
// sessions and middleware around the forum service.
package api

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agorabbs/agora/api/auth"
	"github.com/agorabbs/agora/api/handler"
	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/forum"
)

// Server is the Agora HTTP server.
type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	svc        *forum.Service
	sessionKey string
}

// New creates the API server.
func New(cfg *config.Config, svc *forum.Service, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	sessionKey := cfg.SessionKey
	if sessionKey == "" {
		sessionKey = uuid.NewString()
		log.Warn("no session_key configured, using a random key; sessions will not survive restarts")
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        cfg,
		ginEngine:  gin.Default(),
		svc:        svc,
		sessionKey: sessionKey,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.sessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("agora_session", store))
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()

	h := handler.New(s.svc)

	api := s.ginEngine.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	api.GET("/topics", h.Topics)
	api.GET("/topics/random", h.RandomTopics)
	api.GET("/topics/:id/messages", h.Messages)

	protected := api.Group("/")
	protected.Use(auth.RequireAuth())
	protected.POST("/topics", h.CreateTopic)
	protected.POST("/topics/:id/messages", h.AddMessage)

	s.setupAdminRoutes(h)
}

func (s *Server) setupAdminRoutes(h *handler.Handler) {
	admin := handler.NewAdmin(h)

	adminGroup := s.ginEngine.Group("/api/admin")
	adminGroup.Use(auth.RequireAuth(), auth.RequireAdmin())

	adminGroup.GET("/users", admin.Users)
	adminGroup.PUT("/users/:username/credentials", admin.ChangeCredentials)
	adminGroup.DELETE("/topics/:id", admin.DeleteTopic)
	adminGroup.POST("/topics/:id/hide", admin.HideTopic)
	adminGroup.PUT("/messages/:id", admin.EditMessage)
	adminGroup.POST("/messages/:id/hide", admin.HideMessage)
	adminGroup.POST("/messages/:id/show", admin.ShowMessage)
	adminGroup.GET("/logs", admin.Logs)
	adminGroup.GET("/logs/export", admin.ExportLogs)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run starts the HTTP server on the configured listen address.
func (s *Server) Run() error {
	return s.ginEngine.Run(s.cfg.Listen)
}
