// Package api registers the REST routes of the identity service.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/iam/authn"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/service"
)

// Handler holds the services behind the REST surface.
type Handler struct {
	provider      authn.Provider
	users         *service.Users
	clients       *service.Clients
	notifications *service.Notifications
	log           *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	provider authn.Provider,
	users *service.Users,
	clients *service.Clients,
	notifications *service.Notifications,
	log *logger.Logger,
) *Handler {
	return &Handler{
		provider:      provider,
		users:         users,
		clients:       clients,
		notifications: notifications,
		log:           log.WithComponent("api"),
	}
}

// RegisterRoutes mounts all API routes on the engine under /api.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/refresh", h.refresh)
	auth.POST("/token", h.clientCredentialsToken)
	auth.POST("/register", h.registerWithProvider)

	users := api.Group("/users")
	users.POST("", h.createUser)
	users.GET("", h.findUser)
	users.GET("/:id", h.getUser)
	users.PUT("/:id", h.updateUser)
	users.PUT("/:id/password", h.changePassword)
	users.PUT("/:id/status", h.setUserStatus)
	users.GET("/:id/notifications", h.getNotifications)
	users.PUT("/:id/notifications", h.updateNotifications)

	clients := api.Group("/clients")
	clients.POST("", h.registerClient)
	clients.GET("", h.listClients)
	clients.POST("/validate", h.validateClient)
	clients.GET("/:clientId", h.getClient)
	clients.PUT("/:clientId", h.updateClient)
	clients.PUT("/:clientId/status", h.setClientStatus)
	clients.POST("/:clientId/secret", h.regenerateClientSecret)
}
