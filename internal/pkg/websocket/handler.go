package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models"
)

// ScopeResolver computes an actor's report visibility
type ScopeResolver interface {
	ReportScope(ctx context.Context, actor models.Actor) (models.ReportScope, error)
}

// ActorFunc extracts the authenticated actor from a request
type ActorFunc func(c *gin.Context) (models.Actor, bool)

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	scopes   ScopeResolver
	actor    ActorFunc
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, scopes ScopeResolver, actor ActorFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		scopes:   scopes,
		actor:    actor,
		upgrader: newUpgrader(nil),
		logger:   logger,
	}
}

// WithAllowedOrigins restricts browser handshakes to the given origins
func (h *Handler) WithAllowedOrigins(origins []string) *Handler {
	h.upgrader = newUpgrader(origins)
	return h
}

// ConnectedClients returns the number of open activity subscriptions
func (h *Handler) ConnectedClients() int {
	return h.hub.ClientsCount()
}

// HandleConnection godoc
// @Summary Subscribe to report activity
// @Description Upgrades to a WebSocket that streams report events visible to the caller
// @Tags activity
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	scope, err := h.scopes.ReportScope(c.Request.Context(), actor)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", actor.ID).Msg("Failed to resolve report scope")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve report scope"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", actor.ID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, actor, scope, h.logger)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", actor.ID).
		Str("scope", string(scope.Kind)).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
