// internal/agent/chat/handler.go
package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/agent/stream"
	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
)

// Completer is the agent call behind POST /api/chat.
type Completer interface {
	Complete(ctx context.Context, message string) (stream.Reply, error)
}

type Handler struct {
	completer  Completer
	ready      func(ctx context.Context) error
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the chat endpoints. ready backs /ready; nil means always ready.
func NewHandler(completer Completer, ready func(ctx context.Context) error, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{"component": "chat-handler"})
	return &Handler{
		completer:  completer,
		ready:      ready,
		errHandler: apperrors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

// NewRouter registers the chat, probe and metrics routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", h.Chat)
	}
	return router
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.completer.Complete(c.Request.Context(), req.Message)
	if err == nil {
		c.JSON(http.StatusOK, reply)
		return
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(upstream.Status, gin.H{"error": "agent error", "details": upstream.Details})
		return
	}

	stdErr := h.errHandler.Handle("chat request failed", err, map[string]interface{}{
		"path": c.FullPath(),
	})
	if stdErr.Code == apperrors.ErrCodeConfigurationMissing {
		c.JSON(apperrors.HTTPStatus(stdErr.Code), gin.H{"error": "agent configuration missing"})
		return
	}
	c.JSON(apperrors.HTTPStatus(stdErr.Code), gin.H{
		"error":   "failed to process chat request",
		"details": stdErr.Details,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) Ready(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
