package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"go.uber.org/zap"
)

// ChatHandler implements the chat endpoint
type ChatHandler struct {
	service *service.ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// ChatRequest is one inbound chat message
type ChatRequest struct {
	Message      string `json:"message" binding:"required"`
	Context      string `json:"context"`
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
}

// ChatResponse is the processed reply
type ChatResponse struct {
	Response      string `json:"response"`
	IsCrisis      bool   `json:"is_crisis,omitempty"`
	EmotionalTone string `json:"emotional_tone,omitempty"`
	MessageCount  int    `json:"message_count,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
}

// PostChat processes one chat turn
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	userID := currentUserID(c)

	result, err := h.service.ProcessTurn(c.Request.Context(), userID, service.TurnRequest{
		Message:      req.Message,
		Context:      req.Context,
		SessionID:    req.SessionID,
		MessageCount: req.MessageCount,
	})
	if err != nil {
		h.logger.Error("failed to process chat turn",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "UPSTREAM_ERROR",
			Message: service.FallbackResponse,
		})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:      result.Response,
		IsCrisis:      result.IsCrisis,
		EmotionalTone: string(result.EmotionalTone),
		MessageCount:  result.MessageCount,
		SessionID:     result.SessionID,
	})
}
