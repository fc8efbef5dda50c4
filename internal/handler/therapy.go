package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// TherapyHandler implements therapist discovery and booking endpoints
type TherapyHandler struct {
	service *service.TherapyService
	logger  *zap.Logger
}

// NewTherapyHandler creates a new TherapyHandler
func NewTherapyHandler(service *service.TherapyService, logger *zap.Logger) *TherapyHandler {
	return &TherapyHandler{
		service: service,
		logger:  logger,
	}
}

// GetTherapists lists bookable therapists
func (h *TherapyHandler) GetTherapists(c *gin.Context) {
	therapists, err := h.service.ListTherapists(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list therapists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to list therapists",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, therapists)
}

// BookSessionRequest is a session booking submission
type BookSessionRequest struct {
	TherapistID string    `json:"therapist_id" binding:"required"`
	SessionDate time.Time `json:"session_date" binding:"required"`
	SessionType string    `json:"session_type"`
	Notes       *string   `json:"notes"`
}

// PostSession books a therapy session
func (h *TherapyHandler) PostSession(c *gin.Context) {
	var req BookSessionRequest
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

	session, err := h.service.BookSession(c.Request.Context(), userID, req.TherapistID, req.SessionDate, req.SessionType, req.Notes)
	if err != nil {
		h.logger.Error("failed to book session",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSessions lists the user's booked sessions
func (h *TherapyHandler) GetSessions(c *gin.Context) {
	userID := currentUserID(c)

	sessions, err := h.service.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list sessions",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to list sessions",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// UpdateStatusRequest moves a session through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PutSessionStatus updates a booked session's status
func (h *TherapyHandler) PutSessionStatus(c *gin.Context) {
	var req UpdateStatusRequest
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
	sessionID := c.Param("id")

	session, err := h.service.UpdateStatus(c.Request.Context(), userID, sessionID, model.SessionStatus(req.Status))
	if err != nil {
		h.logger.Error("failed to update session status",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}
