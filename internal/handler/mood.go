package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// MoodHandler implements mood tracker endpoints
type MoodHandler struct {
	service *service.MoodService
	logger  *zap.Logger
}

// NewMoodHandler creates a new MoodHandler
func NewMoodHandler(service *service.MoodService, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{
		service: service,
		logger:  logger,
	}
}

// MoodRequest is a user-submitted mood check-in
type MoodRequest struct {
	Mood         string   `json:"mood" binding:"required"`
	SleepHours   *float64 `json:"sleep_hours"`
	AnxietyLevel *int     `json:"anxiety_level"`
	StressLevel  *int     `json:"stress_level"`
	Notes        *string  `json:"notes"`
}

// PostMood records a mood entry
func (h *MoodHandler) PostMood(c *gin.Context) {
	var req MoodRequest
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

	rec, err := h.service.Record(c.Request.Context(), userID, service.MoodEntry{
		Mood:         model.MoodLevel(req.Mood),
		SleepHours:   req.SleepHours,
		AnxietyLevel: req.AnxietyLevel,
		StressLevel:  req.StressLevel,
		Notes:        req.Notes,
	})
	if err != nil {
		h.logger.Error("failed to record mood",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetMood retrieves mood history for a lookback window
func (h *MoodHandler) GetMood(c *gin.Context) {
	userID := currentUserID(c)

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "days must be a positive integer",
			})
			return
		}
		days = parsed
	}

	records, err := h.service.History(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to get mood history",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get mood history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, records)
}
