package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"github.com/menticure/backend/pkg/model"
	"go.uber.org/zap"
)

// CheckInHandler implements daily check-in endpoints
type CheckInHandler struct {
	service *service.CheckInService
	logger  *zap.Logger
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(service *service.CheckInService, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		logger:  logger,
	}
}

// CheckInRequest is one daily check-in submission
type CheckInRequest struct {
	Status string  `json:"status" binding:"required"`
	Date   string  `json:"date"`
	Notes  *string `json:"notes"`
}

var validCheckInStatuses = map[model.CheckInStatus]bool{
	model.CheckInGreat:      true,
	model.CheckInOkay:       true,
	model.CheckInStruggling: true,
}

// PostCheckIn records today's check-in. Re-submitting the same day
// updates the entry without touching the streak.
func (h *CheckInHandler) PostCheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	status := model.CheckInStatus(req.Status)
	if !validCheckInStatuses[status] {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "status must be one of great, okay, struggling",
		})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "date must be formatted as YYYY-MM-DD",
			})
			return
		}
		date = parsed
	}

	userID := currentUserID(c)

	result, err := h.service.SubmitCheckIn(c.Request.Context(), userID, date, status, req.Notes)
	if err != nil {
		h.logger.Error("failed to submit check-in",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to submit check-in",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCheckIns lists the user's check-ins in the lookback window
func (h *CheckInHandler) GetCheckIns(c *gin.Context) {
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

	userID := currentUserID(c)

	checkIns, err := h.service.History(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to get check-ins",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get check-ins",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, checkIns)
}

// GetStreak returns the user's check-in streak
func (h *CheckInHandler) GetStreak(c *gin.Context) {
	userID := currentUserID(c)

	streak, err := h.service.GetStreak(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get streak",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get streak",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, streak)
}
