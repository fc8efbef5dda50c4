package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"go.uber.org/zap"
)

// InsightsHandler implements the trend-analysis endpoints
type InsightsHandler struct {
	service *service.InsightsService
	logger  *zap.Logger
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(service *service.InsightsService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		service: service,
		logger:  logger,
	}
}

// GetInsights returns the mood trend analysis for a lookback window.
func (h *InsightsHandler) GetInsights(c *gin.Context) {
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

	analysis, err := h.service.Analyze(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to analyze mental states",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to analyze mood trends",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetNudge returns the daily check-in nudge banner. The service always
// produces a nudge, falling back to a neutral one when analysis fails.
func (h *InsightsHandler) GetNudge(c *gin.Context) {
	userID := currentUserID(c)

	nudge := h.service.CheckInNudge(c.Request.Context(), userID)

	c.JSON(http.StatusOK, nudge)
}
