package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/menticure/backend/internal/service"
	"go.uber.org/zap"
)

// PrivacyHandler implements data deletion and export endpoints
type PrivacyHandler struct {
	service *service.PrivacyService
	logger  *zap.Logger
}

// NewPrivacyHandler creates a new PrivacyHandler
func NewPrivacyHandler(service *service.PrivacyService, logger *zap.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		service: service,
		logger:  logger,
	}
}

// DeleteData removes all of the authenticated user's data
func (h *PrivacyHandler) DeleteData(c *gin.Context) {
	userID := currentUserID(c)

	err := h.service.DeleteUserData(c.Request.Context(), userID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to delete user data",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to delete user data",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All user data deleted",
	})
}

// ExportData streams all of the authenticated user's data as JSON
func (h *PrivacyHandler) ExportData(c *gin.Context) {
	userID := currentUserID(c)

	data, err := h.service.ExportUserData(c.Request.Context(), userID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to export user data",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to export user data",
			Details: stringPtr(err.Error()),
		})
		return
	}

	filename := "data-export-" + time.Now().Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}
