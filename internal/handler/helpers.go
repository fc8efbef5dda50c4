package handler

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON error payload shared by all endpoints
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// currentUserID returns the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
