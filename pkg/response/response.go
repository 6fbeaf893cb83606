package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// Fields carries the payload keys merged into a success envelope.
type Fields map[string]interface{}

// Envelope represents the failure contract. Success bodies share the same success/message keys
// and carry their payload under endpoint-specific keys.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// JSON sends a success response merging fields into {"success": true, "message": ...}.
func JSON(c *gin.Context, status int, message string, fields Fields) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for key, value := range fields {
		body[key] = value
	}
	c.JSON(status, body)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, message string, fields Fields) {
	JSON(c, http.StatusOK, message, fields)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, fields Fields) {
	JSON(c, http.StatusCreated, message, fields)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Field:   appErr.Field,
	})
}

// Attachment streams a generated file to the client.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
