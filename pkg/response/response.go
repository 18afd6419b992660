package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Fields are the payload keys merged next to success/message, e.g. "user".
type Fields map[string]any

func envelope(c *gin.Context, success bool, message string) gin.H {
	h := gin.H{
		"success":    success,
		"timestamp":  time.Now().UTC(),
		"request_id": c.GetString("request_id"),
	}
	if message != "" {
		h["message"] = message
	}
	return h
}

// Success writes {"success": true, "message": ..., <fields>}
func Success(c *gin.Context, status int, message string, fields Fields) {
	if status == 0 {
		status = http.StatusOK
	}
	body := envelope(c, true, message)
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error writes {"success": false, "message": ...}. details, when set, is
// exposed under "errors" and must never carry internal causes.
func Error(c *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := envelope(c, false, message)
	if details != nil {
		body["errors"] = details
	}
	c.JSON(status, body)
}

// Abort is Error followed by stopping the handler chain.
func Abort(c *gin.Context, status int, message string, details any) {
	Error(c, status, message, details)
	c.Abort()
}
