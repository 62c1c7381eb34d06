// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/larderline/larder-backend/internal/metrics"
	"github.com/larderline/larder-backend/internal/models"
)

const RequestIDHeader = "X-Request-ID"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// RequestID reuses an incoming X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request and feeds the HTTP metrics.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), duration)

		userID, _ := c.Get("user_id")
		entry := logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_id":    userID,
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request processed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

// AuditLogMiddleware records every mutating request once the handler has answered.
func AuditLogMiddleware(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// Read request body
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		start := time.Now()
		c.Next()

		var requestData map[string]interface{}
		if len(requestBody) > 0 {
			_ = json.Unmarshal(requestBody, &requestData)
		}

		auditLog := &models.AuditLog{
			RequestID:    c.GetString("request_id"),
			UserID:       c.GetString("user_id"),
			Action:       c.Request.Method + " " + c.Request.URL.Path,
			ResourceType: extractResourceType(c.Request.URL.Path),
			ResourceID:   extractResourceID(c.Request.URL.Path),
			NewValues:    models.JSON(requestData),
			StatusCode:   c.Writer.Status(),
			DurationMs:   time.Since(start).Milliseconds(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}

		// Save audit log asynchronously
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := recorder.Record(ctx, auditLog); err != nil {
				logrus.WithError(err).WithField("request_id", auditLog.RequestID).Error("Failed to create audit log")
			}
		}()
	}
}

func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		return parts[1]
	}
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

// extractResourceID returns the first numeric path segment.
func extractResourceID(path string) *int64 {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			return &id
		}
	}
	return nil
}
