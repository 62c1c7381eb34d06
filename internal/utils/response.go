// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/i18n"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid)
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// NotFoundResponse takes a resource translation key such as i18n.KeyResourceHouseItem.
func NotFoundResponse(c *gin.Context, resourceKey string) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyResourceNotFound, i18n.T(lang, resourceKey))
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	}
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid)
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, errors)
}

// HandleServiceError maps the domain error taxonomy onto HTTP statuses.
func HandleServiceError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var domainErr *domain.DomainError

	switch {
	case errors.As(err, &validationErr):
		ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), []ValidationError{{
			Field:   validationErr.Field,
			Tag:     "invariant",
			Message: validationErr.Reason,
		}})
	case errors.As(err, &notFoundErr):
		ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
	case errors.As(err, &domainErr):
		ErrorResponse(c, http.StatusUnprocessableEntity, "DOMAIN_RULE_VIOLATION", domainErr.Reason, nil)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		InternalErrorResponse(c, "")
	}
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr, true
		}
	}
	return "", false
}

// GetActorFromContext returns the display name of the authenticated caller, falling back to its id.
func GetActorFromContext(c *gin.Context) (string, bool) {
	if name, exists := c.Get("user_name"); exists {
		if nameStr, ok := name.(string); ok && nameStr != "" {
			return nameStr, true
		}
	}
	return GetUserIDFromContext(c)
}
