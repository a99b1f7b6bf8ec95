// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/i18n"
	"github.com/kanistore/storefront/internal/models"
)

// Error codes carried in failure bodies.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInternal     = "INTERNAL"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
)

// APIResponse is the one envelope every endpoint writes. List endpoints fill
// Data, product-list endpoints (related, search) fill Products.
type APIResponse struct {
	Message  string      `json:"message,omitempty"`
	Success  bool        `json:"success"`
	Error    bool        `json:"error"`
	Code     string      `json:"code,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Products interface{} `json:"products,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func MessageResponse(c *gin.Context, messageKey string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Message: i18n.T(GetLangFromContext(c), messageKey),
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *gin.Context, messageKey string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Message: i18n.T(GetLangFromContext(c), messageKey),
		Success: true,
		Data:    data,
	})
}

func ProductsResponse(c *gin.Context, products interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:  true,
		Products: products,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Message: message,
		Success: false,
		Error:   true,
		Code:    code,
		Details: details,
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFoundResponse(c *gin.Context, messageKey string) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusNotFound, CodeNotFound, i18n.T(lang, messageKey), nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, CodeConflict, message, nil)
}

func UnavailableResponse(c *gin.Context) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusServiceUnavailable, CodeUnavailable, i18n.T(lang, i18n.KeyUnavailable), nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyInternal)
	}
	ErrorResponse(c, http.StatusInternalServerError, CodeInternal, message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, message, errors)
}

// ServiceErrorResponse writes the failure body matching err's class.
// notFoundKey is the message used for NOT_FOUND.
func ServiceErrorResponse(c *gin.Context, err error, notFoundKey string) {
	lang := GetLangFromContext(c)

	switch {
	case errors.Is(err, models.ErrNotFound):
		NotFoundResponse(c, notFoundKey)
	case errors.Is(err, models.ErrInvalidInput):
		if details := GetValidationErrors(err); len(details) > 0 {
			ValidationErrorResponse(c, details)
			return
		}
		BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationID), nil)
	case errors.Is(err, models.ErrUnauthorized):
		UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, models.ErrConflict):
		ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, models.ErrUnavailable):
		UnavailableResponse(c)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		InternalErrorResponse(c, "")
	}
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLanguage()
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr, true
		}
	}
	return "", false
}
