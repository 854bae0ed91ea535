package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound         = "NOT_FOUND"
	ErrBadRequest       = "BAD_REQUEST"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidation       = "VALIDATION_ERROR"
	ErrCountyNotFound   = "COUNTY_NOT_FOUND"
	ErrInvalidSelection = "INVALID_SELECTION"
	ErrDataUnavailable  = "DATA_UNAVAILABLE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// requestFields are the log fields shared by every error response.
func requestFields(c *gin.Context, requestID string) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// warn logs a client error at warn level when a request logger is present.
func warn(c *gin.Context, msg, message string, details map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}
	fields := requestFields(c, middleware.GetRequestID(c))
	fields["message"] = message
	if details != nil {
		fields["details"] = details
	}
	log.Warn(msg, fields)
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", message, nil)
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// CountyNotFound returns a 404 for a county slug that is not configured.
func CountyNotFound(c *gin.Context, slug string) {
	details := map[string]interface{}{"county": slug}
	warn(c, "County not found", "Unknown county", details)
	respond(c, http.StatusNotFound, ErrCountyNotFound, "No dashboard is configured for this county", details)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, "Bad request", message, details)
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// InvalidSelection returns a 400 for filter values outside the county's
// option sets, such as an unlisted year or vintage bucket.
func InvalidSelection(c *gin.Context, message string) {
	warn(c, "Invalid selection", message, nil)
	respond(c, http.StatusBadRequest, ErrInvalidSelection, message, nil)
}

// DataUnavailable returns a 503 when a county's transactions or geometry
// cannot be loaded. The cause is logged, not returned.
func DataUnavailable(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("County data unavailable", err, requestFields(c, middleware.GetRequestID(c)))
	}
	respond(c, http.StatusServiceUnavailable, ErrDataUnavailable, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The cause is logged; the client only sees message.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		fields := requestFields(c, middleware.GetRequestID(c))
		fields["message"] = message
		log.Error("Internal server error", err, fields)
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		fields := requestFields(c, middleware.GetRequestID(c))
		fields["fields"] = details
		log.Warn("Validation error", fields)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "gtefield":
		return "Must not be before " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "dive":
		return "Contains an invalid value"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
