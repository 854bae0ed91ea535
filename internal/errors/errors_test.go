package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/housingdash/api/internal/logger"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestContext creates a test Gin context with logger and request ID in context.
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/counties/henry/dashboard", nil)

	c.Set(middleware.LoggerKey, logger.Nop())
	c.Set(middleware.RequestIDKey, "test-request-id")

	return c, w
}

func parseErrorResponse(t *testing.T, body *bytes.Buffer) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &response), "Failed to parse error response JSON")
	return response
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *gin.Context)
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			call:       func(c *gin.Context) { NotFound(c, "Route not found") },
			wantStatus: http.StatusNotFound,
			wantCode:   ErrNotFound,
			wantMsg:    "Route not found",
		},
		{
			name:       "county not found",
			call:       func(c *gin.Context) { CountyNotFound(c, "atlantis") },
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCountyNotFound,
			wantMsg:    "No dashboard is configured for this county",
		},
		{
			name:       "invalid selection",
			call:       func(c *gin.Context) { InvalidSelection(c, "years must be between 2018 and 2022") },
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrInvalidSelection,
			wantMsg:    "years must be between 2018 and 2022",
		},
		{
			name:       "data unavailable",
			call:       func(c *gin.Context) { DataUnavailable(c, "County data is unavailable", errors.New("open: no such file")) },
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrDataUnavailable,
			wantMsg:    "County data is unavailable",
		},
		{
			name:       "internal server error",
			call:       func(c *gin.Context) { InternalServerError(c, "An unexpected error occurred", errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrInternalServer,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()

			tt.call(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			response := parseErrorResponse(t, w.Body)
			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.Equal(t, tt.wantMsg, response.Error.Message)
			assert.Equal(t, "test-request-id", response.Error.RequestID)
		})
	}
}

func TestCountyNotFound_Details(t *testing.T) {
	c, w := setupTestContext()

	CountyNotFound(c, "atlantis")

	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, "atlantis", response.Error.Details["county"])
}

func TestDataUnavailable_HidesCause(t *testing.T) {
	c, w := setupTestContext()

	DataUnavailable(c, "County data is unavailable", errors.New("open /srv/data/Henry.csv: permission denied"))

	assert.NotContains(t, w.Body.String(), "permission denied")
	assert.Nil(t, parseErrorResponse(t, w.Body).Error.Details)
}

func TestBadRequest(t *testing.T) {
	t.Run("without details", func(t *testing.T) {
		c, w := setupTestContext()

		BadRequest(c, "Invalid query parameters", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := parseErrorResponse(t, w.Body)
		assert.Equal(t, ErrBadRequest, response.Error.Code)
		assert.Nil(t, response.Error.Details)
	})

	t.Run("with details", func(t *testing.T) {
		c, w := setupTestContext()

		BadRequest(c, "Invalid query parameters", map[string]interface{}{
			"year_from": "not-a-year",
		})

		response := parseErrorResponse(t, w.Body)
		assert.Equal(t, "not-a-year", response.Error.Details["year_from"])
	})
}

func TestValidationError(t *testing.T) {
	c, w := setupTestContext()

	type selection struct {
		Geography string `validate:"omitempty,oneof=county region"`
		YearFrom  int    `validate:"gte=1900"`
	}

	err := validator.New().Struct(selection{Geography: "state", YearFrom: 1800})
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	ValidationError(c, validationErrors)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrValidation, response.Error.Code)
	assert.Equal(t, "Validation failed for one or more fields", response.Error.Message)
	assert.Equal(t, "Must be one of: county region", response.Error.Details["Geography"])
	assert.Equal(t, "Must be greater than or equal to 1900", response.Error.Details["YearFrom"])
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		tag      string
		param    string
		expected string
	}{
		{tag: "required", expected: "This field is required"},
		{tag: "min", param: "1", expected: "Value is too short or small (minimum: 1)"},
		{tag: "max", param: "20", expected: "Value is too long or large (maximum: 20)"},
		{tag: "gte", param: "1900", expected: "Must be greater than or equal to 1900"},
		{tag: "lte", param: "2100", expected: "Must be less than or equal to 2100"},
		{tag: "gtefield", param: "YearFrom", expected: "Must not be before YearFrom"},
		{tag: "oneof", param: "county region", expected: "Must be one of: county region"},
		{tag: "dive", expected: "Contains an invalid value"},
		{tag: "unknown_tag", expected: "Validation failed for tag: unknown_tag"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			result := formatValidationError(&mockFieldError{tag: tt.tag, param: tt.param})
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestErrorResponseWithoutContext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	CountyNotFound(c, "atlantis")

	assert.Equal(t, http.StatusNotFound, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrCountyNotFound, response.Error.Code)
	assert.Empty(t, response.Error.RequestID, "Expected empty request ID when not in context")
}

// mockFieldError is a mock implementation of validator.FieldError for testing.
type mockFieldError struct {
	tag   string
	param string
}

func (m *mockFieldError) Tag() string                    { return m.tag }
func (m *mockFieldError) ActualTag() string              { return m.tag }
func (m *mockFieldError) Namespace() string              { return "" }
func (m *mockFieldError) StructNamespace() string        { return "" }
func (m *mockFieldError) Field() string                  { return "year_from" }
func (m *mockFieldError) StructField() string            { return "YearFrom" }
func (m *mockFieldError) Value() interface{}             { return nil }
func (m *mockFieldError) Param() string                  { return m.param }
func (m *mockFieldError) Kind() reflect.Kind             { return reflect.Int }
func (m *mockFieldError) Type() reflect.Type             { return nil }
func (m *mockFieldError) Translate(ut.Translator) string { return "" }
func (m *mockFieldError) Error() string                  { return "" }
