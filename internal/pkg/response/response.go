package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
)

// ErrorResponse represents a standard error payload returned by the API
type ErrorResponse struct {
	Error string `json:"error" example:"Report has already been resolved"`
	Code  string `json:"code,omitempty" example:"CONFLICT"`
}

// SuccessResponse represents a standard success payload
type SuccessResponse struct {
	Status string      `json:"status" example:"success"`
	Data   interface{} `json:"data"`
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	code := ""
	if len(errorCode) > 0 {
		code = errorCode[0]
	}

	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// ValidationError sends a 422 Unprocessable Entity error
func ValidationError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnprocessableEntity, message, errorCode...)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// BadGateway sends a 502 Bad Gateway error
func BadGateway(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadGateway, message, errorCode...)
}

// ServiceUnavailable sends a 503 Service Unavailable error
func ServiceUnavailable(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusServiceUnavailable, message, errorCode...)
}

// FromError maps an error kind from pkg/errors onto its HTTP status.
// Unknown errors are reported as 500 without leaking their text.
func FromError(c *gin.Context, err error) {
	message := apperrors.Message(err)

	switch kind := apperrors.KindOf(err); {
	case errors.Is(kind, apperrors.ErrValidation):
		ValidationError(c, message, "VALIDATION_FAILED")
	case errors.Is(kind, apperrors.ErrNotFound):
		NotFound(c, message, "NOT_FOUND")
	case errors.Is(kind, apperrors.ErrConflict):
		Conflict(c, message, "CONFLICT")
	case errors.Is(kind, apperrors.ErrAuthorization):
		Forbidden(c, message, "FORBIDDEN")
	case errors.Is(kind, apperrors.ErrUnauthorized):
		Unauthorized(c, message, "AUTH_FAILED")
	case errors.Is(kind, apperrors.ErrDependency):
		BadGateway(c, message, "DEPENDENCY_FAILED")
	default:
		InternalServerError(c, "Internal server error", "INTERNAL_ERROR")
	}
}

// StatusKind is the inverse of FromError, used by API clients to rebuild typed errors.
func StatusKind(statusCode int) error {
	switch statusCode {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return apperrors.ErrValidation
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrConflict
	case http.StatusForbidden:
		return apperrors.ErrAuthorization
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusBadGateway:
		return apperrors.ErrDependency
	default:
		return apperrors.ErrInternal
	}
}
