// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"nuvra_crm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const (
	// StatusSuccess is the envelope status for successful responses.
	StatusSuccess = "success"
	// StatusError is the envelope status for failed responses.
	StatusError = "error"

	msgInternal = "Internal server error"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Success sends a success envelope. Fields are merged next to "status".
func Success(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"status": StatusSuccess}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// OK sends a 200 success envelope carrying payload under "data".
func OK(c *gin.Context, payload interface{}) {
	Success(c, http.StatusOK, gin.H{"data": payload})
}

// Error sends an error envelope with the given status code, error kind and message.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Status: StatusError, Error: code, Message: message, Details: details})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: StatusError, Error: code, Message: message})
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status and their Code for the
// error kind. Anything else is reported as a generic internal error so that
// internal details never leak. Returns true if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Status:  StatusError,
			Error:   domainErr.ErrorCode(),
			Message: domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Status:  StatusError,
		Error:   apperr.CodeInternal,
		Message: msgInternal,
	})
	return true
}
