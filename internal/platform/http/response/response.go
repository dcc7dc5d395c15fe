// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the fixed response wrapper. success is always present;
// the other keys are omitted when empty.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Common messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgInternalError    = "Internal server error"
)

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Message writes a 200 success envelope without data.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Error writes a failure envelope with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

// ValidationError writes a 422 failure envelope with a field→messages map.
func ValidationError(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, Envelope{Success: false, Message: MsgValidationFailed, Errors: errs})
}

// InternalError writes a generic 500 failure envelope.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternalError)
}
