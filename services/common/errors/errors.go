package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the envelope every service returns for failures.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Common error values
var (
	ErrBadRequest       = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized     = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden        = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound         = New(http.StatusNotFound, "Not found", nil)
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "Method not allowed", nil)
	ErrConflict         = New(http.StatusConflict, "Conflict", nil)
	ErrInternalServer   = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Storefront error values
var (
	ErrInsufficientStock = New(http.StatusConflict, "Insufficient stock", nil)
	ErrStaleCartVersion  = New(http.StatusConflict, "Cart was modified by another writer", nil)
	ErrPasscodeLocked    = New(http.StatusForbidden, "Too many failed passcode attempts", nil)
	ErrValidation        = New(http.StatusBadRequest, "Validation error", nil)
)

// Middleware converts errors attached to the gin context into the JSON
// envelope. Unknown errors map to 500 without leaking the cause.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr, ok := err.(*Error)
		if !ok {
			appErr = New(http.StatusInternalServerError, "Internal server error", err)
		}
		c.JSON(appErr.Code, appErr)
		c.Abort()
	}
}
