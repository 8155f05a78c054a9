package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// Write aborts the chain so middleware can use it too.
func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFoundResponse(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindConfiguration:
		return http.StatusUnprocessableEntity
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err using its kind. Storage and unknown errors never leak
// driver messages.
func FromError(c *gin.Context, err error) {
	kind := KindOf(err)
	code := CodeOf(err)

	switch kind {
	case "", KindStorage:
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	Write(c, StatusFor(kind), code, messageFor(kind, code))
}

func messageFor(kind Kind, code string) string {
	switch code {
	case "PAST":
		return "The requested start time is in the past."
	case "DAY_CLOSED":
		return "The provider is closed on that day."
	case "OUTSIDE_HOURS":
		return "The requested time is outside business hours."
	case "NOT_ALIGNED":
		return "The requested time is not on a slot boundary."
	case CodeConflict:
		return "That time was just taken. Please pick another slot."
	}

	switch kind {
	case KindNotFound:
		return "Resource not found."
	case KindInvalidState:
		return "The booking cannot move to that status."
	case KindTimeout:
		return "The request timed out. Please retry."
	case KindConfiguration:
		return "Invalid availability configuration."
	}
	return "Request rejected."
}
