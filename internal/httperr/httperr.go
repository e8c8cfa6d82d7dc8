package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// FromError maps a BusinessError to the HTTP response for its kind. Unknown
// errors become a 500 without leaking internals.
func FromError(c *gin.Context, err error) {
	var status int
	code := "internal_error"
	message := "Unexpected error."

	switch KindOf(err) {
	case KindNotFound:
		status = http.StatusNotFound
	case KindValidation:
		status = http.StatusBadRequest
	case KindSchedulingConflict, KindAlreadyInQueue, KindStateConflict:
		status = http.StatusConflict
	case KindUnavailable:
		status = http.StatusServiceUnavailable
	default:
		Write(c, http.StatusInternalServerError, code, message)
		return
	}

	be := err.(BusinessError)
	Write(c, status, be.Code, messageFor(be.Code))
}

func messageFor(code string) string {
	switch code {
	case CodeOutsideWorkingHours:
		return "Requested time is outside the employee's working hours."
	case CodeTimeConflict:
		return "The employee already has an appointment in that time range."
	case "already_in_queue":
		return "This phone number already has an active spot in the queue."
	default:
		return code
	}
}
