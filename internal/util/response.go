package util

import (
	"net/http"

	"account-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a success envelope.
type Response map[string]interface{}

// Success writes the unified success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": "ok",
		"data": data,
	})
}

// Error writes the unified error envelope. The code is a stable
// machine-readable kind; clients branch on it, never on the message.
func Error(c *gin.Context, httpStatus int, kind, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    kind,
		"message": msg,
	})
}

// ErrorFrom maps a service error to its HTTP status and writes the envelope.
func ErrorFrom(c *gin.Context, err error) {
	se, ok := err.(*service.Error)
	if !ok {
		Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "internal error")
		return
	}
	Error(c, statusFor(se.Kind), se.Kind, se.Message)
}

func statusFor(kind string) int {
	switch kind {
	case service.KindMissingField:
		return http.StatusBadRequest
	case service.KindDuplicateEmail:
		return http.StatusConflict
	case service.KindInvalidCredentials, service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
