package response

import (
	"errors"
	"net/http"

	"connect-client/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope the Connect server returns and the client
// classifier reads back.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a 200 response with data as the whole JSON body.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Fail sends an error envelope with the given status and aborts the chain.
func Fail(c *gin.Context, status int, code, message string, data any) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: code, Message: message, Data: data})
}

// Error maps err onto an error envelope. An *apperror.AppError keeps its kind
// and message; its status defaults to 400. Anything else is a 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusBadRequest
		}
		Fail(c, status, string(appErr.Kind), appErr.Message, appErr.Data)
		return
	}
	Fail(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
}
