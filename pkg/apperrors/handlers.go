package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError writes an AppError as a JSON response on a gin context.
func HandleError(c *gin.Context, err *AppError) {
	if err.HTTPCode >= 500 {
		slog.Error("server error", "code", err.Code, "domain", err.Domain, "error", err.Error())
	}
	c.JSON(err.HTTPCode, ErrorResponse{Error: err})
}
