package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/utils"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; the first match wins
var errorMappings = []errorMapping{
	{models.ErrNoFieldsProvided, http.StatusBadRequest, "NO_FIELDS_PROVIDED", "No valid fields provided for update."},
	{models.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds."},
	{models.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{models.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{models.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{models.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found."},
	{models.ErrConflict, http.StatusConflict, "CONFLICT", "Resource already exists."},
}

// respondError writes the error response for err and aborts the chain.
// Only validation errors echo err to the client; the wrap chain of every
// other error goes to the log.
func respondError(c *gin.Context, logger *utils.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			} else {
				logger.Info("request rejected",
					"error", err,
					"code", m.code,
					"path", c.FullPath(),
					"request_id", c.GetString(requestIDKey),
				)
			}
			abortWithError(c, m.status, m.code, message)
			return
		}
	}

	logger.Error("request failed",
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(requestIDKey),
	)
	abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// badRequest reports a request body or parameter that failed binding
func badRequest(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
