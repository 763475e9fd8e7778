package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/apperr"
)

// respondError translates a component error into its HTTP status and a plain
// error body, logging server-side faults.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
