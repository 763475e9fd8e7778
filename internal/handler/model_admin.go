package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/modelstatus"
)

// ModelAdminHandler exposes the model status document and mode switching.
type ModelAdminHandler struct {
	status *modelstatus.Store
	logger *zap.Logger
}

func NewModelAdminHandler(status *modelstatus.Store, logger *zap.Logger) *ModelAdminHandler {
	return &ModelAdminHandler{status: status, logger: logger}
}

// GetStatus returns the full model status document, creating it with
// defaults on first access.
// GET /api/model/status
func (h *ModelAdminHandler) GetStatus(c *gin.Context) {
	status, err := h.status.Read()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

type ModeSwitchRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SwitchMode changes the active classification mode.
// POST /api/model/switch
func (h *ModelAdminHandler) SwitchMode(c *gin.Context) {
	var req ModeSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.status.SwitchMode(req.Mode); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Classification mode switched", zap.String("mode", req.Mode))

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Switched to %s mode", req.Mode),
	})
}
