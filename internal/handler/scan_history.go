package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/repository"
)

// ScanHistoryHandler serves persisted scan results.
type ScanHistoryHandler struct {
	scans  repository.ScanRepository
	logger *zap.Logger
}

func NewScanHistoryHandler(scans repository.ScanRepository, logger *zap.Logger) *ScanHistoryHandler {
	return &ScanHistoryHandler{scans: scans, logger: logger}
}

// ListScans returns scan summaries, newest first.
// GET /api/scans
func (h *ScanHistoryHandler) ListScans(c *gin.Context) {
	scans, err := h.scans.ListScans()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, scans)
}

// GetScan returns the full detail of a single scan.
// GET /api/scans/:id
func (h *ScanHistoryHandler) GetScan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
		return
	}

	scan, err := h.scans.GetScanByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}
