package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/models"
	"threatscan/internal/trainer"
)

// MetricsSource serves the last recorded training metrics snapshot.
type MetricsSource interface {
	LastStats() (*models.TrainingStats, error)
}

// RetrainHandler submits retraining jobs and reports their progress.
type RetrainHandler struct {
	jobs    *trainer.JobManager
	metrics MetricsSource
	logger  *zap.Logger
}

func NewRetrainHandler(jobs *trainer.JobManager, metrics MetricsSource, logger *zap.Logger) *RetrainHandler {
	return &RetrainHandler{jobs: jobs, metrics: metrics, logger: logger}
}

type RetrainRequest struct {
	Dataset       string `json:"dataset" binding:"required"`
	RetrainBinary bool   `json:"retrain_binary"`
	RetrainMulti  bool   `json:"retrain_multi"`
}

// Retrain submits an asynchronous retraining job. Training can run for
// minutes, so the response carries a job id to poll rather than blocking.
// POST /api/model/retrain
func (h *RetrainHandler) Retrain(c *gin.Context) {
	var req RetrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.Submit(req.Dataset, req.RetrainBinary, req.RetrainMulti)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Retraining started",
		"job_id":  job.ID,
	})
}

// GetJob reports the state of a retraining job, including the metrics once
// it completes.
// GET /api/model/retrain/jobs/:id
func (h *RetrainHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetMetrics returns the snapshot of the most recent completed retraining
// run.
// GET /api/model/metrics
func (h *RetrainHandler) GetMetrics(c *gin.Context) {
	stats, err := h.metrics.LastStats()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
