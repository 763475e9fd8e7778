package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/datastore"
)

// DatasetHandler manages uploaded training datasets.
type DatasetHandler struct {
	datasets *datastore.Store
	logger   *zap.Logger
}

func NewDatasetHandler(datasets *datastore.Store, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, logger: logger}
}

// UploadDataset stores an uploaded CSV, overwriting any dataset with the
// same filename.
// POST /api/datasets
func (h *DatasetHandler) UploadDataset(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	if err := h.datasets.Save(fileHeader.Filename, f); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Dataset uploaded", zap.String("filename", fileHeader.Filename))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Dataset uploaded",
		"filename": fileHeader.Filename,
	})
}

// ListDatasets returns the stored datasets with their upload times.
// GET /api/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.datasets.List()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, datasets)
}

// DeleteDataset removes a stored dataset by filename.
// DELETE /api/datasets/:filename
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	filename := c.Param("filename")

	if err := h.datasets.Delete(filename); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Dataset deleted", zap.String("filename", filename))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Dataset deleted",
		"filename": filename,
	})
}
