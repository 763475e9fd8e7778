package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threatscan/internal/models"
	"threatscan/internal/repository"
)

// maxContentLength caps the text stored with a scan and the text handed to
// the models for uploaded files.
const maxContentLength = 571

// Classifier runs the mode-dependent classification over a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.Classification, error)
}

// ScanHandler handles classification requests.
type ScanHandler struct {
	classifier Classifier
	scans      repository.ScanRepository
	logger     *zap.Logger
}

func NewScanHandler(classifier Classifier, scans repository.ScanRepository, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		classifier: classifier,
		scans:      scans,
		logger:     logger,
	}
}

type ScanRequest struct {
	InputText string `json:"input_text" binding:"required"`
}

// ScanText classifies raw text submitted as JSON and persists a url-typed
// scan.
// POST /api/scan
func (h *ScanHandler) ScanText(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.classify(c, models.InputTypeURL, "User URL Input", req.InputText)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result,
	})
}

// ScanEmail classifies an uploaded email body.
// POST /api/scan/email
func (h *ScanHandler) ScanEmail(c *gin.Context) {
	h.scanUpload(c, models.InputTypeEmail)
}

// ScanHTML classifies an uploaded HTML file.
// POST /api/scan/html
func (h *ScanHandler) ScanHTML(c *gin.Context) {
	h.scanUpload(c, models.InputTypeHTML)
}

func (h *ScanHandler) scanUpload(c *gin.Context, inputType string) {
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

	raw, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// Invalid UTF-8 sequences are dropped rather than rejected.
	text := truncateRunes(strings.ToValidUTF8(string(raw), ""), maxContentLength)

	result, err := h.classify(c, inputType, fileHeader.Filename, text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": fileHeader.Filename,
		"status":   "success",
		"data":     result,
	})
}

func (h *ScanHandler) classify(c *gin.Context, inputType, rawName, text string) (*models.Classification, error) {
	result, err := h.classifier.Classify(c.Request.Context(), text)
	if err != nil {
		return nil, err
	}

	scan := &models.ScanResult{
		InputType:   inputType,
		RawName:     rawName,
		Content:     truncateRunes(text, maxContentLength),
		IsMalicious: result.IsMalicious,
		ThreatType:  result.ThreatType,
		ThreatScore: result.ThreatScore,
		BinaryScore: result.BinaryScore,
		Tokens:      strings.Join(result.HighlightedTokens, ", "),
	}
	if err := h.scans.SaveScan(scan); err != nil {
		return nil, err
	}

	return result, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
