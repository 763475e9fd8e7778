package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"threatscan/internal/models"
)

func TestListScans(t *testing.T) {
	repo := &fakeScanRepo{scans: []*models.ScanSummary{
		{ID: 2, InputType: "email", RawName: "mail.eml", ThreatType: "phishing", IsMalicious: true, CreatedAt: time.Now()},
		{ID: 1, InputType: "url", RawName: "User URL Input", ThreatType: "unknown", IsMalicious: false, CreatedAt: time.Now().Add(-time.Hour)},
	}}
	h := NewScanHistoryHandler(repo, zap.NewNop())

	req, _ := http.NewRequest("GET", "/api/scans", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h.ListScans(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var scans []models.ScanSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &scans))
	assert.Len(t, scans, 2)
	assert.Equal(t, int64(2), scans[0].ID)
}

func TestGetScan(t *testing.T) {
	score := 97.5
	repo := &fakeScanRepo{byID: map[int64]*models.ScanResult{
		3: {ID: 3, InputType: "html", RawName: "page.html", Content: "<script>", IsMalicious: true,
			ThreatType: "HTML injection", ThreatScore: 91.0, BinaryScore: &score, Tokens: "script"},
	}}
	h := NewScanHistoryHandler(repo, zap.NewNop())

	req, _ := http.NewRequest("GET", "/api/scans/3", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.GetScan(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var scan models.ScanResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &scan))
	assert.Equal(t, "HTML injection", scan.ThreatType)
	assert.Equal(t, "<script>", scan.Content)
}

func TestGetScan_NotFound(t *testing.T) {
	h := NewScanHistoryHandler(&fakeScanRepo{byID: map[int64]*models.ScanResult{}}, zap.NewNop())

	req, _ := http.NewRequest("GET", "/api/scans/99", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	h.GetScan(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScan_InvalidID(t *testing.T) {
	h := NewScanHistoryHandler(&fakeScanRepo{}, zap.NewNop())

	req, _ := http.NewRequest("GET", "/api/scans/abc", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.GetScan(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
