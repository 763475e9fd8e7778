package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"threatscan/internal/modelstatus"
	"threatscan/internal/models"
)

func newModelAdminHandler(t *testing.T) (*ModelAdminHandler, *modelstatus.Store) {
	t.Helper()
	store := modelstatus.NewStore(filepath.Join(t.TempDir(), "model_status.json"))
	return NewModelAdminHandler(store, zap.NewNop()), store
}

func TestGetStatus_ReturnsDefaultsOnFirstAccess(t *testing.T) {
	h, _ := newModelAdminHandler(t)

	req, _ := http.NewRequest("GET", "/api/model/status", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h.GetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.ModelStatus
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.ModeHybrid, status.Mode)
	assert.Equal(t, "distilbert-base-uncased", status.BinaryModel.Name)
}

func postSwitch(t *testing.T, h *ModelAdminHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", "/api/model/switch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h.SwitchMode(c)
	return w
}

func TestSwitchMode_Success(t *testing.T) {
	h, store := newModelAdminHandler(t)

	w := postSwitch(t, h, `{"mode": "multi-only"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Switched to multi-only mode", response["message"])

	mode, err := store.Mode()
	assert.NoError(t, err)
	assert.Equal(t, models.ModeMultiOnly, mode)
}

func TestSwitchMode_InvalidModeIsBadRequest(t *testing.T) {
	h, store := newModelAdminHandler(t)
	assert.NoError(t, store.SwitchMode(models.ModeBinaryOnly))

	w := postSwitch(t, h, `{"mode": "chaos"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mode, err := store.Mode()
	assert.NoError(t, err)
	assert.Equal(t, models.ModeBinaryOnly, mode, "stored mode must be unchanged")
}

func TestSwitchMode_MissingModeIsBadRequest(t *testing.T) {
	h, _ := newModelAdminHandler(t)

	w := postSwitch(t, h, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
