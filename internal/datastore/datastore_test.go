package datastore

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"threatscan/internal/apperr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create dataset store: %v", err)
	}
	return store
}

func TestSaveAndList(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Save("phishing.csv", strings.NewReader("text,label\nhi,positive\n")))

	datasets, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, datasets, 1)
	assert.Equal(t, "phishing.csv", datasets[0].Filename)
	assert.False(t, datasets[0].UploadedAt.IsZero())
}

func TestSave_OverwritesSilentlyOnNameCollision(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Save("data.csv", strings.NewReader("first")))
	assert.NoError(t, store.Save("data.csv", strings.NewReader("second version")))

	datasets, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, datasets, 1, "second upload must replace the first")

	content, err := os.ReadFile(store.Path("data.csv"))
	assert.NoError(t, err)
	assert.Equal(t, "second version", string(content))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Save("data.csv", strings.NewReader("x")))

	assert.NoError(t, store.Delete("data.csv"))
	assert.False(t, store.Exists("data.csv"))
}

func TestDelete_MissingFileIsNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete("ghost.csv")
	assert.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPath_StripsDirectoryComponents(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, store.Path("data.csv"), store.Path("../../data.csv"))
}

func TestList_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	datasets, err := store.List()
	assert.NoError(t, err)
	assert.Empty(t, datasets)
}
