package trainer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"threatscan/internal/apperr"
	"threatscan/internal/datastore"
	"threatscan/internal/mlservice"
	"threatscan/internal/modelstatus"
)

type fakeML struct {
	lastReq *mlservice.TrainBinaryRequest
	predict func(req mlservice.TrainBinaryRequest) []int
	err     error
	calls   int
}

func (f *fakeML) TrainBinary(ctx context.Context, req mlservice.TrainBinaryRequest) (*mlservice.TrainBinaryResponse, error) {
	f.calls++
	f.lastReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return &mlservice.TrainBinaryResponse{Predictions: f.predict(req)}, nil
}

// allOnes labels every validation text as the malicious class.
func allOnes(req mlservice.TrainBinaryRequest) []int {
	preds := make([]int, len(req.ValTexts))
	for i := range preds {
		preds[i] = 1
	}
	return preds
}

func newTestTrainer(t *testing.T, ml BinaryTrainer, withStatus bool) (*Trainer, *datastore.Store, *modelstatus.Store) {
	t.Helper()
	dir := t.TempDir()

	datasets, err := datastore.NewStore(filepath.Join(dir, "datasets"))
	if err != nil {
		t.Fatalf("Failed to create dataset store: %v", err)
	}

	status := modelstatus.NewStore(filepath.Join(dir, "model_status.json"))
	if withStatus {
		if _, err := status.Read(); err != nil {
			t.Fatalf("Failed to seed status file: %v", err)
		}
	}

	tr := NewTrainer(datasets, status, ml, filepath.Join(dir, "training_stats.json"), zap.NewNop())
	return tr, datasets, status
}

func seedDataset(t *testing.T, datasets *datastore.Store, name, content string) {
	t.Helper()
	if err := datasets.Save(name, strings.NewReader(content)); err != nil {
		t.Fatalf("Failed to seed dataset: %v", err)
	}
}

const maliciousCSV = `text,label
click here to win,negative
verify your account,negative
your package shipped,positive
meeting at noon,positive
reset your password now,negative
lunch tomorrow?,positive
urgent wire transfer,negative
weekly report attached,positive
free prize awaits,negative
see you at the standup,positive
`

func TestRetrain_Binary(t *testing.T) {
	ml := &fakeML{predict: func(req mlservice.TrainBinaryRequest) []int {
		// Echo a perfect classifier by predicting from the text content.
		preds := make([]int, len(req.ValTexts))
		for i, text := range req.ValTexts {
			if strings.Contains(text, "click") || strings.Contains(text, "verify") ||
				strings.Contains(text, "password") || strings.Contains(text, "wire") ||
				strings.Contains(text, "prize") {
				preds[i] = 1
			}
		}
		return preds
	}}
	tr, datasets, status := newTestTrainer(t, ml, true)
	seedDataset(t, datasets, "train.csv", maliciousCSV)

	stats, err := tr.Retrain(context.Background(), "train.csv", true, false)
	assert.NoError(t, err)

	assert.Equal(t, "train.csv", stats.DatasetUsed)
	assert.NotNil(t, stats.BinaryModel)
	assert.Nil(t, stats.MultiModel)
	assert.NotNil(t, stats.TrainingTimeSec)
	assert.Equal(t, 1.0, stats.BinaryModel.Accuracy, "fake predicts perfectly")

	assert.Equal(t, 2, ml.lastReq.Epochs)
	assert.Equal(t, 8, ml.lastReq.BatchSize)
	assert.Len(t, ml.lastReq.ValTexts, 2, "10 rows split 80/20")
	assert.Len(t, ml.lastReq.TrainTexts, 8)

	updated, err := status.ReadRequired()
	assert.NoError(t, err)
	assert.Equal(t, "train.csv", updated.BinaryModel.TrainedOn)
	assert.Equal(t, stats.BinaryModel.LastTrained, updated.BinaryModel.LastUpdated)

	snapshot, err := tr.LastStats()
	assert.NoError(t, err)
	assert.Equal(t, stats.DatasetUsed, snapshot.DatasetUsed)
}

func TestRetrain_MultiIsPlaceholderAndNeverReadsDataset(t *testing.T) {
	ml := &fakeML{predict: allOnes}
	tr, datasets, status := newTestTrainer(t, ml, true)
	// Garbage content: the multi path must not parse it.
	seedDataset(t, datasets, "garbage.csv", "not,a\nvalid\"csv")

	stats, err := tr.Retrain(context.Background(), "garbage.csv", false, true)
	assert.NoError(t, err)

	assert.Equal(t, 0, ml.calls, "multi-class path must not call the trainer")
	assert.Nil(t, stats.BinaryModel)
	assert.NotNil(t, stats.MultiModel)
	assert.Equal(t, 0.85, stats.MultiModel.Accuracy)
	assert.Equal(t, 0.82, stats.MultiModel.Precision)
	assert.Equal(t, 0.83, stats.MultiModel.Recall)
	assert.Equal(t, 0.825, stats.MultiModel.F1Score)

	updated, err := status.ReadRequired()
	assert.NoError(t, err)
	assert.Equal(t, "garbage.csv", updated.MultiModel.TrainedOn)
}

func TestRetrain_MissingDatasetIsNotFound(t *testing.T) {
	tr, _, _ := newTestTrainer(t, &fakeML{predict: allOnes}, true)

	_, err := tr.Retrain(context.Background(), "missing.csv", true, false)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRetrain_MissingStatusFileIsFatalConfig(t *testing.T) {
	tr, datasets, _ := newTestTrainer(t, &fakeML{predict: allOnes}, false)
	seedDataset(t, datasets, "train.csv", maliciousCSV)

	_, err := tr.Retrain(context.Background(), "train.csv", true, false)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindFatalConfig, apperr.KindOf(err))
}

func TestRetrain_SnapshotOverwrittenEvenWhenOnlyOneFlagSet(t *testing.T) {
	ml := &fakeML{predict: allOnes}
	tr, datasets, _ := newTestTrainer(t, ml, true)
	seedDataset(t, datasets, "a.csv", maliciousCSV)
	seedDataset(t, datasets, "b.csv", maliciousCSV)

	_, err := tr.Retrain(context.Background(), "a.csv", true, false)
	assert.NoError(t, err)
	_, err = tr.Retrain(context.Background(), "b.csv", false, true)
	assert.NoError(t, err)

	snapshot, err := tr.LastStats()
	assert.NoError(t, err)
	assert.Equal(t, "b.csv", snapshot.DatasetUsed)
	assert.Nil(t, snapshot.BinaryModel, "snapshot holds only the latest run")
}

func TestLastStats_NotFoundBeforeFirstRun(t *testing.T) {
	tr, _, _ := newTestTrainer(t, &fakeML{predict: allOnes}, true)

	_, err := tr.LastStats()
	assert.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")

	csv := "text,label\nclick now,NEGATIVE\nhello,positive\nbuy stuff,Negative\nnews,neutral\n"
	assert.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	examples, err := loadDataset(path)
	assert.NoError(t, err)
	assert.Len(t, examples, 4)
	assert.Equal(t, 1, examples[0].label, "label mapping is case-insensitive")
	assert.Equal(t, 0, examples[1].label)
	assert.Equal(t, 1, examples[2].label)
	assert.Equal(t, 0, examples[3].label, "non-negative labels map to class 0")
	assert.Equal(t, "click now", examples[0].text)
}

func TestLoadDataset_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	assert.NoError(t, os.WriteFile(path, []byte("body,sentiment\nhi,positive\n"), 0644))

	_, err := loadDataset(path)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestLoadDataset_TooFewRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	assert.NoError(t, os.WriteFile(path, []byte("text,label\nonly one,negative\n"), 0644))

	_, err := loadDataset(path)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestSplitDataset_DeterministicAndSized(t *testing.T) {
	examples := make([]example, 10)
	for i := range examples {
		examples[i] = example{text: strings.Repeat("x", i+1), label: i % 2}
	}

	train1, val1 := splitDataset(examples, 0.2, 42)
	train2, val2 := splitDataset(examples, 0.2, 42)

	assert.Len(t, val1, 2)
	assert.Len(t, train1, 8)
	assert.Equal(t, train1, train2, "same seed must produce the same split")
	assert.Equal(t, val1, val2)

	// Every example lands in exactly one side.
	seen := map[string]int{}
	for _, ex := range append(append([]example{}, train1...), val1...) {
		seen[ex.text]++
	}
	assert.Len(t, seen, 10)
	for text, count := range seen {
		assert.Equal(t, 1, count, "example %q duplicated across splits", text)
	}
}

func TestEvaluate(t *testing.T) {
	labels := []int{1, 0, 1, 1}
	preds := []int{1, 0, 0, 1}

	metrics := evaluate(labels, preds)

	assert.Equal(t, 0.75, metrics.Accuracy)
	assert.Equal(t, 1.0, metrics.Precision)
	assert.Equal(t, 0.6667, metrics.Recall)
	assert.Equal(t, 0.8, metrics.F1Score)
}

func TestEvaluate_NoPositivePredictions(t *testing.T) {
	metrics := evaluate([]int{0, 0, 1}, []int{0, 0, 0})

	assert.Equal(t, 0.6667, metrics.Accuracy)
	assert.Equal(t, 0.0, metrics.Precision)
	assert.Equal(t, 0.0, metrics.Recall)
	assert.Equal(t, 0.0, metrics.F1Score)
}
