// Package trainer orchestrates retraining of the classification models from
// uploaded CSV datasets. Tokenization, fine-tuning and inference are
// delegated entirely to the ML service; this side owns dataset preparation,
// the train/validation split and the evaluation metrics.
package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"threatscan/internal/apperr"
	"threatscan/internal/datastore"
	"threatscan/internal/mlservice"
	"threatscan/internal/modelstatus"
	"threatscan/internal/models"
)

// Fixed hyperparameters, matching what the binary model was originally
// fine-tuned with. No checkpointing.
const (
	trainEpochs    = 2
	trainBatchSize = 8
	valFraction    = 0.2
	splitSeed      = 42
)

// BinaryTrainer fine-tunes the binary model and predicts the validation split.
type BinaryTrainer interface {
	TrainBinary(ctx context.Context, req mlservice.TrainBinaryRequest) (*mlservice.TrainBinaryResponse, error)
}

// Trainer runs retraining end to end: dataset validation, delegation to the
// ML service, evaluation, and the status/metrics file updates.
type Trainer struct {
	datasets    *datastore.Store
	status      *modelstatus.Store
	ml          BinaryTrainer
	metricsPath string
	logger      *zap.Logger
}

func NewTrainer(datasets *datastore.Store, status *modelstatus.Store, ml BinaryTrainer, metricsPath string, logger *zap.Logger) *Trainer {
	return &Trainer{
		datasets:    datasets,
		status:      status,
		ml:          ml,
		metricsPath: metricsPath,
		logger:      logger,
	}
}

// HasDataset reports whether the named dataset is available for training.
func (t *Trainer) HasDataset(name string) bool {
	return t.datasets.Exists(name)
}

// Retrain retrains the requested models on a stored dataset and returns the
// run's stats. The status document and the metrics snapshot are both
// overwritten after the requested sub-trainings run, even when only one flag
// was set.
func (t *Trainer) Retrain(ctx context.Context, dataset string, retrainBinary, retrainMulti bool) (*models.TrainingStats, error) {
	if !t.datasets.Exists(dataset) {
		return nil, apperr.Newf(apperr.KindNotFound, "dataset %s not found", dataset)
	}

	status, err := t.status.ReadRequired()
	if err != nil {
		return nil, err
	}

	t.logger.Info("Starting retraining",
		zap.String("dataset", dataset),
		zap.Bool("retrain_binary", retrainBinary),
		zap.Bool("retrain_multi", retrainMulti))

	stats := &models.TrainingStats{
		DatasetUsed: dataset,
		RetrainTime: time.Now().UTC().Format(time.RFC3339),
	}

	if retrainBinary {
		start := time.Now()
		metrics, err := t.trainBinary(ctx, dataset)
		if err != nil {
			return nil, err
		}
		elapsed := round2(time.Since(start).Seconds())

		stats.BinaryModel = metrics
		stats.TrainingTimeSec = &elapsed
		status.BinaryModel.TrainedOn = dataset
		status.BinaryModel.LastUpdated = metrics.LastTrained

		t.logger.Info("Binary model retrained",
			zap.Float64("accuracy", metrics.Accuracy),
			zap.Float64("f1_score", metrics.F1Score),
			zap.Float64("training_time_sec", elapsed))
	}

	if retrainMulti {
		// Multi-class retraining is not implemented; the metrics are a
		// fixed placeholder and the dataset is never read on this path.
		metrics := placeholderMultiMetrics()
		stats.MultiModel = metrics
		status.MultiModel.TrainedOn = dataset
		status.MultiModel.LastUpdated = metrics.LastTrained

		t.logger.Warn("Multi-class retraining is a stub, recording placeholder metrics")
	}

	if err := t.status.Write(status); err != nil {
		return nil, err
	}
	if err := t.writeSnapshot(stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (t *Trainer) trainBinary(ctx context.Context, dataset string) (*models.ModelMetrics, error) {
	examples, err := loadDataset(t.datasets.Path(dataset))
	if err != nil {
		return nil, err
	}

	train, val := splitDataset(examples, valFraction, splitSeed)

	req := mlservice.TrainBinaryRequest{
		TrainTexts:  make([]string, len(train)),
		TrainLabels: make([]int, len(train)),
		ValTexts:    make([]string, len(val)),
		Epochs:      trainEpochs,
		BatchSize:   trainBatchSize,
	}
	for i, ex := range train {
		req.TrainTexts[i] = ex.text
		req.TrainLabels[i] = ex.label
	}
	valLabels := make([]int, len(val))
	for i, ex := range val {
		req.ValTexts[i] = ex.text
		valLabels[i] = ex.label
	}

	resp, err := t.ml.TrainBinary(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("binary training failed: %w", err)
	}
	if len(resp.Predictions) != len(val) {
		return nil, fmt.Errorf("ML service returned %d validation predictions, expected %d", len(resp.Predictions), len(val))
	}

	metrics := evaluate(valLabels, resp.Predictions)
	metrics.LastTrained = time.Now().UTC().Format(time.RFC3339)
	return &metrics, nil
}

// LastStats returns the metrics snapshot of the most recent retraining run.
func (t *Trainer) LastStats() (*models.TrainingStats, error) {
	data, err := os.ReadFile(t.metricsPath)
	if os.IsNotExist(err) {
		return nil, apperr.New(apperr.KindNotFound, "no training run recorded yet")
	}
	if err != nil {
		return nil, err
	}

	var stats models.TrainingStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse metrics snapshot %s: %w", t.metricsPath, err)
	}
	return &stats, nil
}

func (t *Trainer) writeSnapshot(stats *models.TrainingStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal training stats: %w", err)
	}
	if err := os.WriteFile(t.metricsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics snapshot %s: %w", t.metricsPath, err)
	}
	return nil
}

func placeholderMultiMetrics() *models.ModelMetrics {
	return &models.ModelMetrics{
		Accuracy:    0.85,
		Precision:   0.82,
		Recall:      0.83,
		F1Score:     0.825,
		LastTrained: time.Now().UTC().Format(time.RFC3339),
	}
}
