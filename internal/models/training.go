package models

// ModelMetrics holds the evaluation summary of a single training run.
type ModelMetrics struct {
	Accuracy    float64 `json:"accuracy"`
	Precision   float64 `json:"precision"`
	Recall      float64 `json:"recall"`
	F1Score     float64 `json:"f1_score"`
	LastTrained string  `json:"last_trained"`
}

// TrainingStats is the snapshot of the most recent retraining run. A single
// instance is kept on disk and overwritten on every run; no history is
// retained.
type TrainingStats struct {
	DatasetUsed     string        `json:"dataset_used"`
	RetrainTime     string        `json:"retrain_time"`
	TrainingTimeSec *float64      `json:"training_time_sec"`
	BinaryModel     *ModelMetrics `json:"binary_model"`
	MultiModel      *ModelMetrics `json:"multi_model"`
}
