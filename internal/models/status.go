package models

// Classification modes.
const (
	ModeHybrid     = "hybrid"
	ModeBinaryOnly = "binary-only"
	ModeMultiOnly  = "multi-only"
)

// ValidMode reports whether mode is one of the recognized classification modes.
func ValidMode(mode string) bool {
	switch mode {
	case ModeHybrid, ModeBinaryOnly, ModeMultiOnly:
		return true
	}
	return false
}

// ModelInfo describes one of the two models tracked by the status document.
type ModelInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	TrainedOn   string `json:"trained_on"`
	LastUpdated string `json:"last_updated"`
}

// ModelStatus is the persisted model status document. Exactly one instance
// exists, stored as a JSON file at a configured path.
type ModelStatus struct {
	BinaryModel ModelInfo `json:"binary_model"`
	MultiModel  ModelInfo `json:"multi_model"`
	Mode        string    `json:"mode"`
}
