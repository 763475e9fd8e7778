// Package classifier dispatches text classification to the binary and
// zero-shot models according to the active mode and merges their outputs.
package classifier

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"threatscan/internal/mlservice"
	"threatscan/internal/models"
)

// Categories the zero-shot model ranks, in the order sent to the model.
var Categories = []string{"phishing", "HTML injection", "malware", "safe"}

// Keywords surfaced as highlighted tokens. Matches are returned in this
// order regardless of where they occur in the text.
var keywords = []string{"account", "verify", "login", "click", "script"}

// BinaryModel produces a two-class malicious/benign judgment with confidence.
type BinaryModel interface {
	ClassifyBinary(ctx context.Context, text string) (*mlservice.BinaryResult, error)
}

// MultiModel ranks a fixed set of threat-type labels by confidence.
type MultiModel interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string) (*mlservice.ZeroShotResult, error)
}

// ModeSource reports the active classification mode.
type ModeSource interface {
	Mode() (string, error)
}

// Orchestrator runs one or both models depending on the active mode. Model
// adapters are injected so tests can substitute fakes.
type Orchestrator struct {
	binary BinaryModel
	multi  MultiModel
	modes  ModeSource
	logger *zap.Logger
}

func NewOrchestrator(binary BinaryModel, multi MultiModel, modes ModeSource, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		binary: binary,
		multi:  multi,
		modes:  modes,
		logger: logger,
	}
}

// Classify resolves the current mode and runs the corresponding models on the
// text. Model errors propagate to the caller unchanged; there are no retries
// and no caching.
func (o *Orchestrator) Classify(ctx context.Context, text string) (*models.Classification, error) {
	mode, err := o.modes.Mode()
	if err != nil {
		return nil, err
	}

	o.logger.Debug("running classification", zap.String("mode", mode))

	result := &models.Classification{
		HighlightedTokens: ExtractKeywords(text),
	}

	switch mode {
	case models.ModeBinaryOnly:
		if err := o.applyBinary(ctx, text, result); err != nil {
			return nil, err
		}
		result.ThreatType = "unknown"
		result.ThreatScore = 0.0

	case models.ModeMultiOnly:
		if err := o.applyMulti(ctx, text, result); err != nil {
			return nil, err
		}
		// A threat-type prediction is always treated as a positive
		// detection in this mode.
		result.IsMalicious = true
		result.BinaryScore = nil

	default:
		// Hybrid, including any unrecognized stored mode. The two
		// signals are never reconciled against each other.
		if err := o.applyBinary(ctx, text, result); err != nil {
			return nil, err
		}
		if err := o.applyMulti(ctx, text, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (o *Orchestrator) applyBinary(ctx context.Context, text string, result *models.Classification) error {
	pred, err := o.binary.ClassifyBinary(ctx, text)
	if err != nil {
		return err
	}

	score := roundScore(pred.Score)
	result.IsMalicious = pred.Label == "NEGATIVE"
	result.BinaryScore = &score
	return nil
}

func (o *Orchestrator) applyMulti(ctx context.Context, text string, result *models.Classification) error {
	pred, err := o.multi.ClassifyZeroShot(ctx, text, Categories)
	if err != nil {
		return err
	}

	result.ThreatType = pred.Labels[0]
	result.ThreatScore = roundScore(pred.Scores[0])
	return nil
}

// ExtractKeywords returns the fixed keywords present in text as
// case-insensitive substrings, preserving the keyword list's order.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	matches := []string{}
	for _, word := range keywords {
		if strings.Contains(lower, word) {
			matches = append(matches, word)
		}
	}
	return matches
}

// roundScore converts a 0-1 confidence to a 0-100 score with two decimals.
func roundScore(s float64) float64 {
	return math.Round(s*100*100) / 100
}
