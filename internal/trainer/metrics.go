package trainer

import (
	"math"

	"threatscan/internal/models"
)

// evaluate computes accuracy, precision, recall and F1 for the malicious
// class (label 1) over the validation predictions. Degenerate denominators
// yield 0, not an error.
func evaluate(labels, preds []int) models.ModelMetrics {
	var correct, tp, fp, fn int
	for i, label := range labels {
		pred := preds[i]
		if pred == label {
			correct++
		}
		switch {
		case pred == 1 && label == 1:
			tp++
		case pred == 1 && label == 0:
			fp++
		case pred == 0 && label == 1:
			fn++
		}
	}

	var accuracy, precision, recall, f1 float64
	if len(labels) > 0 {
		accuracy = float64(correct) / float64(len(labels))
	}
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return models.ModelMetrics{
		Accuracy:  round4(accuracy),
		Precision: round4(precision),
		Recall:    round4(recall),
		F1Score:   round4(f1),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
