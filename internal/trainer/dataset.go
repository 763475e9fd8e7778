package trainer

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"threatscan/internal/apperr"
)

// example is a single labeled training row. Label 1 is the malicious class.
type example struct {
	text  string
	label int
}

// loadDataset parses a training CSV. The file must carry `text` and `label`
// columns; label values mapping case-insensitively to "negative" become the
// malicious class 1 and everything else class 0.
func loadDataset(path string) ([]example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "failed to parse dataset CSV", err)
	}
	if len(records) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "dataset is empty")
	}

	textCol, labelCol := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "dataset must contain 'text' and 'label' columns")
	}

	examples := make([]example, 0, len(records)-1)
	for _, record := range records[1:] {
		label := 0
		if strings.EqualFold(strings.TrimSpace(record[labelCol]), "negative") {
			label = 1
		}
		examples = append(examples, example{text: record[textCol], label: label})
	}

	if len(examples) < 2 {
		return nil, apperr.New(apperr.KindInvalidInput, "dataset needs at least 2 rows for a train/validation split")
	}
	return examples, nil
}

// splitDataset shuffles the examples with a fixed seed and carves off the
// validation fraction, so repeated runs over the same dataset produce the
// same split.
func splitDataset(examples []example, valFraction float64, seed int64) (train, val []example) {
	n := len(examples)
	nVal := int(math.Ceil(float64(n) * valFraction))
	if nVal >= n {
		nVal = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	val = make([]example, 0, nVal)
	train = make([]example, 0, n-nVal)
	for i, idx := range perm {
		if i < nVal {
			val = append(val, examples[idx])
		} else {
			train = append(train, examples[idx])
		}
	}
	return train, val
}
