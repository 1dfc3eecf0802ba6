// internal/inference/logreg.go
package inference

import (
	"encoding/json"
	"fmt"
)

// LogisticRegression is a fitted linear classifier exported as JSON:
//
//	{"kind": "logistic_regression", "classes": [0, 1, 2],
//	 "coef": [[...], [...], [...]], "intercept": [...]}
//
// Binary models carry a single coefficient row.
type LogisticRegression struct {
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func decodeLogisticRegression(payload []byte) (*LogisticRegression, error) {
	var m LogisticRegression
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, invalidModel("decode logistic regression: %v", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LogisticRegression) validate() error {
	if len(m.Classes) < 2 {
		return invalidModel("logistic regression needs at least 2 classes, got %d", len(m.Classes))
	}
	rows := len(m.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(m.Coef) != rows {
		return invalidModel("coef has %d rows, expected %d", len(m.Coef), rows)
	}
	if len(m.Intercept) != rows {
		return invalidModel("intercept has %d values, expected %d", len(m.Intercept), rows)
	}
	for i, row := range m.Coef {
		if len(row) != NumFeatures {
			return invalidModel("coef row %d has %d features, expected %d", i, len(row), NumFeatures)
		}
	}
	return nil
}

// Predict returns the class with the highest decision score per sample.
func (m *LogisticRegression) Predict(batch [][]float64) ([]int, error) {
	if err := checkBatch(batch); err != nil {
		return nil, err
	}

	labels := make([]int, len(batch))
	for i, sample := range batch {
		if len(m.Coef) == 1 {
			if m.score(0, sample) > 0 {
				labels[i] = m.Classes[1]
			} else {
				labels[i] = m.Classes[0]
			}
			continue
		}

		best := 0
		bestScore := m.score(0, sample)
		for k := 1; k < len(m.Coef); k++ {
			if s := m.score(k, sample); s > bestScore {
				best, bestScore = k, s
			}
		}
		labels[i] = m.Classes[best]
	}
	return labels, nil
}

func (m *LogisticRegression) score(k int, sample []float64) float64 {
	s := m.Intercept[k]
	for j, w := range m.Coef[k] {
		s += w * sample[j]
	}
	return s
}

// Close is a no-op; the model holds no native resources.
func (m *LogisticRegression) Close() error {
	return nil
}

func (m *LogisticRegression) String() string {
	return fmt.Sprintf("logistic_regression(classes=%v)", m.Classes)
}

var _ Engine = (*LogisticRegression)(nil)
