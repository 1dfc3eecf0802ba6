package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound is returned when the model artifact does not exist.
	ErrModelNotFound = errors.New("model artifact not found")
	// ErrInvalidModel is returned when the artifact cannot be decoded or has
	// a shape the service cannot serve.
	ErrInvalidModel = errors.New("invalid model artifact")
)

func invalidModel(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidModel, fmt.Sprintf(format, args...))
}

func checkBatch(batch [][]float64) error {
	if len(batch) == 0 {
		return fmt.Errorf("empty batch")
	}
	for i, sample := range batch {
		if len(sample) != NumFeatures {
			return fmt.Errorf("sample %d has wrong size: got %d, expected %d", i, len(sample), NumFeatures)
		}
	}
	return nil
}
