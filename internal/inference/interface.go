// internal/inference/interface.go
package inference

// NumFeatures is the input width every engine accepts.
const NumFeatures = 4

// Engine defines the interface for running classifier inference.
// Implementations are immutable once loaded and safe for concurrent use.
type Engine interface {
	// Predict classifies a batch of samples and returns one class label per
	// sample, in order. Each sample holds NumFeatures values.
	Predict(batch [][]float64) ([]int, error)

	// Close releases any resources held by the engine.
	Close() error
}
