// internal/inference/mock.go
package inference

import (
	"fmt"
	"sync"
)

// MockEngine is a deterministic Engine for tests and for running the
// service without an onnxruntime shared library.
type MockEngine struct {
	mu        sync.Mutex
	label     int
	errMsg    string
	panicMsg  string
	calls     int
	lastBatch [][]float64
}

// NewMock creates a MockEngine that labels every sample as class 0.
func NewMock() *MockEngine {
	return &MockEngine{}
}

// NewMockWithLabel creates a MockEngine that labels every sample as label.
func NewMockWithLabel(label int) *MockEngine {
	return &MockEngine{label: label}
}

// Predict returns the configured label for each sample in the batch.
func (m *MockEngine) Predict(batch [][]float64) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastBatch = make([][]float64, len(batch))
	for i, sample := range batch {
		m.lastBatch[i] = append([]float64(nil), sample...)
	}

	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.errMsg != "" {
		return nil, fmt.Errorf("%s", m.errMsg)
	}
	if err := checkBatch(batch); err != nil {
		return nil, err
	}

	labels := make([]int, len(batch))
	for i := range labels {
		labels[i] = m.label
	}
	return labels, nil
}

// Close is a no-op for the mock implementation
func (m *MockEngine) Close() error {
	return nil
}

// SetError makes subsequent Predict calls fail with msg.
func (m *MockEngine) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = msg
}

// SetPanic makes subsequent Predict calls panic with msg.
func (m *MockEngine) SetPanic(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
}

// ClearError clears any configured error or panic
func (m *MockEngine) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
	m.panicMsg = ""
}

// Calls reports how many times Predict was invoked.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastBatch returns a copy of the batch passed to the latest Predict call.
func (m *MockEngine) LastBatch() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBatch
}

// Ensure MockEngine implements Engine at compile time
var _ Engine = (*MockEngine)(nil)
