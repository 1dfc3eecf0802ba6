// internal/inference/onnx.go
package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEngine wraps an ONNX runtime session. The dynamic session allocates
// tensors per call, so concurrent Predict calls share nothing but the
// session, which onnxruntime allows to Run concurrently.
type ONNXEngine struct {
	session   *ort.DynamicAdvancedSession
	meta      Metadata
	closeOnce sync.Once
	closeErr  error
}

// NewONNX creates an ONNXEngine by loading the model from modelPath.
// libraryPath overrides the onnxruntime shared library location when set.
func NewONNX(modelPath string, meta Metadata, libraryPath string) (*ONNXEngine, error) {
	if err := meta.validate(); err != nil {
		return nil, err
	}

	if !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{meta.InputName},
		[]string{meta.OutputName},
		nil,
	)
	if err != nil {
		return nil, invalidModel("failed to create ONNX session: %v", err)
	}

	return &ONNXEngine{
		session: session,
		meta:    meta,
	}, nil
}

// Predict runs the batch through the session as a float32 [batch, 4] tensor.
func (e *ONNXEngine) Predict(batch [][]float64) ([]int, error) {
	if e.session == nil {
		return nil, fmt.Errorf("inference session is nil")
	}
	if err := checkBatch(batch); err != nil {
		return nil, err
	}

	n := int64(len(batch))
	tensorData := make([]float32, 0, n*NumFeatures)
	for _, sample := range batch {
		for _, v := range sample {
			tensorData = append(tensorData, float32(v))
		}
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(n, NumFeatures), tensorData)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	if e.meta.Output == OutputScores {
		return e.predictScores(inputTensor, n)
	}
	return e.predictLabels(inputTensor, n)
}

func (e *ONNXEngine) predictLabels(input *ort.Tensor[float32], n int64) ([]int, error) {
	output, err := ort.NewEmptyTensor[int64](ort.NewShape(n))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	raw := output.GetData()
	labels := make([]int, len(raw))
	for i, v := range raw {
		labels[i] = int(v)
	}
	return labels, nil
}

func (e *ONNXEngine) predictScores(input *ort.Tensor[float32], n int64) ([]int, error) {
	numClasses := int64(len(e.meta.Classes))
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(n, numClasses))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := output.GetData()
	labels := make([]int, n)
	for i := range labels {
		row := scores[int64(i)*numClasses : int64(i+1)*numClasses]
		labels[i] = e.meta.Classes[argmax(row)]
	}
	return labels, nil
}

func argmax(row []float32) int {
	maxIdx := 0
	for i, v := range row {
		if v > row[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}

// Close releases the ONNX session and the runtime environment.
func (e *ONNXEngine) Close() error {
	e.closeOnce.Do(func() {
		if e.session != nil {
			if err := e.session.Destroy(); err != nil {
				e.closeErr = fmt.Errorf("failed to destroy session: %w", err)
				return
			}
		}
		e.closeErr = ort.DestroyEnvironment()
	})
	return e.closeErr
}

// Ensure ONNXEngine implements Engine at compile time
var _ Engine = (*ONNXEngine)(nil)
