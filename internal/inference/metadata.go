// internal/inference/metadata.go
package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	// OutputLabel reads an int64 label tensor of shape [batch].
	OutputLabel = "label"
	// OutputScores reads a float32 score tensor of shape [batch, classes]
	// and takes the argmax.
	OutputScores = "scores"
)

// Metadata describes the tensors of an ONNX classifier. It is read from an
// optional JSON sidecar next to the model.
type Metadata struct {
	InputName  string `json:"input_name"`
	OutputName string `json:"output_name"`
	Output     string `json:"output"`
	// Classes maps score columns to class labels in scores mode.
	// When empty in label mode the raw label is returned.
	Classes []int `json:"classes"`
}

// DefaultMetadata matches the tensor names skl2onnx emits for classifiers
// converted with zipmap disabled.
func DefaultMetadata() Metadata {
	return Metadata{
		InputName:  "float_input",
		OutputName: "label",
		Output:     OutputLabel,
	}
}

func loadMetadata(path string) (Metadata, error) {
	meta := DefaultMetadata()
	if path == "" {
		return meta, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(payload, &meta); err != nil {
		return meta, invalidModel("parse metadata %s: %v", path, err)
	}
	if err := meta.validate(); err != nil {
		return meta, err
	}
	return meta, nil
}

func (m Metadata) validate() error {
	if m.InputName == "" || m.OutputName == "" {
		return invalidModel("metadata requires input_name and output_name")
	}
	switch m.Output {
	case OutputLabel:
	case OutputScores:
		if len(m.Classes) == 0 {
			return invalidModel("scores output requires a classes list")
		}
	default:
		return invalidModel("unknown output mode %q", m.Output)
	}
	return nil
}
