// internal/inference/loader.go
package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Model artifact formats.
const (
	FormatAuto   = ""
	FormatONNX   = "onnx"
	FormatLogReg = "logreg"
	FormatTree   = "tree"
)

// Formats lists the accepted values for Options.Format.
var Formats = []string{FormatAuto, FormatONNX, FormatLogReg, FormatTree}

// Options describes where the model artifact lives and how to open it.
type Options struct {
	Path              string
	Format            string
	MetadataPath      string
	SharedLibraryPath string
	UseMock           bool
}

// Load opens the model artifact once. Any error is fatal for the caller:
// the service cannot run without a model.
func Load(opts Options) (Engine, error) {
	if opts.UseMock {
		return NewMock(), nil
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, opts.Path)
		}
		return nil, fmt.Errorf("stat model %s: %w", opts.Path, err)
	}
	if info.IsDir() {
		return nil, invalidModel("%s is a directory", opts.Path)
	}

	format := opts.Format
	if format == FormatAuto && strings.EqualFold(filepath.Ext(opts.Path), ".onnx") {
		format = FormatONNX
	}

	if format == FormatONNX {
		meta, err := loadMetadata(opts.MetadataPath)
		if err != nil {
			return nil, err
		}
		return NewONNX(opts.Path, meta, opts.SharedLibraryPath)
	}

	payload, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", opts.Path, err)
	}
	if format == FormatAuto {
		format, err = sniffFormat(payload)
		if err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatLogReg:
		return decodeLogisticRegression(payload)
	case FormatTree:
		return decodeDecisionTree(payload)
	default:
		return nil, fmt.Errorf("unsupported model format %q", format)
	}
}

// sniffFormat reads the "kind" field of a JSON artifact.
func sniffFormat(payload []byte) (string, error) {
	var header struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return "", invalidModel("decode artifact header: %v", err)
	}
	switch header.Kind {
	case "logistic_regression":
		return FormatLogReg, nil
	case "decision_tree":
		return FormatTree, nil
	case "":
		return "", invalidModel("artifact has no kind field")
	default:
		return "", invalidModel("unknown artifact kind %q", header.Kind)
	}
}
