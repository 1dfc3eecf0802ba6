// internal/inference/inference_test.go
package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var irisSamples = []struct {
	name     string
	features []float64
	label    int
}{
	{"setosa", []float64{5.1, 3.5, 1.4, 0.2}, 0},
	{"versicolor", []float64{6.0, 2.7, 4.1, 1.0}, 1},
	{"virginica", []float64{6.7, 3.0, 5.2, 2.3}, 2},
}

func writeArtifact(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestMockEngine_Predict(t *testing.T) {
	mock := NewMockWithLabel(2)

	labels, err := mock.Predict([][]float64{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6, 0.7, 0.8}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, labels)
	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, [][]float64{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6, 0.7, 0.8}}, mock.LastBatch())
}

func TestMockEngine_PredictError(t *testing.T) {
	mock := NewMock()
	mock.SetError("test error")

	_, err := mock.Predict([][]float64{{0.1, 0.2, 0.3, 0.4}})
	require.EqualError(t, err, "test error")

	mock.ClearError()
	labels, err := mock.Predict([][]float64{{0.1, 0.2, 0.3, 0.4}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, labels)
}

func TestMockEngine_WrongSampleSize(t *testing.T) {
	_, err := NewMock().Predict([][]float64{{0.1, 0.2}})
	require.Error(t, err)

	_, err = NewMock().Predict(nil)
	require.Error(t, err)
}

func TestLoad_LogisticRegression(t *testing.T) {
	engine, err := Load(Options{Path: "testdata/iris_logreg.json"})
	require.NoError(t, err)
	defer engine.Close()

	require.IsType(t, &LogisticRegression{}, engine)
	for _, tc := range irisSamples {
		t.Run(tc.name, func(t *testing.T) {
			labels, err := engine.Predict([][]float64{tc.features})
			require.NoError(t, err)
			assert.Equal(t, []int{tc.label}, labels)
		})
	}
}

func TestLoad_DecisionTree(t *testing.T) {
	engine, err := Load(Options{Path: "testdata/iris_tree.json"})
	require.NoError(t, err)
	defer engine.Close()

	require.IsType(t, &DecisionTree{}, engine)
	batch := make([][]float64, 0, len(irisSamples))
	want := make([]int, 0, len(irisSamples))
	for _, tc := range irisSamples {
		batch = append(batch, tc.features)
		want = append(want, tc.label)
	}
	labels, err := engine.Predict(batch)
	require.NoError(t, err)
	assert.Equal(t, want, labels)
}

func TestLoad_ExplicitFormatOverridesKind(t *testing.T) {
	path := writeArtifact(t, "model.bin", `{"classes":[3,7],"coef":[[1,0,0,0]],"intercept":[-5]}`)

	engine, err := Load(Options{Path: path, Format: FormatLogReg})
	require.NoError(t, err)

	labels, err := engine.Predict([][]float64{{6, 0, 0, 0}, {4, 0, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, labels)
}

func TestLoad_MissingArtifact(t *testing.T) {
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "missing.onnx")})
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestLoad_CorruptArtifacts(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"kind": `,
		"no kind":        `{"classes": [0, 1]}`,
		"unknown kind":   `{"kind": "svm"}`,
		"coef width":     `{"kind":"logistic_regression","classes":[0,1,2],"coef":[[1,2,3],[1,2,3],[1,2,3]],"intercept":[0,0,0]}`,
		"coef rows":      `{"kind":"logistic_regression","classes":[0,1,2],"coef":[[1,2,3,4]],"intercept":[0]}`,
		"one class":      `{"kind":"logistic_regression","classes":[0],"coef":[[1,2,3,4]],"intercept":[0]}`,
		"empty tree":     `{"kind":"decision_tree","nodes":[]}`,
		"tree bad child": `{"kind":"decision_tree","nodes":[{"feature_idx":0,"threshold":1,"left_child":0,"right_child":5}]}`,
		"tree feature":   `{"kind":"decision_tree","nodes":[{"feature_idx":9,"threshold":1,"left_child":1,"right_child":2},{"is_leaf":true},{"is_leaf":true}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(Options{Path: writeArtifact(t, "model.json", body)})
			require.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(Options{Path: t.TempDir()})
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(Options{Path: "testdata/iris_tree.json", Format: "pickle"})
	require.Error(t, err)
}

func TestLoad_Mock(t *testing.T) {
	engine, err := Load(Options{Path: "does-not-matter", UseMock: true})
	require.NoError(t, err)
	assert.IsType(t, &MockEngine{}, engine)
}

func TestLoadMetadata(t *testing.T) {
	meta, err := loadMetadata("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetadata(), meta)

	path := writeArtifact(t, "meta.json", `{"output_name":"probabilities","output":"scores","classes":[0,1,2]}`)
	meta, err = loadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "float_input", meta.InputName)
	assert.Equal(t, OutputScores, meta.Output)

	path = writeArtifact(t, "meta.json", `{"output":"scores"}`)
	_, err = loadMetadata(path)
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, argmax([]float32{0.9, 0.05, 0.05}))
	assert.Equal(t, 2, argmax([]float32{0.1, 0.2, 0.7}))
	assert.Equal(t, 1, argmax([]float32{0.1, 0.5, 0.5}))
}

func TestONNXEngine_WithModel(t *testing.T) {
	// Skip if ONNX model or library is not available
	modelPath := "testdata/iris.onnx"
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		t.Skip("Skipping ONNX test: testdata/iris.onnx not found")
	}

	engine, err := Load(Options{Path: modelPath, SharedLibraryPath: os.Getenv("ONNXRUNTIME_LIB")})
	if err != nil {
		t.Skipf("Skipping ONNX test: %v", err)
	}
	defer engine.Close()

	labels, err := engine.Predict([][]float64{irisSamples[0].features, irisSamples[2].features})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, labels)
}
