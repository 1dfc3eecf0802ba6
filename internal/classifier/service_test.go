// internal/classifier/service_test.go
package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedDaiam9101/classifier-service/internal/inference"
)

type emptyEngine struct{}

func (emptyEngine) Predict([][]float64) ([]int, error) { return nil, nil }
func (emptyEngine) Close() error                       { return nil }

func TestPredict_ForwardsVectorUnmodified(t *testing.T) {
	mock := inference.NewMockWithLabel(1)
	svc := New(mock)

	p, err := svc.Predict(context.Background(), FeatureVector{6.0, 2.7, 4.1, 1.0})
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: 1}, p)

	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, [][]float64{{6.0, 2.7, 4.1, 1.0}}, mock.LastBatch())
}

func TestPredict_Idempotent(t *testing.T) {
	engine, err := inference.Load(inference.Options{Path: "../inference/testdata/iris_logreg.json"})
	require.NoError(t, err)
	svc := New(engine)

	v := FeatureVector{5.1, 3.5, 1.4, 0.2}
	first, err := svc.Predict(context.Background(), v)
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, 0, first.Label)
	assert.Equal(t, first, second)
}

func TestPredict_EngineError(t *testing.T) {
	mock := inference.NewMock()
	mock.SetError("model execution failed")
	svc := New(mock)

	_, err := svc.Predict(context.Background(), FeatureVector{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, IsInference(err))
	assert.Equal(t, "model execution failed", err.Error())

	mock.ClearError()
	p, err := svc.Predict(context.Background(), FeatureVector{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Label)
}

func TestPredict_EnginePanicIsRecovered(t *testing.T) {
	mock := inference.NewMock()
	mock.SetPanic("index out of range")
	svc := New(mock)

	_, err := svc.Predict(context.Background(), FeatureVector{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, IsInference(err))
	assert.Equal(t, "panic: index out of range", err.Error())
}

func TestPredict_EmptyOutput(t *testing.T) {
	svc := New(emptyEngine{})

	_, err := svc.Predict(context.Background(), FeatureVector{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, IsInference(err))
}

func TestPredict_NilEngine(t *testing.T) {
	svc := New(nil)

	_, err := svc.Predict(context.Background(), FeatureVector{1, 2, 3, 4})
	require.ErrorIs(t, err, ErrEngineUnavailable)
	assert.False(t, IsInference(err))
}

func TestPredictPayload_ValidationSkipsEngine(t *testing.T) {
	mock := inference.NewMock()
	svc := New(mock)

	_, err := svc.PredictPayload(context.Background(), []interface{}{1.0, 2.0})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, mock.Calls())

	_, err = svc.PredictPayload(context.Background(), []interface{}{1.0, "x", 3.0, 4.0})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, mock.Calls())
}

func TestReject_PassesErrorThrough(t *testing.T) {
	svc := New(inference.NewMock())
	orig := NewDecodeError(errors.New("bad"))

	err := svc.Reject(context.Background(), orig)
	assert.Same(t, orig, err)
}

func TestPredict_Concurrent(t *testing.T) {
	engine, err := inference.Load(inference.Options{Path: "../inference/testdata/iris_tree.json"})
	require.NoError(t, err)
	svc := New(engine)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Predict(context.Background(), FeatureVector{6.7, 3.0, 5.2, 2.3})
			if err == nil && p.Label != 2 {
				err = errors.New("unexpected label")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
