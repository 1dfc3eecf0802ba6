// internal/classifier/service.go
package classifier

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/classifier-service/internal/inference"
	"github.com/SyedDaiam9101/classifier-service/internal/logging"
	"github.com/SyedDaiam9101/classifier-service/internal/metrics"
)

const tracerName = "github.com/SyedDaiam9101/classifier-service/internal/classifier"

// Prediction is the result of one successful classification.
type Prediction struct {
	Label int `json:"prediction"`
}

// Service runs validated feature vectors through the loaded model.
// The engine is shared read-only by all requests.
type Service struct {
	engine inference.Engine
	tracer trace.Tracer
}

// New creates a Service around an already loaded engine.
func New(engine inference.Engine) *Service {
	return &Service{
		engine: engine,
		tracer: otel.Tracer(tracerName),
	}
}

// Predict classifies a single vector. Failures of the model call, including
// panics, come back as *InferenceError.
func (s *Service) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	if s.engine == nil {
		return Prediction{}, ErrEngineUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "classifier.Predict")
	defer span.End()

	start := time.Now()
	labels, err := s.invoke([][]float64{v.Slice()})
	metrics.RecordInferenceLatency(time.Since(start).Seconds())

	if err == nil && len(labels) == 0 {
		err = inferenceErrorf("model returned no prediction")
	}
	if err != nil {
		metrics.RecordInferenceError()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.FromContext(ctx).Error("inference failed", zap.Error(err))
		return Prediction{}, err
	}

	label := labels[0]
	metrics.RecordPrediction(label)
	span.SetAttributes(attribute.Int("classifier.label", label))
	return Prediction{Label: label}, nil
}

func (s *Service) invoke(batch [][]float64) (labels []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			labels = nil
			err = inferenceErrorf("panic: %v", r)
		}
	}()

	labels, err = s.engine.Predict(batch)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	return labels, nil
}

// PredictPayload validates the decoded features value and classifies it.
func (s *Service) PredictPayload(ctx context.Context, raw interface{}) (Prediction, error) {
	v, err := ParseFeatures(raw)
	if err != nil {
		return Prediction{}, s.Reject(ctx, err)
	}
	return s.Predict(ctx, v)
}

// Reject records a validation failure detected by a transport, such as an
// undecodable body, and returns err unchanged.
func (s *Service) Reject(ctx context.Context, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		metrics.RecordValidationFailure(ve.Type)
		logging.FromContext(ctx).Debug("request rejected", zap.String("type", ve.Type), zap.String("reason", ve.Msg))
	}
	return err
}
