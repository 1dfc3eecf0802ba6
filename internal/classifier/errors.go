package classifier

import (
	"errors"
	"fmt"
)

// ErrEngineUnavailable is returned when the service has no model to call.
var ErrEngineUnavailable = errors.New("model not loaded")

// InferenceError wraps a failure raised by the model call. Its message is the
// model's own message so callers can surface it unchanged.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func inferenceErrorf(format string, args ...interface{}) *InferenceError {
	return &InferenceError{Err: fmt.Errorf(format, args...)}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInference reports whether err came from the model call.
func IsInference(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}
