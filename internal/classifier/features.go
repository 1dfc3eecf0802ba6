// internal/classifier/features.go
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SyedDaiam9101/classifier-service/internal/inference"
)

// FeaturesField is the request field holding the feature array.
const FeaturesField = "features"

// FeatureVector is one validated classifier input.
type FeatureVector [inference.NumFeatures]float64

// Slice returns the vector as a fresh slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// ValidationError describes why a request payload was rejected. Loc is the
// path to the offending value, starting with the request part ("body").
type ValidationError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Loc, e.Msg)
}

// NewDecodeError reports a request body that is not valid JSON. The
// decoder's own message is not passed on since it names Go types.
func NewDecodeError(err error) *ValidationError {
	msg := "JSON decode error"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Value, "number") {
		msg = "Input should be a valid number"
	}
	return &ValidationError{
		Loc:  []interface{}{"body"},
		Msg:  msg,
		Type: "json_invalid",
	}
}

// ParseFeatures validates the decoded value of the features field.
// raw is what a JSON decoder produced for it: nil when absent.
func ParseFeatures(raw interface{}) (FeatureVector, error) {
	var v FeatureVector
	loc := []interface{}{"body", FeaturesField}

	if raw == nil {
		return v, &ValidationError{Loc: loc, Msg: "Field required", Type: "missing"}
	}

	items, ok := raw.([]interface{})
	if !ok {
		return v, &ValidationError{Loc: loc, Msg: "Input should be a valid list", Type: "list_type"}
	}

	switch {
	case len(items) < inference.NumFeatures:
		return v, &ValidationError{
			Loc:  loc,
			Msg:  fmt.Sprintf("List should have at least %d items after validation, not %d", inference.NumFeatures, len(items)),
			Type: "too_short",
		}
	case len(items) > inference.NumFeatures:
		return v, &ValidationError{
			Loc:  loc,
			Msg:  fmt.Sprintf("List should have at most %d items after validation, not %d", inference.NumFeatures, len(items)),
			Type: "too_long",
		}
	}

	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return v, &ValidationError{
				Loc:  append(loc, i),
				Msg:  "Input should be a valid number",
				Type: "float_type",
			}
		}
		v[i] = f
	}
	return v, nil
}

// toFloat accepts only values a JSON decoder yields for numbers.
func toFloat(item interface{}) (float64, bool) {
	switch n := item.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
