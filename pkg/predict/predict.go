// Package predict defines the keyword classifier interface. No model ships
// with this module; [Stub] stands in until an exported model is wired up.
package predict

import (
	"context"
	"errors"
)

// ErrModelNotLoaded is returned by predictors that have no model.
var ErrModelNotLoaded = errors.New("predict: model not loaded")

// NotLoadedMessage is the user-facing text for ErrModelNotLoaded.
const NotLoadedMessage = "Model not loaded yet. Prediction will appear here after export."

// Prediction is a classifier result.
type Prediction struct {
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Predictor classifies a log mel feature matrix.
type Predictor interface {
	Predict(ctx context.Context, features [][]float32) (Prediction, error)
}

// Stub is a Predictor without a model.
type Stub struct{}

// Predict always fails with ErrModelNotLoaded.
func (Stub) Predict(context.Context, [][]float32) (Prediction, error) {
	return Prediction{}, ErrModelNotLoaded
}

// Message turns a prediction outcome into the text shown to users.
func Message(p Prediction, err error) string {
	switch {
	case errors.Is(err, ErrModelNotLoaded):
		return NotLoadedMessage
	case err != nil:
		return "Prediction failed: " + err.Error()
	}
	return p.Label
}
