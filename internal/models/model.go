package models

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"nurseryml/internal/data"
)

//go:generate mockgen -destination=mocks/classifier.go -package=mocks nurseryml/internal/models Classifier

// Classifier is a model over a nominal class attribute.
type Classifier interface {
	Name() string
	// Fit trains on train, replacing any previous model.
	Fit(train *data.Instances) error
	// Distribution returns class probabilities for a row laid out like Header.
	Distribution(x []float64) ([]float64, error)
	// Header is the training dataset description, nil before Fit.
	Header() *data.Instances
	// Untrained returns a copy with the same options and no model.
	Untrained() Classifier
	String() string
}

var ErrNotTrained = errors.New("model has not been trained")

// ContextFitter is implemented by classifiers whose training can be cancelled.
type ContextFitter interface {
	FitContext(ctx context.Context, train *data.Instances) error
}

// FitContext trains c, handing ctx to classifiers that accept one.
func FitContext(ctx context.Context, c Classifier, train *data.Instances) error {
	if cf, ok := c.(ContextFitter); ok {
		return cf.FitContext(ctx, train)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Fit(train)
}

// Predict returns the most probable class, lowest index on ties.
func Predict(c Classifier, x []float64) (int, error) {
	d, err := c.Distribution(x)
	if err != nil {
		return -1, err
	}
	if len(d) == 0 || floats.Sum(d) == 0 {
		return -1, nil
	}
	return floats.MaxIdx(d), nil
}

func checkTrainable(train *data.Instances) error {
	cls := train.ClassAttribute()
	if cls == nil {
		return data.ErrNoClass
	}
	if !cls.IsNominal() {
		return fmt.Errorf("class attribute %q is %s, need nominal", cls.Name, cls.Type)
	}
	if cls.NumValues() == 0 {
		return fmt.Errorf("class attribute %q has no labels", cls.Name)
	}
	if train.NumInstances() == 0 {
		return errors.New("no training instances")
	}
	return nil
}

func checkRow(h *data.Instances, x []float64) error {
	if h == nil {
		return ErrNotTrained
	}
	if len(x) != h.NumAttributes() {
		return fmt.Errorf("row has %d values, model expects %d", len(x), h.NumAttributes())
	}
	return nil
}

func normalize(d []float64) []float64 {
	out := append([]float64(nil), d...)
	if s := floats.Sum(out); s > 0 {
		floats.Scale(1/s, out)
	}
	return out
}

// knownRows drops rows whose class is missing.
func knownRows(train *data.Instances) *data.Instances {
	idx := make([]int, 0, train.NumInstances())
	for r := range train.Rows {
		if train.ClassValue(r) >= 0 {
			idx = append(idx, r)
		}
	}
	if len(idx) == train.NumInstances() {
		return train
	}
	return train.Subset(idx)
}
