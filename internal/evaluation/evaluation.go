// Package evaluation scores classifiers against labelled data and cross-validates them.
package evaluation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"nurseryml/internal/data"
	"nurseryml/internal/models"
)

type prediction struct {
	Actual int
	Dist   []float64
}

// Evaluation accumulates predictions over one or more test sets.
type Evaluation struct {
	header     *data.Instances
	numClasses int
	confusion  [][]float64
	priors     []float64

	withClass    float64
	unclassified float64
	correct      float64

	sumAbsErr      float64
	sumSqrErr      float64
	sumPriorAbsErr float64
	sumPriorSqrErr float64

	preds []prediction
}

// New prepares an evaluation for datasets shaped like header. Priors start as
// the class counts of header plus one.
func New(header *data.Instances) (*Evaluation, error) {
	cls := header.ClassAttribute()
	if cls == nil {
		return nil, data.ErrNoClass
	}
	if !cls.IsNominal() || cls.NumValues() == 0 {
		return nil, fmt.Errorf("class attribute %q must be nominal with at least one label", cls.Name)
	}
	k := cls.NumValues()
	e := &Evaluation{
		header:     header.Header(),
		numClasses: k,
		confusion:  make([][]float64, k),
	}
	for i := range e.confusion {
		e.confusion[i] = make([]float64, k)
	}
	e.SetPriors(header)
	return e, nil
}

// SetPriors resets the class prior used by the relative error measures to the
// Laplace-corrected class counts of train.
func (e *Evaluation) SetPriors(train *data.Instances) {
	e.priors = make([]float64, e.numClasses)
	for i := range e.priors {
		e.priors[i] = 1
	}
	for r := range train.Rows {
		if c := train.ClassValue(r); c >= 0 && c < e.numClasses {
			e.priors[c]++
		}
	}
}

// EvaluateModel scores c on every row of test whose class is known.
func (e *Evaluation) EvaluateModel(c models.Classifier, test *data.Instances) error {
	if test.ClassIndex != e.header.ClassIndex || test.NumAttributes() != e.header.NumAttributes() {
		return errors.New("test set does not match the evaluation header")
	}
	for r, x := range test.Rows {
		actual := test.ClassValue(r)
		if actual < 0 {
			continue
		}
		dist, err := c.Distribution(x)
		if err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
		if len(dist) != e.numClasses {
			return fmt.Errorf("row %d: %d class probabilities, want %d", r, len(dist), e.numClasses)
		}
		e.record(actual, dist)
	}
	return nil
}

func (e *Evaluation) record(actual int, dist []float64) {
	e.withClass++
	best, bestP := -1, 0.0
	for i, p := range dist {
		if p > bestP {
			best, bestP = i, p
		}
	}
	if best < 0 {
		e.unclassified++
		return
	}
	e.confusion[actual][best]++
	if best == actual {
		e.correct++
	}

	prior := append([]float64(nil), e.priors...)
	floats.Scale(1/floats.Sum(prior), prior)
	var abs, sqr, pAbs, pSqr float64
	for i := range dist {
		want := 0.0
		if i == actual {
			want = 1
		}
		d := dist[i] - want
		abs += math.Abs(d)
		sqr += d * d
		d = prior[i] - want
		pAbs += math.Abs(d)
		pSqr += d * d
	}
	k := float64(e.numClasses)
	e.sumAbsErr += abs / k
	e.sumSqrErr += sqr / k
	e.sumPriorAbsErr += pAbs / k
	e.sumPriorSqrErr += pSqr / k
	e.preds = append(e.preds, prediction{Actual: actual, Dist: append([]float64(nil), dist...)})
}

// merge adds the counts of o, which must share the class attribute.
func (e *Evaluation) merge(o *Evaluation) {
	for i := range e.confusion {
		floats.Add(e.confusion[i], o.confusion[i])
	}
	e.withClass += o.withClass
	e.unclassified += o.unclassified
	e.correct += o.correct
	e.sumAbsErr += o.sumAbsErr
	e.sumSqrErr += o.sumSqrErr
	e.sumPriorAbsErr += o.sumPriorAbsErr
	e.sumPriorSqrErr += o.sumPriorSqrErr
	e.preds = append(e.preds, o.preds...)
}

// Header describes the evaluated datasets.
func (e *Evaluation) Header() *data.Instances { return e.header }

// NumInstances counts the rows with a known class that were evaluated.
func (e *Evaluation) NumInstances() float64 { return e.withClass }

func (e *Evaluation) Correct() float64 { return e.correct }

func (e *Evaluation) Incorrect() float64 { return e.withClass - e.unclassified - e.correct }

func (e *Evaluation) Unclassified() float64 { return e.unclassified }

func (e *Evaluation) PctCorrect() float64 { return pct(e.correct, e.withClass) }

func (e *Evaluation) PctIncorrect() float64 { return pct(e.Incorrect(), e.withClass) }

func (e *Evaluation) PctUnclassified() float64 { return pct(e.unclassified, e.withClass) }

// ErrorRate is the fraction of evaluated rows that were misclassified.
func (e *Evaluation) ErrorRate() float64 { return ratio(e.Incorrect(), e.withClass) }

// ConfusionMatrix is indexed [actual][predicted].
func (e *Evaluation) ConfusionMatrix() [][]float64 {
	out := make([][]float64, len(e.confusion))
	for i, r := range e.confusion {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

// Kappa is Cohen's kappa over the confusion matrix.
func (e *Evaluation) Kappa() float64 {
	rows := make([]float64, e.numClasses)
	cols := make([]float64, e.numClasses)
	var diag, total float64
	for i, r := range e.confusion {
		for j, v := range r {
			rows[i] += v
			cols[j] += v
			total += v
		}
		diag += r[i]
	}
	if total == 0 {
		return math.NaN()
	}
	chance := floats.Dot(rows, cols) / (total * total)
	if chance >= 1 {
		return 1
	}
	return (diag/total - chance) / (1 - chance)
}

func (e *Evaluation) scored() float64 { return e.withClass - e.unclassified }

func (e *Evaluation) MeanAbsoluteError() float64 { return ratio(e.sumAbsErr, e.scored()) }

func (e *Evaluation) RootMeanSquaredError() float64 {
	return math.Sqrt(ratio(e.sumSqrErr, e.scored()))
}

// RelativeAbsoluteError is MAE as a percentage of the prior-only MAE.
func (e *Evaluation) RelativeAbsoluteError() float64 {
	return 100 * ratio(e.MeanAbsoluteError(), ratio(e.sumPriorAbsErr, e.scored()))
}

// RootRelativeSquaredError is RMSE as a percentage of the prior-only RMSE.
func (e *Evaluation) RootRelativeSquaredError() float64 {
	return 100 * ratio(e.RootMeanSquaredError(), math.Sqrt(ratio(e.sumPriorSqrErr, e.scored())))
}

func pct(a, b float64) float64 { return 100 * ratio(a, b) }

// ratio is a/b with NaN for an empty denominator.
func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}
