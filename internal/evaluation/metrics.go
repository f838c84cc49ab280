package evaluation

import (
	"math"
	"slices"
)

func (e *Evaluation) counts(c int) (tp, fp, fn, tn float64) {
	for i, r := range e.confusion {
		for j, v := range r {
			switch {
			case i == c && j == c:
				tp += v
			case i == c:
				fn += v
			case j == c:
				fp += v
			default:
				tn += v
			}
		}
	}
	return
}

// TruePositiveRate is the recall of class c, 0 when c never occurs.
func (e *Evaluation) TruePositiveRate(c int) float64 {
	tp, _, fn, _ := e.counts(c)
	return safeDiv(tp, tp+fn)
}

func (e *Evaluation) FalsePositiveRate(c int) float64 {
	_, fp, _, tn := e.counts(c)
	return safeDiv(fp, fp+tn)
}

func (e *Evaluation) Precision(c int) float64 {
	tp, fp, _, _ := e.counts(c)
	return safeDiv(tp, tp+fp)
}

func (e *Evaluation) Recall(c int) float64 { return e.TruePositiveRate(c) }

func (e *Evaluation) FMeasure(c int) float64 {
	p, r := e.Precision(c), e.Recall(c)
	return safeDiv(2*p*r, p+r)
}

// MatthewsCorrelation is the phi coefficient of class c against the rest.
func (e *Evaluation) MatthewsCorrelation(c int) float64 {
	tp, fp, fn, tn := e.counts(c)
	den := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
	return safeDiv(tp*tn-fp*fn, den)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

type scored struct {
	p   float64
	pos bool
}

func (e *Evaluation) scores(c int) (s []scored, pos, neg int) {
	if c < 0 || c >= e.numClasses {
		return nil, 0, 0
	}
	s = make([]scored, len(e.preds))
	for i, p := range e.preds {
		s[i] = scored{p: p.Dist[c], pos: p.Actual == c}
		if s[i].pos {
			pos++
		} else {
			neg++
		}
	}
	return
}

// AreaUnderROC is the probability that a random row of class c scores higher
// for c than a random row of another class, ties counting half. NaN when
// either group is empty.
func (e *Evaluation) AreaUnderROC(c int) float64 {
	s, pos, neg := e.scores(c)
	if pos == 0 || neg == 0 {
		return math.NaN()
	}
	slices.SortStableFunc(s, func(a, b scored) int { return cmpFloat(a.p, b.p) })
	var rankSum float64
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j].p == s[i].p {
			j++
		}
		// ranks i+1..j share their mean
		mid := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			if s[k].pos {
				rankSum += mid
			}
		}
		i = j
	}
	p, n := float64(pos), float64(neg)
	return (rankSum - p*(p+1)/2) / (p * n)
}

// AreaUnderPRC integrates precision over recall for class c with the
// trapezoid rule, one point per distinct score. NaN when c never occurs.
func (e *Evaluation) AreaUnderPRC(c int) float64 {
	s, pos, _ := e.scores(c)
	if pos == 0 {
		return math.NaN()
	}
	slices.SortStableFunc(s, func(a, b scored) int { return cmpFloat(b.p, a.p) })
	var area, tp, fp, prevRecall, prevPrecision float64
	first := true
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j].p == s[i].p {
			if s[j].pos {
				tp++
			} else {
				fp++
			}
			j++
		}
		recall, precision := tp/float64(pos), tp/(tp+fp)
		if first {
			prevPrecision = precision
			first = false
		}
		area += (recall - prevRecall) * (precision + prevPrecision) / 2
		prevRecall, prevPrecision = recall, precision
		i = j
	}
	return area
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// weighted averages metric over classes by class frequency, skipping NaN.
func (e *Evaluation) weighted(metric func(int) float64) float64 {
	var sum, total float64
	for c := 0; c < e.numClasses; c++ {
		var n float64
		for _, v := range e.confusion[c] {
			n += v
		}
		if n == 0 {
			continue
		}
		m := metric(c)
		if math.IsNaN(m) {
			continue
		}
		sum += n * m
		total += n
	}
	return ratio(sum, total)
}

func (e *Evaluation) WeightedTruePositiveRate() float64 { return e.weighted(e.TruePositiveRate) }

func (e *Evaluation) WeightedFalsePositiveRate() float64 { return e.weighted(e.FalsePositiveRate) }

func (e *Evaluation) WeightedPrecision() float64 { return e.weighted(e.Precision) }

func (e *Evaluation) WeightedRecall() float64 { return e.weighted(e.Recall) }

func (e *Evaluation) WeightedFMeasure() float64 { return e.weighted(e.FMeasure) }

func (e *Evaluation) WeightedMatthewsCorrelation() float64 {
	return e.weighted(e.MatthewsCorrelation)
}

func (e *Evaluation) WeightedAreaUnderROC() float64 { return e.weighted(e.AreaUnderROC) }

func (e *Evaluation) WeightedAreaUnderPRC() float64 { return e.weighted(e.AreaUnderPRC) }
