package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"nurseryml/internal/data"
)

// NaiveBayes uses Laplace-corrected counts for nominal attributes and the
// class prior, and one Gaussian per class for numeric attributes.
type NaiveBayes struct {
	Prior     []float64
	Counts    [][][]float64
	Means     [][]float64
	StdDevs   [][]float64
	Precision []float64
	Schema    *data.Instances
}

func NewNaiveBayes() *NaiveBayes { return &NaiveBayes{} }

func (nb *NaiveBayes) Name() string { return "NaiveBayes" }

func (nb *NaiveBayes) Header() *data.Instances { return nb.Schema }

func (nb *NaiveBayes) Untrained() Classifier { return NewNaiveBayes() }

func (nb *NaiveBayes) Fit(train *data.Instances) error {
	if err := checkTrainable(train); err != nil {
		return err
	}
	train = knownRows(train)
	nc := train.NumClasses()
	na := train.NumAttributes()
	nb.Prior = make([]float64, nc)
	for i := range nb.Prior {
		nb.Prior[i] = 1
	}
	floats.Add(nb.Prior, train.ClassCounts())
	nb.Counts = make([][][]float64, na)
	nb.Means = make([][]float64, na)
	nb.StdDevs = make([][]float64, na)
	nb.Precision = make([]float64, na)

	for j, a := range train.Attributes {
		if j == train.ClassIndex {
			continue
		}
		switch a.Type {
		case data.Nominal:
			nb.Counts[j] = make([][]float64, nc)
			for c := range nb.Counts[j] {
				nb.Counts[j][c] = make([]float64, a.NumValues())
				for v := range nb.Counts[j][c] {
					nb.Counts[j][c][v] = 1
				}
			}
			for r, row := range train.Rows {
				if !data.IsMissing(row[j]) {
					nb.Counts[j][train.ClassValue(r)][int(row[j])]++
				}
			}
		case data.Numeric:
			byClass := make([][]float64, nc)
			var all []float64
			for r, row := range train.Rows {
				if !data.IsMissing(row[j]) {
					c := train.ClassValue(r)
					byClass[c] = append(byClass[c], row[j])
					all = append(all, row[j])
				}
			}
			nb.Precision[j] = precision(all)
			nb.Means[j] = make([]float64, nc)
			nb.StdDevs[j] = make([]float64, nc)
			for c, xs := range byClass {
				minSD := nb.Precision[j] / (2 * 3)
				if len(xs) == 0 {
					nb.StdDevs[j][c] = minSD
					continue
				}
				mean, sd := stat.MeanStdDev(xs, nil)
				if len(xs) < 2 || math.IsNaN(sd) {
					sd = 0
				}
				nb.Means[j][c] = mean
				nb.StdDevs[j][c] = math.Max(sd, minSD)
			}
		}
	}
	nb.Schema = train.Header()
	return nil
}

// precision is the mean gap between distinct sorted values.
func precision(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.01
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	sum, n := 0.0, 0
	for i := 1; i < len(s); i++ {
		if d := s[i] - s[i-1]; d > 0 {
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0.01
	}
	return sum / float64(n)
}

func (nb *NaiveBayes) Distribution(x []float64) ([]float64, error) {
	if err := checkRow(nb.Schema, x); err != nil {
		return nil, err
	}
	nc := len(nb.Prior)
	total := floats.Sum(nb.Prior)
	logp := make([]float64, nc)
	for c := range logp {
		logp[c] = math.Log(nb.Prior[c] / total)
	}
	for j, v := range x {
		if j == nb.Schema.ClassIndex || data.IsMissing(v) {
			continue
		}
		switch {
		case len(nb.Counts[j]) > 0:
			k := int(v)
			if k < 0 || k >= len(nb.Counts[j][0]) {
				continue
			}
			for c := range logp {
				logp[c] += math.Log(nb.Counts[j][c][k] / floats.Sum(nb.Counts[j][c]))
			}
		case len(nb.Means[j]) > 0:
			for c := range logp {
				logp[c] += distuv.Normal{Mu: nb.Means[j][c], Sigma: nb.StdDevs[j][c]}.LogProb(v)
			}
		}
	}
	lse := floats.LogSumExp(logp)
	out := make([]float64, nc)
	for c := range out {
		out[c] = math.Exp(logp[c] - lse)
	}
	return out, nil
}

func (nb *NaiveBayes) String() string {
	if nb.Schema == nil {
		return "Naive Bayes Classifier: No model built yet."
	}
	var b strings.Builder
	b.WriteString("Naive Bayes Classifier\n\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	cls := nb.Schema.ClassAttribute()
	row := func(label string, vals []string) {
		fmt.Fprintf(tw, "%s\t%s\t\n", label, strings.Join(vals, "\t"))
	}
	cells := func(f func(c int) string) []string {
		out := make([]string, len(nb.Prior))
		for c := range out {
			out[c] = f(c)
		}
		return out
	}
	total := floats.Sum(nb.Prior)
	row("Attribute", cells(func(c int) string { return cls.Values[c] }))
	row("", cells(func(c int) string { return fmt.Sprintf("(%.2f)", nb.Prior[c]/total) }))
	for j, a := range nb.Schema.Attributes {
		if j == nb.Schema.ClassIndex {
			continue
		}
		switch {
		case len(nb.Counts[j]) > 0:
			row(a.Name, cells(func(int) string { return "" }))
			for v, label := range a.Values {
				row("  "+label, cells(func(c int) string { return fmt.Sprintf("%.1f", nb.Counts[j][c][v]) }))
			}
			row("  [total]", cells(func(c int) string { return fmt.Sprintf("%.1f", floats.Sum(nb.Counts[j][c])) }))
		case len(nb.Means[j]) > 0:
			row(a.Name, cells(func(int) string { return "" }))
			row("  mean", cells(func(c int) string { return fmt.Sprintf("%.4f", nb.Means[j][c]) }))
			row("  std. dev.", cells(func(c int) string { return fmt.Sprintf("%.4f", nb.StdDevs[j][c]) }))
			row("  precision", cells(func(int) string { return fmt.Sprintf("%.4f", nb.Precision[j]) }))
		}
		row("", cells(func(int) string { return "" }))
	}
	tw.Flush()
	return b.String()
}
