package models

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"

	"nurseryml/internal/data"
)

// Bagging averages pruned C4.5 trees grown on bootstrap samples.
type Bagging struct {
	NEstimators int
	BagPercent  int
	Confidence  float64
	MinLeaf     int
	Seed        int64
	Trees       []*DecisionTree
	Schema      *data.Instances
}

func NewBagging() *Bagging {
	return &Bagging{NEstimators: 10, BagPercent: 100, Confidence: 0.25, MinLeaf: 2, Seed: 1}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) Header() *data.Instances { return bg.Schema }

func (bg *Bagging) Untrained() Classifier {
	c := *bg
	c.Trees, c.Schema = nil, nil
	return &c
}

func (bg *Bagging) Fit(train *data.Instances) error {
	if err := checkTrainable(train); err != nil {
		return err
	}
	if bg.NEstimators <= 0 {
		bg.NEstimators = 10
	}
	if bg.BagPercent <= 0 || bg.BagPercent > 100 {
		bg.BagPercent = 100
	}
	train = knownRows(train)
	n := train.NumInstances()
	size := max(1, n*bg.BagPercent/100)
	rng := rand.New(rand.NewSource(bg.Seed))
	bg.Trees = make([]*DecisionTree, 0, bg.NEstimators)
	for k := 0; k < bg.NEstimators; k++ {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		dt := NewDecisionTree()
		dt.Confidence = bg.Confidence
		dt.MinLeaf = bg.MinLeaf
		if err := dt.Fit(train.Subset(idx)); err != nil {
			return fmt.Errorf("bag %d: %w", k, err)
		}
		bg.Trees = append(bg.Trees, dt)
	}
	bg.Schema = train.Header()
	return nil
}

func (bg *Bagging) Distribution(x []float64) ([]float64, error) {
	if err := checkRow(bg.Schema, x); err != nil {
		return nil, err
	}
	if len(bg.Trees) == 0 {
		return nil, ErrNotTrained
	}
	out := make([]float64, bg.Schema.NumClasses())
	for _, dt := range bg.Trees {
		d, err := dt.Distribution(x)
		if err != nil {
			return nil, err
		}
		floats.Add(out, d)
	}
	return normalize(out), nil
}

func (bg *Bagging) String() string {
	if bg.Schema == nil {
		return "Bagging: No model built yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Bagging with %d iterations and base learner C4.5 (confidence %.2f, min leaf %d)\n",
		len(bg.Trees), bg.Confidence, bg.MinLeaf)
	for i, dt := range bg.Trees {
		fmt.Fprintf(&b, "\nBag %d: %d leaves, %d nodes", i+1, dt.NumLeaves(), dt.NumNodes())
	}
	b.WriteString("\n")
	return b.String()
}
