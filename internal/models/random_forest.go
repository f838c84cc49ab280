package models

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"nurseryml/internal/data"
)

// RandomForest averages the class distributions of random trees grown on
// bootstrap samples.
type RandomForest struct {
	NEstimators int
	MaxFeatures int
	MaxDepth    int
	Seed        int64
	Workers     int
	Trees       []*DecisionTree
	OOBError    float64
	Schema      *data.Instances
}

// NewRandomForest mirrors the classic defaults: 100 trees, log2(m)+1
// features per node, seed 1, depth limited to 10.
func NewRandomForest() *RandomForest {
	return &RandomForest{NEstimators: 100, MaxFeatures: 0, MaxDepth: 10, Seed: 1}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Header() *data.Instances { return rf.Schema }

func (rf *RandomForest) Untrained() Classifier {
	c := *rf
	c.Trees, c.Schema, c.OOBError = nil, nil, 0
	return &c
}

// features resolves MaxFeatures against the number of predictors.
func (rf *RandomForest) features(train *data.Instances) int {
	m := train.NumAttributes() - 1
	if rf.MaxFeatures > 0 {
		return min(rf.MaxFeatures, m)
	}
	return log2Floor(m) + 1
}

func (rf *RandomForest) Fit(train *data.Instances) error {
	return rf.FitContext(context.Background(), train)
}

// FitContext grows the trees concurrently on at most Workers goroutines.
// Each tree draws its bag and split attributes from its own seed, so the
// result does not depend on scheduling.
func (rf *RandomForest) FitContext(ctx context.Context, train *data.Instances) error {
	if err := checkTrainable(train); err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		return fmt.Errorf("number of trees must be positive, got %d", rf.NEstimators)
	}
	train = knownRows(train)
	n := train.NumInstances()
	k := rf.features(train)
	master := rand.New(rand.NewSource(rf.Seed))
	bags := make([][]int, rf.NEstimators)
	seeds := make([]int64, rf.NEstimators)
	for t := range bags {
		bags[t] = make([]int, n)
		for i := range bags[t] {
			bags[t][i] = master.Intn(n)
		}
		seeds[t] = master.Int63()
	}

	trees := make([]*DecisionTree, rf.NEstimators)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(rf.Workers))
	for t := range trees {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dt := NewRandomTree(k, rf.MaxDepth, seeds[t])
			if err := dt.Fit(train.Subset(bags[t])); err != nil {
				return fmt.Errorf("tree %d: %w", t, err)
			}
			trees[t] = dt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	rf.Trees = trees
	rf.Schema = train.Header()
	rf.OOBError = rf.outOfBagError(train, bags)
	return nil
}

func workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// outOfBagError scores each instance with the trees whose bag missed it.
func (rf *RandomForest) outOfBagError(train *data.Instances, bags [][]int) float64 {
	n := train.NumInstances()
	inBag := make([][]bool, len(bags))
	for t, bag := range bags {
		inBag[t] = make([]bool, n)
		for _, i := range bag {
			inBag[t][i] = true
		}
	}
	wrong, scored := 0, 0
	for i, row := range train.Rows {
		votes := make([]float64, train.NumClasses())
		used := false
		for t, dt := range rf.Trees {
			if inBag[t][i] {
				continue
			}
			if d, err := dt.Distribution(row); err == nil {
				floats.Add(votes, d)
				used = true
			}
		}
		if !used || floats.Sum(votes) == 0 {
			continue
		}
		scored++
		if floats.MaxIdx(votes) != train.ClassValue(i) {
			wrong++
		}
	}
	if scored == 0 {
		return 0
	}
	return float64(wrong) / float64(scored)
}

func (rf *RandomForest) Distribution(x []float64) ([]float64, error) {
	if err := checkRow(rf.Schema, x); err != nil {
		return nil, err
	}
	if len(rf.Trees) == 0 {
		return nil, ErrNotTrained
	}
	out := make([]float64, rf.Schema.NumClasses())
	for _, dt := range rf.Trees {
		d, err := dt.Distribution(x)
		if err != nil {
			return nil, err
		}
		floats.Add(out, d)
	}
	return normalize(out), nil
}

func (rf *RandomForest) String() string {
	if rf.Schema == nil {
		return "Random forest not built yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Random forest of %d trees, each constructed while considering %d random features.\n",
		len(rf.Trees), rf.features(rf.Schema))
	if rf.MaxDepth > 0 {
		fmt.Fprintf(&b, "Max. depth of tree: %d\n", rf.MaxDepth)
	}
	leaves := 0
	for _, dt := range rf.Trees {
		leaves += dt.NumLeaves()
	}
	fmt.Fprintf(&b, "Mean number of leaves: %.1f\n", float64(leaves)/float64(max(len(rf.Trees), 1)))
	fmt.Fprintf(&b, "Out of bag error: %.4f\n", rf.OOBError)
	return b.String()
}
