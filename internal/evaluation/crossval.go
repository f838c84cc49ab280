package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nurseryml/internal/data"
	"nurseryml/internal/models"
)

// CrossValidateModel runs stratified k-fold cross-validation of c on inst.
// Rows are shuffled with seed, every fold trains a fresh c.Untrained() copy,
// and up to workers folds run at once (0 means one per CPU). Fold results are
// merged in fold order, so the outcome depends only on seed.
func CrossValidateModel(ctx context.Context, c models.Classifier, inst *data.Instances, folds int, seed int64, workers int) (*Evaluation, error) {
	total, err := New(inst)
	if err != nil {
		return nil, err
	}
	if folds < 2 || folds > inst.NumInstances() {
		return nil, fmt.Errorf("cannot run %d-fold cross-validation on %d instances", folds, inst.NumInstances())
	}
	shuffled := inst.Copy()
	shuffled.Randomize(rand.New(rand.NewSource(seed)))
	shuffled.Stratify(folds)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	parts := make([]*Evaluation, folds)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for fold := 0; fold < folds; fold++ {
		fold := fold
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, err := evaluateFold(ctx, c.Untrained(), shuffled, folds, fold)
			if err != nil {
				return fmt.Errorf("fold %d: %w", fold+1, err)
			}
			parts[fold] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, p := range parts {
		total.merge(p)
	}
	return total, nil
}

func evaluateFold(ctx context.Context, m models.Classifier, inst *data.Instances, folds, fold int) (*Evaluation, error) {
	train, err := inst.TrainCV(folds, fold)
	if err != nil {
		return nil, err
	}
	test, err := inst.TestCV(folds, fold)
	if err != nil {
		return nil, err
	}
	if err := models.FitContext(ctx, m, train); err != nil {
		return nil, err
	}
	ev, err := New(inst)
	if err != nil {
		return nil, err
	}
	ev.SetPriors(train)
	if err := ev.EvaluateModel(m, test); err != nil {
		return nil, err
	}
	return ev, nil
}
