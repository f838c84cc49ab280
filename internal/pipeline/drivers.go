package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"nurseryml/internal/config"
	"nurseryml/internal/models"
	"nurseryml/internal/treeviz"
)

func DecisionTree() Driver {
	return Driver{
		Name:  "DecisionTree",
		Title: "Decision Tree",
		New: func(cfg config.Config) models.Classifier {
			dt := models.NewDecisionTree()
			dt.Confidence = cfg.Tree.Confidence
			dt.MinLeaf = cfg.Tree.MinLeaf
			dt.Unpruned = cfg.Tree.Unpruned
			return dt
		},
		AfterEvaluate: renderTree,
	}
}

func NaiveBayes() Driver {
	return Driver{
		Name:            "NaiveBayes",
		Title:           "Naive Bayes",
		New:             func(config.Config) models.Classifier { return models.NewNaiveBayes() },
		ExtendedMetrics: true,
	}
}

func RandomForest() Driver {
	return Driver{
		Name:  "RandomForest",
		Title: "Random Forest",
		New: func(cfg config.Config) models.Classifier {
			rf := models.NewRandomForest()
			rf.NEstimators = cfg.Forest.Trees
			rf.MaxFeatures = cfg.Forest.Features
			rf.MaxDepth = cfg.Forest.MaxDepth
			rf.Seed = cfg.Seed
			rf.Workers = cfg.Workers
			return rf
		},
	}
}

func Bagging() Driver {
	return Driver{
		Name:  "Bagging",
		Title: "Bagging",
		New: func(cfg config.Config) models.Classifier {
			bg := models.NewBagging()
			bg.NEstimators = cfg.Bagging.Iterations
			bg.BagPercent = cfg.Bagging.BagPercent
			bg.Confidence = cfg.Tree.Confidence
			bg.MinLeaf = cfg.Tree.MinLeaf
			bg.Seed = cfg.Seed
			return bg
		},
	}
}

// ByAlgo maps the short algorithm names accepted on the command line.
func ByAlgo(algo string) (Driver, error) {
	switch algo {
	case "dt":
		return DecisionTree(), nil
	case "nb":
		return NaiveBayes(), nil
	case "rf":
		return RandomForest(), nil
	case "bagging":
		return Bagging(), nil
	}
	return Driver{}, fmt.Errorf("unknown algorithm %q, want dt|nb|rf|bagging", algo)
}

// renderTree replaces the interactive tree window with an image and a DOT
// file next to the saved model.
func renderTree(r *Runner, res *Result, out io.Writer) error {
	dt, ok := res.Model.(*models.DecisionTree)
	if !ok {
		return fmt.Errorf("cannot render %T as a tree", res.Model)
	}
	path := filepath.Join(r.Config.RenderDir, fmt.Sprintf("%s_%d.%s", r.Driver.Name, res.Index+1, r.Config.RenderExt))
	title := fmt.Sprintf("Nursery Decision Tree - Case %d", res.Index+1)
	dot, err := treeviz.Render(dt, title, path)
	if err != nil {
		return fmt.Errorf("render tree: %w", err)
	}
	r.Log.Info("tree rendered", zap.String("image", path), zap.String("dot", dot))
	fmt.Fprintf(out, "\nTree diagram: %s (graph: %s)\n", path, dot)
	return nil
}
