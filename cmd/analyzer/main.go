package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"nurseryml/internal/config"
	"nurseryml/internal/data"
	"nurseryml/internal/evaluation"
	"nurseryml/internal/models"
	"nurseryml/internal/pipeline"
	"nurseryml/pkg/utils"
)

type curvePoint struct {
	Size       int
	TrainAcc   float64
	TestAcc    float64
	TrainF1    float64
	TestF1     float64
	TrainKappa float64
	TestKappa  float64
}

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "Config file (.toml or .yaml)")
	algo := flag.String("algo", "dt", "Algorithm: dt|nb|rf|bagging")
	dataPath := flag.String("data", "Datasets/nursery_case0.arff", "Dataset (ARFF or CSV)")
	points := flag.Int("points", 8, "Number of points on the curve")
	holdout := flag.Float64("holdout", 0.2, "Fraction of rows kept for testing")
	outImg := flag.String("out_img", "Models/learning_curve.png", "Curve image (png, svg or pdf)")
	outCsv := flag.String("out_csv", "Models/learning_curve.csv", "Curve values as CSV")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	d, err := pipeline.ByAlgo(*algo)
	if err != nil {
		logger.Fatal("algorithm", zap.Error(err))
	}
	inst, err := data.Load(*dataPath, data.DefaultCSVOptions())
	if err != nil {
		logger.Fatal("load dataset", zap.String("path", *dataPath), zap.Error(err))
	}
	if err := inst.SetClassIndex(cfg.ClassIndex); err != nil {
		logger.Fatal("class index", zap.Error(err))
	}

	curve, err := learningCurve(d, cfg, inst, *points, *holdout)
	if err != nil {
		logger.Fatal("learning curve", zap.Error(err))
	}
	for _, p := range curve {
		fmt.Printf("%s | size=%d | train=%.3f | test=%.3f\n", d.Name, p.Size, p.TrainAcc, p.TestAcc)
	}
	if err := writeCSV(*outCsv, curve); err != nil {
		logger.Warn("write curve CSV", zap.Error(err))
	} else {
		logger.Info("curve CSV written", zap.String("path", *outCsv))
	}
	if err := plotCurve(*outImg, d.Title, curve); err != nil {
		logger.Warn("plot curve", zap.Error(err))
	} else {
		logger.Info("curve plotted", zap.String("path", *outImg))
	}
}

// learningCurve shuffles inst with the configured seed, holds out a test
// fraction and trains on growing prefixes of the rest.
func learningCurve(d pipeline.Driver, cfg config.Config, inst *data.Instances, points int, holdout float64) ([]curvePoint, error) {
	if holdout <= 0 || holdout >= 1 {
		return nil, fmt.Errorf("holdout fraction must be in (0,1), got %v", holdout)
	}
	shuffled := inst.Copy()
	shuffled.Randomize(rand.New(rand.NewSource(cfg.Seed)))
	nTrain := int((1 - holdout) * float64(shuffled.NumInstances()))
	if nTrain < 2 || nTrain >= shuffled.NumInstances() {
		return nil, fmt.Errorf("%d instances are too few for a learning curve", shuffled.NumInstances())
	}
	points = max(points, 2)
	idx := make([]int, shuffled.NumInstances())
	for i := range idx {
		idx[i] = i
	}
	test := shuffled.Subset(idx[nTrain:])

	var out []curvePoint
	last := 0
	for i := 1; i <= points; i++ {
		size := max(2, i*nTrain/points)
		if size <= last {
			continue
		}
		last = size
		train := shuffled.Subset(idx[:size])
		m := d.New(cfg)
		if err := m.Fit(train); err != nil {
			return nil, fmt.Errorf("size %d: %w", size, err)
		}
		trainEv, err := score(m, train)
		if err != nil {
			return nil, err
		}
		testEv, err := score(m, test)
		if err != nil {
			return nil, err
		}
		out = append(out, curvePoint{
			Size:       size,
			TrainAcc:   trainEv.PctCorrect() / 100,
			TestAcc:    testEv.PctCorrect() / 100,
			TrainF1:    trainEv.WeightedFMeasure(),
			TestF1:     testEv.WeightedFMeasure(),
			TrainKappa: trainEv.Kappa(),
			TestKappa:  testEv.Kappa(),
		})
	}
	return out, nil
}

func score(m models.Classifier, inst *data.Instances) (*evaluation.Evaluation, error) {
	ev, err := evaluation.New(inst)
	if err != nil {
		return nil, err
	}
	return ev, ev.EvaluateModel(m, inst)
}

func writeCSV(path string, curve []curvePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"size", "train_acc", "test_acc", "train_f1", "test_f1", "train_kappa", "test_kappa"}); err != nil {
		return err
	}
	for _, p := range curve {
		rec := []string{strconv.Itoa(p.Size)}
		for _, v := range []float64{p.TrainAcc, p.TestAcc, p.TrainF1, p.TestF1, p.TrainKappa, p.TestKappa} {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func plotCurve(path, title string, curve []curvePoint) error {
	p := plot.New()
	p.Title.Text = "Learning curve - " + title
	p.X.Label.Text = "Training instances"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.Y.Max = 1

	series := func(get func(curvePoint) float64) plotter.XYs {
		pts := make(plotter.XYs, len(curve))
		for i, c := range curve {
			pts[i].X = float64(c.Size)
			pts[i].Y = get(c)
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p,
		"Train (acc)", series(func(c curvePoint) float64 { return c.TrainAcc }),
		"Test (acc)", series(func(c curvePoint) float64 { return c.TestAcc }),
		"Train (F1)", series(func(c curvePoint) float64 { return c.TrainF1 }),
		"Test (F1)", series(func(c curvePoint) float64 { return c.TestF1 }),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
