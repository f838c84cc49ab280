// Package pipeline runs the load, fit, persist, reload, cross-validate and
// report sequence shared by the classifier commands.
package pipeline

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nurseryml/internal/config"
	"nurseryml/internal/data"
	"nurseryml/internal/evaluation"
	"nurseryml/internal/models"
	"nurseryml/pkg/utils"
)

// Driver describes one classifier command.
type Driver struct {
	// Name prefixes model and report files.
	Name string
	// Title heads the printed model text.
	Title string
	New   func(cfg config.Config) models.Classifier
	// ExtendedMetrics adds kappa and the error measures to the printout.
	ExtendedMetrics bool
	// AfterEvaluate runs once a dataset has been fully reported.
	AfterEvaluate func(r *Runner, res *Result, out io.Writer) error
}

// Result is what one dataset produced.
type Result struct {
	Index     int
	Dataset   string
	ModelPath string
	Model     models.Classifier
	Eval      *evaluation.Evaluation
	Runtime   time.Duration
}

type Runner struct {
	Driver Driver
	Config config.Config
	Out    io.Writer
	Log    *zap.Logger
}

// Run processes every configured dataset in order and stops at the first
// failure; datasets after it are not touched.
func (r *Runner) Run(ctx context.Context) error {
	for i, path := range r.Config.Datasets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.RunDataset(ctx, i, path); err != nil {
			r.Log.Error("dataset failed", zap.String("dataset", path), zap.Error(err))
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// RunDataset handles the i-th dataset: model files are numbered from 1.
func (r *Runner) RunDataset(ctx context.Context, i int, path string) (*Result, error) {
	cfg := r.Config
	fmt.Fprintf(r.Out, "\n===== Processing: %s =====\n", path)

	inst, err := data.Load(path, data.DefaultCSVOptions())
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := inst.SetClassIndex(cfg.ClassIndex); err != nil {
		return nil, err
	}
	r.Log.Info("dataset loaded",
		zap.String("dataset", path),
		zap.Int("instances", inst.NumInstances()),
		zap.Int("attributes", inst.NumAttributes()),
		zap.String("class", inst.ClassAttribute().Name),
	)

	m := r.Driver.New(cfg)
	if err := models.FitContext(ctx, m, inst); err != nil {
		return nil, fmt.Errorf("train %s: %w", m.Name(), err)
	}
	modelPath := filepath.Join(cfg.ModelDir, fmt.Sprintf("%s_%d.model", r.Driver.Name, i+1))
	if err := models.Save(modelPath, m); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	loaded, err := models.Load(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reload model: %w", err)
	}
	r.Log.Info("model saved", zap.String("path", modelPath))

	start := time.Now()
	ev, err := evaluation.CrossValidateModel(ctx, loaded, inst, cfg.Folds, cfg.Seed, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("cross-validate: %w", err)
	}
	res := &Result{Index: i, Dataset: path, ModelPath: modelPath, Model: loaded, Eval: ev, Runtime: time.Since(start)}
	r.print(res)
	r.Log.Info("evaluation finished",
		zap.String("model", loaded.Name()),
		zap.Float64("pct_correct", ev.PctCorrect()),
		zap.Float64("kappa", ev.Kappa()),
		zap.Duration("runtime", res.Runtime),
	)

	if cfg.ReportDir != "" {
		rp := evaluation.NewReport(ev, loaded.Name(), path, cfg.Folds, cfg.Seed, res.Runtime.Seconds())
		out := filepath.Join(cfg.ReportDir, fmt.Sprintf("%s_%d.json", r.Driver.Name, i+1))
		if err := evaluation.WriteReport(out, rp); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
		r.Log.Info("report written", zap.String("path", out))
	}
	if r.Driver.AfterEvaluate != nil {
		if err := r.Driver.AfterEvaluate(r, res, r.Out); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Runner) print(res *Result) {
	ev, w := res.Eval, r.Out
	fmt.Fprintln(w, ev.ToSummaryString("\n=== Evaluation Results ===\n"))
	fmt.Fprintln(w, "Runtime (seconds): "+number(float64(res.Runtime.Milliseconds())/1000))
	fmt.Fprintln(w, "AUC = "+number(ev.AreaUnderROC(1)))
	if r.Driver.ExtendedMetrics {
		fmt.Fprintln(w, "Kappa = "+number(ev.Kappa()))
		fmt.Fprintln(w, "MAE = "+number(ev.MeanAbsoluteError()))
		fmt.Fprintln(w, "RMSE = "+number(ev.RootMeanSquaredError()))
		fmt.Fprintln(w, "RAE = "+number(ev.RelativeAbsoluteError()))
		fmt.Fprintln(w, "RRSE = "+number(ev.RootRelativeSquaredError()))
	}
	fmt.Fprintln(w, "fMeasure = "+number(ev.FMeasure(0)))
	fmt.Fprintln(w, "Error Rate = "+number(ev.ErrorRate()))
	fmt.Fprintln(w, ev.ToClassDetailsString("\n=== Detailed Accuracy By Class ===\n"))
	fmt.Fprintln(w, ev.ToMatrixString("\n=== Confusion Matrix ===\n"))
	fmt.Fprintf(w, "\n=== %s Model ===\n", r.Driver.Title)
	fmt.Fprintln(w, res.Model.String())
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Flags are the command-line overrides shared by the classifier commands.
type Flags struct {
	fs        *flag.FlagSet
	config    *string
	datasets  *string
	modelDir  *string
	reportDir *string
	folds     *int
	seed      *int64
	workers   *int
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:        fs,
		config:    fs.String("config", "", "Config file (.toml or .yaml)"),
		datasets:  fs.String("datasets", "", "Comma-separated dataset paths (ARFF or CSV)"),
		modelDir:  fs.String("models", "", "Directory for serialized models"),
		reportDir: fs.String("reports", "", "Directory for JSON evaluation reports"),
		folds:     fs.Int("folds", 0, "Number of cross-validation folds"),
		seed:      fs.Int64("seed", 0, "Seed for shuffling the folds"),
		workers:   fs.Int("workers", 0, "Folds and trees built in parallel (0 = one per CPU)"),
	}
}

// Config loads the config file and applies the flags that were set.
func (f *Flags) Config() (config.Config, error) {
	cfg, err := config.Load(*f.config)
	if err != nil {
		return cfg, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "datasets":
			cfg.Datasets = strings.Split(*f.datasets, ",")
		case "models":
			cfg.ModelDir = *f.modelDir
		case "reports":
			cfg.ReportDir = *f.reportDir
		case "folds":
			cfg.Folds = *f.folds
		case "seed":
			cfg.Seed = *f.seed
		case "workers":
			cfg.Workers = *f.workers
		}
	})
	return cfg, cfg.Validate()
}

// Main parses args, runs d and returns the process exit code.
func Main(d Driver, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet(strings.ToLower(d.Name), flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return Execute(d, flags, stdout)
}

// Execute runs d with the parsed flags until done or interrupted.
func Execute(d Driver, flags *Flags, stdout io.Writer) int {
	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := flags.Config()
	if err != nil {
		logger.Error("load config", zap.Error(err))
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	r := &Runner{Driver: d, Config: cfg, Out: stdout, Log: logger}
	if err := r.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		return 1
	}
	return 0
}
