package evaluation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/mock/gomock"

	"nurseryml/internal/data"
	"nurseryml/internal/models"
	"nurseryml/internal/models/mocks"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// handSet has rows id=0..5 with classes yes,yes,yes,no,no,yes.
func handSet() *data.Instances {
	inst := data.NewInstances("hand", []*data.Attribute{data.NewNumeric("id"), data.NewNominal("class", "yes", "no")})
	for i, c := range []float64{0, 0, 0, 1, 1, 0} {
		inst.Rows = append(inst.Rows, []float64{float64(i), c})
	}
	inst.SetClassIndex(-1)
	return inst
}

// handModel predicts the first three and the next two rows right and the
// last one wrong.
func handModel(ctrl *gomock.Controller) *mocks.MockClassifier {
	dists := [][]float64{{1, 0}, {1, 0}, {1, 0}, {0, 1}, {0, 1}, {0, 1}}
	m := mocks.NewMockClassifier(ctrl)
	m.EXPECT().Distribution(gomock.Any()).DoAndReturn(func(x []float64) ([]float64, error) {
		return dists[int(x[0])], nil
	}).AnyTimes()
	return m
}

func TestEvaluateModelMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	inst := handSet()
	e, err := New(inst)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.EvaluateModel(handModel(ctrl), inst); err != nil {
		t.Fatal(err)
	}
	if e.Correct() != 5 || e.Incorrect() != 1 || e.NumInstances() != 6 {
		t.Fatalf("counts %v/%v/%v", e.Correct(), e.Incorrect(), e.NumInstances())
	}
	approx(t, "kappa", e.Kappa(), 2.0/3)
	approx(t, "error rate", e.ErrorRate(), 1.0/6)
	approx(t, "TP rate yes", e.TruePositiveRate(0), 0.75)
	approx(t, "FP rate no", e.FalsePositiveRate(1), 0.25)
	approx(t, "precision yes", e.Precision(0), 1)
	approx(t, "F yes", e.FMeasure(0), 6.0/7)
	approx(t, "MCC yes", e.MatthewsCorrelation(0), 6/math.Sqrt(72))
	approx(t, "MAE", e.MeanAbsoluteError(), 1.0/6)
	approx(t, "RMSE", e.RootMeanSquaredError(), math.Sqrt(1.0/6))
	// priors 5/8 and 3/8 from the class counts plus one
	approx(t, "RAE", e.RelativeAbsoluteError(), 100/2.75)
	approx(t, "AUC yes", e.AreaUnderROC(0), 0.875)
	approx(t, "AUC no", e.AreaUnderROC(1), 0.875)
	approx(t, "PRC yes", e.AreaUnderPRC(0), 0.75+0.25*(1+4.0/6)/2)
	approx(t, "weighted TP", e.WeightedTruePositiveRate(), 5.0/6)
	if got := e.ConfusionMatrix(); got[0][0] != 3 || got[0][1] != 1 || got[1][0] != 0 || got[1][1] != 2 {
		t.Errorf("confusion = %v", got)
	}

	sum := e.ToSummaryString("\n=== Evaluation Results ===\n")
	for _, want := range []string{"=== Evaluation Results ===", "Correctly Classified Instances", "83.3333 %", "Kappa statistic", "Total Number of Instances"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
	details := e.ToClassDetailsString("\n=== Detailed Accuracy By Class ===\n")
	for _, want := range []string{"TP Rate", "0.750", "yes", "Weighted Avg."} {
		if !strings.Contains(details, want) {
			t.Errorf("details missing %q:\n%s", want, details)
		}
	}
	matrix := e.ToMatrixString("\n=== Confusion Matrix ===\n")
	for _, want := range []string{" a b   <-- classified as", " 3 1 | a = yes", " 0 2 | b = no"} {
		if !strings.Contains(matrix, want) {
			t.Errorf("matrix missing %q:\n%s", want, matrix)
		}
	}
}

func TestUnclassifiedAndMissingClass(t *testing.T) {
	ctrl := gomock.NewController(t)
	inst := handSet()
	inst.Rows = append(inst.Rows, []float64{7, data.Missing()})
	m := mocks.NewMockClassifier(ctrl)
	m.EXPECT().Distribution(gomock.Any()).Return([]float64{0, 0}, nil).Times(6)
	e, err := New(inst)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.EvaluateModel(m, inst); err != nil {
		t.Fatal(err)
	}
	if e.Unclassified() != 6 || e.Correct() != 0 || e.Incorrect() != 0 {
		t.Errorf("unclassified %v correct %v incorrect %v", e.Unclassified(), e.Correct(), e.Incorrect())
	}
	if !math.IsNaN(e.MeanAbsoluteError()) {
		t.Errorf("MAE with nothing classified = %v", e.MeanAbsoluteError())
	}
	if !strings.Contains(e.ToSummaryString(""), "UnClassified Instances") {
		t.Error("summary should report unclassified rows")
	}
}

func TestNewRejectsNumericClass(t *testing.T) {
	inst := handSet()
	inst.SetClassIndex(0)
	if _, err := New(inst); err == nil {
		t.Error("numeric class should be rejected")
	}
	inst.ClassIndex = -1
	if _, err := New(inst); !errors.Is(err, data.ErrNoClass) {
		t.Errorf("err = %v", err)
	}
}

func alternating(n int) *data.Instances {
	inst := data.NewInstances("alt", []*data.Attribute{data.NewNumeric("x"), data.NewNominal("class", "a", "b")})
	for i := 0; i < n; i++ {
		inst.Rows = append(inst.Rows, []float64{float64(i), float64(i % 2)})
	}
	inst.SetClassIndex(-1)
	return inst
}

func TestCrossValidateTrainsEveryFold(t *testing.T) {
	ctrl := gomock.NewController(t)
	inst := alternating(20)
	m := mocks.NewMockClassifier(ctrl)
	m.EXPECT().Untrained().Return(m).Times(10)
	m.EXPECT().Fit(gomock.Any()).DoAndReturn(func(train *data.Instances) error {
		if train.NumInstances() != 18 {
			t.Errorf("fold trained on %d rows", train.NumInstances())
		}
		return nil
	}).Times(10)
	m.EXPECT().Distribution(gomock.Any()).DoAndReturn(func(x []float64) ([]float64, error) {
		if int(x[0])%2 == 0 {
			return []float64{1, 0}, nil
		}
		return []float64{0, 1}, nil
	}).Times(20)
	e, err := CrossValidateModel(context.Background(), m, inst, 10, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if e.NumInstances() != 20 || e.PctCorrect() != 100 {
		t.Errorf("instances %v, pct correct %v", e.NumInstances(), e.PctCorrect())
	}
}

func TestCrossValidateFitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockClassifier(ctrl)
	boom := errors.New("boom")
	m.EXPECT().Untrained().Return(m).AnyTimes()
	m.EXPECT().Fit(gomock.Any()).Return(boom).AnyTimes()
	_, err := CrossValidateModel(context.Background(), m, alternating(10), 5, 1, 2)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "fold") {
		t.Errorf("err = %v", err)
	}
}

func TestCrossValidateFoldChecks(t *testing.T) {
	if _, err := CrossValidateModel(context.Background(), models.NewNaiveBayes(), alternating(5), 10, 1, 1); err == nil {
		t.Error("more folds than rows should fail")
	}
	if _, err := CrossValidateModel(context.Background(), models.NewNaiveBayes(), alternating(5), 1, 1, 1); err == nil {
		t.Error("one fold should fail")
	}
}

func TestCrossValidateDeterministic(t *testing.T) {
	inst := alternating(60)
	run := func(workers int) string {
		tree := models.NewDecisionTree()
		e, err := CrossValidateModel(context.Background(), tree, inst, 10, 1, workers)
		if err != nil {
			t.Fatal(err)
		}
		return e.ToSummaryString("") + e.ToClassDetailsString("") + e.ToMatrixString("")
	}
	if a, b := run(1), run(4); a != b {
		t.Errorf("results depend on workers:\n%s\n---\n%s", a, b)
	}
}

func TestCrossValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CrossValidateModel(ctx, models.NewNaiveBayes(), alternating(20), 10, 1, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

type runKey struct{}

// contextNB fails unless training sees the context handed to cross-validation.
type contextNB struct {
	*models.NaiveBayes
	fits *atomic.Int32
}

func (c contextNB) Untrained() models.Classifier {
	return contextNB{NaiveBayes: models.NewNaiveBayes(), fits: c.fits}
}

func (c contextNB) FitContext(ctx context.Context, train *data.Instances) error {
	if ctx.Value(runKey{}) == nil {
		return errors.New("fold trained without the run context")
	}
	c.fits.Add(1)
	return c.Fit(train)
}

func TestCrossValidatePassesContextToFit(t *testing.T) {
	var fits atomic.Int32
	ctx := context.WithValue(context.Background(), runKey{}, true)
	c := contextNB{NaiveBayes: models.NewNaiveBayes(), fits: &fits}
	if _, err := CrossValidateModel(ctx, c, alternating(20), 10, 1, 3); err != nil {
		t.Fatal(err)
	}
	if n := fits.Load(); n != 10 {
		t.Errorf("FitContext called %d times, want 10", n)
	}
}

func TestWriteReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	inst := handSet()
	inst.Attributes[1].Values = append(inst.Attributes[1].Values, "never")
	m := mocks.NewMockClassifier(ctrl)
	m.EXPECT().Distribution(gomock.Any()).DoAndReturn(func(x []float64) ([]float64, error) {
		return []float64{0.5, 0.5, 0}, nil
	}).AnyTimes()
	e, err := New(inst)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.EvaluateModel(m, inst); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "reports", "nb.json")
	if err := WriteReport(path, NewReport(e, "NaiveBayes", "hand.arff", 10, 1, 0.5)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Model != "NaiveBayes" || got.Instances != 6 || len(got.Classes) != 3 {
		t.Fatalf("report = %+v", got)
	}
	if got.Classes[2].ROCArea != nil {
		t.Errorf("ROC area of an absent class should be null, got %v", *got.Classes[2].ROCArea)
	}
	if got.Kappa == nil {
		t.Error("kappa should be present")
	}
}
