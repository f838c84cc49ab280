package evaluation

import (
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ClassReport holds the per-class figures of a Report.
type ClassReport struct {
	Label     string   `json:"label"`
	TPRate    *float64 `json:"tp_rate"`
	FPRate    *float64 `json:"fp_rate"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	FMeasure  *float64 `json:"f_measure"`
	MCC       *float64 `json:"mcc"`
	ROCArea   *float64 `json:"roc_area"`
	PRCArea   *float64 `json:"prc_area"`
}

// Report is the machine-readable form of an evaluation run. Undefined
// values are encoded as null.
type Report struct {
	Model            string        `json:"model"`
	Dataset          string        `json:"dataset"`
	Folds            int           `json:"folds"`
	Seed             int64         `json:"seed"`
	RuntimeSeconds   float64       `json:"runtime_seconds"`
	Instances        float64       `json:"instances"`
	Correct          float64       `json:"correct"`
	Incorrect        float64       `json:"incorrect"`
	Unclassified     float64       `json:"unclassified"`
	PctCorrect       *float64      `json:"pct_correct"`
	Kappa            *float64      `json:"kappa"`
	MAE              *float64      `json:"mae"`
	RMSE             *float64      `json:"rmse"`
	RAE              *float64      `json:"rae_pct"`
	RRSE             *float64      `json:"rrse_pct"`
	ErrorRate        *float64      `json:"error_rate"`
	WeightedFMeasure *float64      `json:"weighted_f_measure"`
	WeightedROCArea  *float64      `json:"weighted_roc_area"`
	Classes          []ClassReport `json:"classes"`
	ConfusionMatrix  [][]float64   `json:"confusion_matrix"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewReport snapshots e for the named model and dataset.
func NewReport(e *Evaluation, model, dataset string, folds int, seed int64, runtime float64) *Report {
	r := &Report{
		Model:            model,
		Dataset:          dataset,
		Folds:            folds,
		Seed:             seed,
		RuntimeSeconds:   runtime,
		Instances:        e.NumInstances(),
		Correct:          e.Correct(),
		Incorrect:        e.Incorrect(),
		Unclassified:     e.Unclassified(),
		PctCorrect:       nullable(e.PctCorrect()),
		Kappa:            nullable(e.Kappa()),
		MAE:              nullable(e.MeanAbsoluteError()),
		RMSE:             nullable(e.RootMeanSquaredError()),
		RAE:              nullable(e.RelativeAbsoluteError()),
		RRSE:             nullable(e.RootRelativeSquaredError()),
		ErrorRate:        nullable(e.ErrorRate()),
		WeightedFMeasure: nullable(e.WeightedFMeasure()),
		WeightedROCArea:  nullable(e.WeightedAreaUnderROC()),
		ConfusionMatrix:  e.ConfusionMatrix(),
	}
	for c := 0; c < e.numClasses; c++ {
		r.Classes = append(r.Classes, ClassReport{
			Label:     e.header.ClassLabel(c),
			TPRate:    nullable(e.TruePositiveRate(c)),
			FPRate:    nullable(e.FalsePositiveRate(c)),
			Precision: nullable(e.Precision(c)),
			Recall:    nullable(e.Recall(c)),
			FMeasure:  nullable(e.FMeasure(c)),
			MCC:       nullable(e.MatthewsCorrelation(c)),
			ROCArea:   nullable(e.AreaUnderROC(c)),
			PRCArea:   nullable(e.AreaUnderPRC(c)),
		})
	}
	return r
}

// WriteReport writes r as indented JSON, creating the directory on demand.
func WriteReport(path string, r *Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
