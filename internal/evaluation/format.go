package evaluation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// num renders v with prec decimals, "?" for NaN.
func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "?"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func trimmed(v float64) string {
	if math.IsNaN(v) {
		return "?"
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// ToSummaryString renders the overall counts and error measures under title.
func (e *Evaluation) ToSummaryString(title string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	line := func(label, v, p string) {
		fmt.Fprintf(&b, "%-33s%12s", label, v)
		if p != "" {
			fmt.Fprintf(&b, "%16s %%", p)
		}
		b.WriteString("\n")
	}
	line("Correctly Classified Instances", trimmed(e.Correct()), num(e.PctCorrect(), 4))
	line("Incorrectly Classified Instances", trimmed(e.Incorrect()), num(e.PctIncorrect(), 4))
	line("Kappa statistic", num(e.Kappa(), 4), "")
	line("Mean absolute error", num(e.MeanAbsoluteError(), 4), "")
	line("Root mean squared error", num(e.RootMeanSquaredError(), 4), "")
	line("Relative absolute error", num(e.RelativeAbsoluteError(), 4)+" %", "")
	line("Root relative squared error", num(e.RootRelativeSquaredError(), 4)+" %", "")
	if e.unclassified > 0 {
		line("UnClassified Instances", trimmed(e.unclassified), num(e.PctUnclassified(), 4))
	}
	line("Total Number of Instances", trimmed(e.withClass), "")
	return b.String()
}

var detailWidths = []int{9, 9, 11, 9, 11, 9, 10, 10}

// ToClassDetailsString renders the per-class table followed by the
// frequency-weighted averages.
func (e *Evaluation) ToClassDetailsString(title string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-17s%-9s%-9s%-11s%-9s%-11s%-9s%-10s%-10s%s\n",
		"", "TP Rate", "FP Rate", "Precision", "Recall", "F-Measure", "MCC", "ROC Area", "PRC Area", "Class")
	row := func(lead, label string, vals ...float64) {
		fmt.Fprintf(&b, "%-17s", lead)
		for i, v := range vals {
			fmt.Fprintf(&b, "%-*s", detailWidths[i], num(v, 3))
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	for c := 0; c < e.numClasses; c++ {
		row("", e.header.ClassLabel(c),
			e.TruePositiveRate(c), e.FalsePositiveRate(c), e.Precision(c), e.Recall(c),
			e.FMeasure(c), e.MatthewsCorrelation(c), e.AreaUnderROC(c), e.AreaUnderPRC(c))
	}
	row("Weighted Avg.", "",
		e.WeightedTruePositiveRate(), e.WeightedFalsePositiveRate(), e.WeightedPrecision(), e.WeightedRecall(),
		e.WeightedFMeasure(), e.WeightedMatthewsCorrelation(), e.WeightedAreaUnderROC(), e.WeightedAreaUnderPRC())
	return b.String()
}

// ToMatrixString renders the confusion matrix with letter ids for the classes.
func (e *Evaluation) ToMatrixString(title string) string {
	ids := make([]string, e.numClasses)
	width := 1
	for c := range ids {
		ids[c] = classID(c)
		width = max(width, len(ids[c]))
		for _, v := range e.confusion[c] {
			width = max(width, len(trimmed(v)))
		}
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for _, id := range ids {
		fmt.Fprintf(&b, " %*s", width, id)
	}
	b.WriteString("   <-- classified as\n")
	for c, r := range e.confusion {
		for _, v := range r {
			fmt.Fprintf(&b, " %*s", width, trimmed(v))
		}
		fmt.Fprintf(&b, " | %*s = %s\n", width, ids[c], e.header.ClassLabel(c))
	}
	return b.String()
}

// classID maps 0..25 to a..z and continues with ba, bb, ...
func classID(c int) string {
	var s []byte
	for {
		s = append([]byte{byte('a' + c%26)}, s...)
		c /= 26
		if c == 0 {
			break
		}
	}
	return string(s)
}
