package data

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
)

// Instances is an in-memory dataset. Rows may be shared between Instances
// produced by Subset, TrainCV and TestCV; callers must not mutate them.
type Instances struct {
	Relation   string
	Attributes []*Attribute
	Rows       [][]float64
	ClassIndex int
}

var ErrNoClass = errors.New("class index not set")

func NewInstances(relation string, attrs []*Attribute) *Instances {
	return &Instances{Relation: relation, Attributes: attrs, ClassIndex: -1}
}

func (in *Instances) NumAttributes() int { return len(in.Attributes) }

func (in *Instances) NumInstances() int { return len(in.Rows) }

// SetClassIndex sets the class attribute; a negative index selects the last one.
func (in *Instances) SetClassIndex(i int) error {
	if i < 0 {
		i = len(in.Attributes) - 1
	}
	if i < 0 || i >= len(in.Attributes) {
		return fmt.Errorf("class index %d out of range [0,%d)", i, len(in.Attributes))
	}
	in.ClassIndex = i
	return nil
}

func (in *Instances) ClassAttribute() *Attribute {
	if in.ClassIndex < 0 || in.ClassIndex >= len(in.Attributes) {
		return nil
	}
	return in.Attributes[in.ClassIndex]
}

func (in *Instances) NumClasses() int {
	a := in.ClassAttribute()
	if a == nil {
		return 0
	}
	if a.IsNominal() {
		return a.NumValues()
	}
	return 1
}

// ClassValue returns the class index of row r, or -1 when missing.
func (in *Instances) ClassValue(r int) int {
	v := in.Rows[r][in.ClassIndex]
	if IsMissing(v) {
		return -1
	}
	return int(v)
}

func (in *Instances) ClassCounts() []float64 {
	counts := make([]float64, in.NumClasses())
	for r := range in.Rows {
		if c := in.ClassValue(r); c >= 0 && c < len(counts) {
			counts[c]++
		}
	}
	return counts
}

// Add appends a row after checking its width.
func (in *Instances) Add(row []float64) error {
	if len(row) != len(in.Attributes) {
		return fmt.Errorf("row has %d values, want %d", len(row), len(in.Attributes))
	}
	in.Rows = append(in.Rows, row)
	return nil
}

// Header returns a copy of the dataset description without rows.
func (in *Instances) Header() *Instances {
	attrs := make([]*Attribute, len(in.Attributes))
	for i, a := range in.Attributes {
		attrs[i] = a.clone()
	}
	return &Instances{Relation: in.Relation, Attributes: attrs, ClassIndex: in.ClassIndex}
}

func (in *Instances) withRows(rows [][]float64) *Instances {
	return &Instances{Relation: in.Relation, Attributes: in.Attributes, Rows: rows, ClassIndex: in.ClassIndex}
}

// Subset returns the rows at idx, duplicates allowed.
func (in *Instances) Subset(idx []int) *Instances {
	rows := make([][]float64, len(idx))
	for i, j := range idx {
		rows[i] = in.Rows[j]
	}
	return in.withRows(rows)
}

// Copy returns a dataset with its own row order sharing row storage.
func (in *Instances) Copy() *Instances {
	return in.withRows(append([][]float64(nil), in.Rows...))
}

func (in *Instances) Randomize(rng *rand.Rand) {
	for i := len(in.Rows) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		in.Rows[i], in.Rows[j] = in.Rows[j], in.Rows[i]
	}
}

// Stratify reorders rows so that the contiguous blocks used by TestCV hold
// each class in proportion. Rows are dealt class by class round-robin over the
// folds; relative order within a class is preserved.
func (in *Instances) Stratify(folds int) {
	if folds <= 1 || in.ClassAttribute() == nil || !in.ClassAttribute().IsNominal() {
		return
	}
	byClass := make([][][]float64, in.NumClasses()+1)
	for r, row := range in.Rows {
		c := in.ClassValue(r)
		if c < 0 {
			c = in.NumClasses()
		}
		byClass[c] = append(byClass[c], row)
	}
	buckets := make([][][]float64, folds)
	p := 0
	for _, rows := range byClass {
		for _, row := range rows {
			buckets[p%folds] = append(buckets[p%folds], row)
			p++
		}
	}
	out := in.Rows[:0]
	for _, b := range buckets {
		out = append(out, b...)
	}
	in.Rows = out
}

func (in *Instances) foldBounds(folds, fold int) (int, int) {
	n := len(in.Rows)
	size := n / folds
	offset := fold*size + min(fold, n%folds)
	if fold < n%folds {
		size++
	}
	return offset, offset + size
}

func checkFolds(n, folds, fold int) error {
	if folds < 2 {
		return fmt.Errorf("number of folds must be at least 2, got %d", folds)
	}
	if folds > n {
		return fmt.Errorf("cannot have %d folds with %d instances", folds, n)
	}
	if fold < 0 || fold >= folds {
		return fmt.Errorf("fold %d out of range [0,%d)", fold, folds)
	}
	return nil
}

// TestCV returns the fold-th contiguous block of rows.
func (in *Instances) TestCV(folds, fold int) (*Instances, error) {
	if err := checkFolds(len(in.Rows), folds, fold); err != nil {
		return nil, err
	}
	lo, hi := in.foldBounds(folds, fold)
	return in.withRows(append([][]float64(nil), in.Rows[lo:hi]...)), nil
}

// TrainCV returns every row outside the fold-th block.
func (in *Instances) TrainCV(folds, fold int) (*Instances, error) {
	if err := checkFolds(len(in.Rows), folds, fold); err != nil {
		return nil, err
	}
	lo, hi := in.foldBounds(folds, fold)
	rows := make([][]float64, 0, len(in.Rows)-(hi-lo))
	rows = append(rows, in.Rows[:lo]...)
	rows = append(rows, in.Rows[hi:]...)
	return in.withRows(rows), nil
}

// FormatValue renders value v of attribute a as it appears in data files.
func (in *Instances) FormatValue(a int, v float64) string {
	if IsMissing(v) {
		return "?"
	}
	attr := in.Attributes[a]
	if attr.IsNominal() {
		i := int(v)
		if i < 0 || i >= len(attr.Values) {
			return "?"
		}
		return attr.Values[i]
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ClassLabel returns the label of class index c.
func (in *Instances) ClassLabel(c int) string {
	a := in.ClassAttribute()
	if a == nil || c < 0 || c >= len(a.Values) {
		return "?"
	}
	return a.Values[c]
}
