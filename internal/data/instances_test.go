package data

import (
	"math/rand"
	"testing"
)

func twoClass(pos, neg int) *Instances {
	inst := NewInstances("t", []*Attribute{NewNumeric("id"), NewNominal("c", "p", "n")})
	id := 0
	for i := 0; i < pos; i++ {
		inst.Rows = append(inst.Rows, []float64{float64(id), 0})
		id++
	}
	for i := 0; i < neg; i++ {
		inst.Rows = append(inst.Rows, []float64{float64(id), 1})
		id++
	}
	inst.SetClassIndex(-1)
	return inst
}

func TestCVFoldSizes(t *testing.T) {
	inst := twoClass(12, 11)
	seen := map[float64]int{}
	for k := 0; k < 10; k++ {
		test, err := inst.TestCV(10, k)
		if err != nil {
			t.Fatal(err)
		}
		train, err := inst.TrainCV(10, k)
		if err != nil {
			t.Fatal(err)
		}
		want := 2
		if k < 3 {
			want = 3
		}
		if test.NumInstances() != want {
			t.Errorf("fold %d test size = %d, want %d", k, test.NumInstances(), want)
		}
		if train.NumInstances()+test.NumInstances() != 23 {
			t.Errorf("fold %d sizes do not add up", k)
		}
		for _, row := range test.Rows {
			seen[row[0]]++
		}
	}
	if len(seen) != 23 {
		t.Errorf("%d distinct rows tested, want 23", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("row %v tested %d times", id, n)
		}
	}
}

func TestCVFoldErrors(t *testing.T) {
	inst := twoClass(2, 2)
	if _, err := inst.TestCV(1, 0); err == nil {
		t.Error("1 fold should fail")
	}
	if _, err := inst.TrainCV(5, 0); err == nil {
		t.Error("more folds than rows should fail")
	}
	if _, err := inst.TestCV(2, 2); err == nil {
		t.Error("fold out of range should fail")
	}
}

func TestStratifyBalancesFolds(t *testing.T) {
	inst := twoClass(50, 50)
	inst.Randomize(rand.New(rand.NewSource(1)))
	inst.Stratify(10)
	for k := 0; k < 10; k++ {
		test, _ := inst.TestCV(10, k)
		c := test.ClassCounts()
		if c[0] != 5 || c[1] != 5 {
			t.Errorf("fold %d class counts = %v, want [5 5]", k, c)
		}
	}
}

func TestRandomizeIsDeterministic(t *testing.T) {
	a, b := twoClass(20, 20), twoClass(20, 20)
	a.Randomize(rand.New(rand.NewSource(7)))
	b.Randomize(rand.New(rand.NewSource(7)))
	for i := range a.Rows {
		if a.Rows[i][0] != b.Rows[i][0] {
			t.Fatalf("row %d differs with the same seed", i)
		}
	}
}

func TestSetClassIndex(t *testing.T) {
	inst := twoClass(1, 1)
	if err := inst.SetClassIndex(5); err == nil {
		t.Error("out of range class index should fail")
	}
	if err := inst.SetClassIndex(0); err != nil {
		t.Fatal(err)
	}
	if inst.NumClasses() != 1 {
		t.Errorf("numeric class should report 1 class, got %d", inst.NumClasses())
	}
	h := inst.Header()
	if h.NumInstances() != 0 || h.ClassIndex != 0 {
		t.Error("header should keep class index and drop rows")
	}
	h.Attributes[1].Values[0] = "changed"
	if inst.Attributes[1].Values[0] != "p" {
		t.Error("header must not alias attribute labels")
	}
}
