package models

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRandomForestIndependentOfWorkers(t *testing.T) {
	inst := weather(t)
	serial := NewRandomForest()
	serial.NEstimators = 25
	serial.Workers = 1
	parallel := NewRandomForest()
	parallel.NEstimators = 25
	parallel.Workers = 8
	if err := serial.Fit(inst); err != nil {
		t.Fatal(err)
	}
	if err := parallel.Fit(inst); err != nil {
		t.Fatal(err)
	}
	for r, x := range inst.Rows {
		a, _ := serial.Distribution(x)
		b, _ := parallel.Distribution(x)
		for c := range a {
			if a[c] != b[c] {
				t.Fatalf("row %d: %v != %v", r, a, b)
			}
		}
	}
	if serial.OOBError < 0 || serial.OOBError > 1 || serial.OOBError != parallel.OOBError {
		t.Errorf("oob errors %v and %v", serial.OOBError, parallel.OOBError)
	}
	out := serial.String()
	if !strings.Contains(out, "Random forest of 25 trees, each constructed while considering 3 random features.") {
		t.Errorf("unexpected model text:\n%s", out)
	}
}

func TestRandomForestSeparable(t *testing.T) {
	inst := threshold(30)
	rf := NewRandomForest()
	rf.NEstimators = 15
	if err := rf.Fit(inst); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		x    float64
		want int
	}{{1, 0}, {30, 1}} {
		p, err := Predict(rf, []float64{tc.x, 0})
		if err != nil {
			t.Fatal(err)
		}
		if p != tc.want {
			t.Errorf("Predict(%v) = %d, want %d", tc.x, p, tc.want)
		}
	}
	for _, dt := range rf.Trees {
		if dt.MaxDepth != 10 || !dt.Unpruned || dt.MaxFeatures != 1 {
			t.Fatalf("tree options = %+v", dt)
		}
	}
}

func TestRandomForestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rf := NewRandomForest()
	if err := rf.FitContext(ctx, weather(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if rf.Trees != nil {
		t.Error("cancelled fit should not install trees")
	}
}

func TestFitContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, c := range []Classifier{NewRandomForest(), NewNaiveBayes()} {
		if err := FitContext(ctx, c, weather(t)); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", c.Name(), err)
		}
		if c.Header() != nil {
			t.Errorf("%s: cancelled fit should leave the model untrained", c.Name())
		}
	}
}

func TestBagging(t *testing.T) {
	inst := threshold(40)
	bg := NewBagging()
	bg.NEstimators = 5
	if err := bg.Fit(inst); err != nil {
		t.Fatal(err)
	}
	if len(bg.Trees) != 5 {
		t.Fatalf("got %d trees", len(bg.Trees))
	}
	if acc := trainingAccuracy(t, bg, inst); acc < 0.9 {
		t.Errorf("training accuracy = %v", acc)
	}
	if !strings.HasPrefix(bg.String(), "Bagging with 5 iterations") {
		t.Errorf("unexpected model text:\n%s", bg)
	}
}
