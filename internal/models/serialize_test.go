package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	inst := weather(t)
	rf := NewRandomForest()
	rf.NEstimators = 10
	for _, c := range []Classifier{NewDecisionTree(), NewNaiveBayes(), rf, NewBagging()} {
		if err := c.Fit(inst); err != nil {
			t.Fatalf("%s: %v", c.Name(), err)
		}
		path := filepath.Join(t.TempDir(), "Models", c.Name()+"_1.model")
		if err := Save(path, c); err != nil {
			t.Fatalf("%s: %v", c.Name(), err)
		}
		back, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", c.Name(), err)
		}
		if back.Name() != c.Name() {
			t.Errorf("loaded %s, saved %s", back.Name(), c.Name())
		}
		if back.String() != c.String() {
			t.Errorf("%s: model text changed after reload", c.Name())
		}
		for r, x := range inst.Rows {
			a, _ := c.Distribution(x)
			b, err := back.Distribution(x)
			if err != nil {
				t.Fatalf("%s: %v", c.Name(), err)
			}
			for k := range a {
				if a[k] != b[k] {
					t.Fatalf("%s row %d: %v != %v", c.Name(), r, a, b)
				}
			}
		}
	}
}

func TestSaveRejectsUntrained(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "x.model"), NewNaiveBayes()); err != ErrNotTrained {
		t.Errorf("err = %v, want ErrNotTrained", err)
	}
}

func TestLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.model")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("garbage should not decode")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.model")); err == nil {
		t.Error("missing file should fail")
	}
}
