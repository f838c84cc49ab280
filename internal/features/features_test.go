package features

import (
	"testing"

	"nurseryml/internal/data"
)

func sample() *data.Instances {
	in := data.NewInstances("s", []*data.Attribute{
		data.NewNominal("parents", "usual", "great_pret"),
		data.NewNumeric("age"),
		data.NewNominal("health", "priority", "not_recom"),
		data.NewNominal("class", "yes", "no"),
	})
	in.Rows = [][]float64{{0, 3, 1, 1}, {1, 5, 0, 0}}
	in.SetClassIndex(-1)
	return in
}

func TestSelectKeepsClass(t *testing.T) {
	out, err := Select(sample(), []string{"health", "parents"})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumAttributes() != 3 {
		t.Fatalf("got %d attributes", out.NumAttributes())
	}
	if out.Attributes[0].Name != "parents" || out.Attributes[1].Name != "health" {
		t.Errorf("order not preserved: %s, %s", out.Attributes[0].Name, out.Attributes[1].Name)
	}
	if out.ClassAttribute() == nil || out.ClassAttribute().Name != "class" {
		t.Error("class attribute lost")
	}
	if out.Rows[0][1] != 1 || out.Rows[1][2] != 0 {
		t.Errorf("rows not projected: %v", out.Rows)
	}
	if _, err := Select(sample(), []string{"colour"}); err == nil {
		t.Error("unknown attribute should fail")
	}
}

func TestVectorize(t *testing.T) {
	h := sample().Header()
	v, err := Vectorize(h, map[string]string{"parents": "great_pret", "age": "4.5"})
	if err != nil {
		t.Fatal(err)
	}
	if v[0] != 1 || v[1] != 4.5 || !data.IsMissing(v[2]) || !data.IsMissing(v[3]) {
		t.Errorf("vector = %v", v)
	}
	if _, err := Vectorize(h, map[string]string{"parents": "rich"}); err == nil {
		t.Error("unknown label should fail")
	}
	if _, err := Vectorize(h, map[string]string{"age": "old"}); err == nil {
		t.Error("non-numeric value should fail")
	}
	if _, err := Vectorize(h, map[string]string{"colour": "red"}); err == nil {
		t.Error("unknown attribute should fail")
	}
}

func TestBuildRecord(t *testing.T) {
	rec, err := BuildRecord(sample().Header(), []string{"usual", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if rec["parents"] != "usual" || rec["age"] != "2" || len(rec) != 2 {
		t.Errorf("record = %v", rec)
	}
	if _, err := BuildRecord(sample().Header(), []string{"a", "b", "c", "d", "e"}); err == nil {
		t.Error("too many values should fail")
	}
}
