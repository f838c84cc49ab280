package models

import (
	"strings"
	"testing"

	"nurseryml/internal/data"
)

const weatherARFF = `@relation weather.symbolic
@attribute outlook {sunny, overcast, rainy}
@attribute temperature {hot, mild, cool}
@attribute humidity {high, normal}
@attribute windy {TRUE, FALSE}
@attribute play {yes, no}
@data
sunny,hot,high,FALSE,no
sunny,hot,high,TRUE,no
overcast,hot,high,FALSE,yes
rainy,mild,high,FALSE,yes
rainy,cool,normal,FALSE,yes
rainy,cool,normal,TRUE,no
overcast,cool,normal,TRUE,yes
sunny,mild,high,FALSE,no
sunny,cool,normal,FALSE,yes
rainy,mild,normal,FALSE,yes
sunny,mild,normal,TRUE,yes
overcast,mild,high,TRUE,yes
overcast,hot,normal,FALSE,yes
rainy,mild,high,TRUE,no
`

func weather(t *testing.T) *data.Instances {
	t.Helper()
	inst, err := data.ReadARFF(strings.NewReader(weatherARFF))
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.SetClassIndex(-1); err != nil {
		t.Fatal(err)
	}
	return inst
}

// threshold builds x = 1..n with class a for x <= n/2 and b above.
func threshold(n int) *data.Instances {
	inst := data.NewInstances("threshold", []*data.Attribute{data.NewNumeric("x"), data.NewNominal("class", "a", "b")})
	for i := 1; i <= n; i++ {
		c := 0.0
		if i > n/2 {
			c = 1
		}
		inst.Rows = append(inst.Rows, []float64{float64(i), c})
	}
	inst.SetClassIndex(-1)
	return inst
}

func row(t *testing.T, inst *data.Instances, labels ...string) []float64 {
	t.Helper()
	x := make([]float64, inst.NumAttributes())
	for j := range x {
		x[j] = data.Missing()
	}
	for j, l := range labels {
		k := inst.Attributes[j].IndexOf(l)
		if k < 0 {
			t.Fatalf("unknown label %q for %s", l, inst.Attributes[j].Name)
		}
		x[j] = float64(k)
	}
	return x
}

func trainingAccuracy(t *testing.T, c Classifier, inst *data.Instances) float64 {
	t.Helper()
	correct := 0
	for r, x := range inst.Rows {
		p, err := Predict(c, x)
		if err != nil {
			t.Fatal(err)
		}
		if p == inst.ClassValue(r) {
			correct++
		}
	}
	return float64(correct) / float64(inst.NumInstances())
}
