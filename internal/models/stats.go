package models

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// addErrs estimates the extra errors on top of e observed errors in n
// instances at confidence cf, the upper limit of the binomial interval.
func addErrs(n, e, cf float64) float64 {
	if e < 1 {
		base := n * (1 - math.Pow(cf, 1/n))
		if e == 0 {
			return base
		}
		return base + e*(addErrs(n, 1, cf)-base)
	}
	if e+0.5 >= n {
		return math.Max(n-e, 0)
	}
	z := distuv.UnitNormal.Quantile(1 - cf)
	f := (e + 0.5) / n
	r := (f + z*z/(2*n) + z*math.Sqrt(f/n-f*f/n+z*z/(4*n*n))) / (1 + z*z/n)
	return r*n - e
}

// log2Floor returns int(log2(n)), zero for n < 1.
func log2Floor(n int) int {
	if n < 1 {
		return 0
	}
	return int(math.Log2(float64(n)))
}
