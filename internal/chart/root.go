package chart

import "math"

const (
	rootBisections = 8
	rootMaxIter    = 100
	rootTolerance  = 1e-15
)

// FindRoot locates a zero of an increasing function f on [lo, hi] with
// f(lo) <= 0 <= f(hi). A few bisections seed Newton's method; a Newton
// step that leaves the bracket, or whose size underflows, falls back to
// bisection. The best estimate is returned when the iteration budget runs
// out, so callers always get a usable value.
func FindRoot(f, df func(float64) float64, lo, hi float64) float64 {
	flo := f(lo)
	if flo >= 0 {
		return lo
	}
	if f(hi) <= 0 {
		return hi
	}

	for i := 0; i < rootBisections; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	x := 0.5 * (lo + hi)
	for i := 0; i < rootMaxIter; i++ {
		fx := f(x)
		if fx == 0 {
			return x
		}
		if fx < 0 {
			lo = x
		} else {
			hi = x
		}

		d := df(x)
		next := x - fx/d
		if d == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-x) <= rootTolerance*math.Max(1, math.Abs(x)) {
			return next
		}
		x = next
	}
	return x
}

// cylinderRadius solves a²w^{2p} + b²w^{2q} = 1 for w > 0.
func cylinderRadius(a, b float64, p, q int) float64 {
	a2, b2 := a*a, b*b
	if a2 == 0 && b2 == 0 {
		return math.Inf(1)
	}
	f := func(w float64) float64 {
		return a2*math.Pow(w, float64(2*p)) + b2*math.Pow(w, float64(2*q)) - 1
	}
	df := func(w float64) float64 {
		return float64(2*p)*a2*math.Pow(w, float64(2*p-1)) + float64(2*q)*b2*math.Pow(w, float64(2*q-1))
	}

	hi := 1.0
	for i := 0; f(hi) < 0 && i < 2000; i++ {
		hi *= 2
	}
	return FindRoot(f, df, 0, hi)
}

// rootN is the real n-th root; odd roots keep the sign, even roots use |v|.
func rootN(v float64, n int) float64 {
	if n == 1 {
		return v
	}
	r := math.Pow(math.Abs(v), 1/float64(n))
	if v < 0 && n%2 == 1 {
		return -r
	}
	return r
}
