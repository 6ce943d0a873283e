package integrators

import (
	"math"

	"github.com/san-kum/polyphase/internal/dynamo"
)

// Runge-Kutta-Fehlberg 7(8) coefficients
var (
	rk78C = [13]float64{0, 2.0 / 27.0, 1.0 / 9.0, 1.0 / 6.0, 5.0 / 12.0, 1.0 / 2.0, 5.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0, 1.0 / 3.0, 1, 0, 1}

	rk78A = [13][12]float64{
		{},
		{2.0 / 27.0},
		{1.0 / 36.0, 1.0 / 12.0},
		{1.0 / 24.0, 0, 1.0 / 8.0},
		{5.0 / 12.0, 0, -25.0 / 16.0, 25.0 / 16.0},
		{1.0 / 20.0, 0, 0, 1.0 / 4.0, 1.0 / 5.0},
		{-25.0 / 108.0, 0, 0, 125.0 / 108.0, -65.0 / 27.0, 125.0 / 54.0},
		{31.0 / 300.0, 0, 0, 0, 61.0 / 225.0, -2.0 / 9.0, 13.0 / 900.0},
		{2, 0, 0, -53.0 / 6.0, 704.0 / 45.0, -107.0 / 9.0, 67.0 / 90.0, 3},
		{-91.0 / 108.0, 0, 0, 23.0 / 108.0, -976.0 / 135.0, 311.0 / 54.0, -19.0 / 60.0, 17.0 / 6.0, -1.0 / 12.0},
		{2383.0 / 4100.0, 0, 0, -341.0 / 164.0, 4496.0 / 1025.0, -301.0 / 82.0, 2133.0 / 4100.0, 45.0 / 82.0, 45.0 / 164.0, 18.0 / 41.0},
		{3.0 / 205.0, 0, 0, 0, 0, -6.0 / 41.0, -3.0 / 205.0, -3.0 / 41.0, 3.0 / 41.0, 6.0 / 41.0, 0},
		{-1777.0 / 4100.0, 0, 0, -341.0 / 164.0, 4496.0 / 1025.0, -289.0 / 82.0, 2193.0 / 4100.0, 51.0 / 82.0, 33.0 / 164.0, 12.0 / 41.0, 0, 1},
	}

	// eighth order weights
	rk78B = [13]float64{0, 0, 0, 0, 0, 34.0 / 105.0, 9.0 / 35.0, 9.0 / 35.0, 9.0 / 280.0, 9.0 / 280.0, 0, 41.0 / 840.0, 41.0 / 840.0}

	rk78Err = 41.0 / 840.0
)

// RK78 is the embedded Fehlberg 7(8) pair. The eighth order solution is
// propagated and the difference to the seventh order one drives the step.
type RK78 struct {
	safety   float64
	minScale float64
	maxScale float64

	k       [13]dynamo.State
	scratch dynamo.State
}

func NewRK78() *RK78 {
	return &RK78{
		safety:   0.8,
		minScale: 0.1,
		maxScale: 4.0,
	}
}

func (r *RK78) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

// stages evaluates all thirteen stages for step h and returns the eighth
// order point with the absolute local error estimate.
func (r *RK78) stages(dyn dynamo.System, x dynamo.State, h float64) (dynamo.State, float64) {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x))
	for s := 1; s < 13; s++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for j := 0; j < s; j++ {
				if a := rk78A[s][j]; a != 0 {
					acc += a * r.k[j][i]
				}
			}
			r.scratch[i] = x[i] + h*acc
		}
		copy(r.k[s], dyn.Derive(r.scratch))
	}

	result := make(dynamo.State, n)
	errMax := 0.0
	for i := 0; i < n; i++ {
		acc := 0.0
		for s := 5; s < 13; s++ {
			acc += rk78B[s] * r.k[s][i]
		}
		result[i] = x[i] + h*acc

		errEst := math.Abs(rk78Err * h * (r.k[0][i] + r.k[10][i] - r.k[11][i] - r.k[12][i]))
		errMax = math.Max(errMax, errEst)
	}
	if !result.IsValid() {
		errMax = math.Inf(1)
	}
	return result, errMax
}

func (r *RK78) Step(dyn dynamo.System, x dynamo.State, h float64) dynamo.State {
	result, _ := r.stages(dyn, x, h)
	return result
}

// StepAdaptive retries with a smaller step until the local error is within
// tolerance. A step at the minimum size is always accepted.
func (r *RK78) StepAdaptive(dyn dynamo.System, x dynamo.State, h float64, ctl dynamo.StepControl) (dynamo.State, float64, float64) {
	h = ctl.Clamp(h)
	for {
		result, errMax := r.stages(dyn, x, h)

		if errMax <= ctl.Tolerance || math.Abs(h) <= ctl.MinStep {
			scale := r.maxScale
			if errMax > 0 && !math.IsInf(errMax, 1) {
				scale = math.Min(r.maxScale, r.safety*math.Pow(ctl.Tolerance/errMax, 1.0/8.0))
				scale = math.Max(scale, r.minScale)
			}
			return result, h, ctl.Clamp(h * scale)
		}

		scale := r.minScale
		if !math.IsInf(errMax, 1) {
			scale = math.Max(r.minScale, r.safety*math.Pow(ctl.Tolerance/errMax, 1.0/8.0))
		}
		h = ctl.Clamp(h * scale)
	}
}
