package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an autonomous vector field in one chart.
type System interface {
	Derive(x State) State
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(x State) State

func (f SystemFunc) Derive(x State) State { return f(x) }

type Integrator interface {
	Step(dyn System, x State, h float64) State
}

// StepControl bounds an adaptive step. Step sizes are magnitudes; the sign
// of h passed to StepAdaptive selects the integration direction.
type StepControl struct {
	MinStep   float64
	MaxStep   float64
	Tolerance float64
}

func DefaultStepControl() StepControl {
	return StepControl{
		MinStep:   1e-10,
		MaxStep:   0.1,
		Tolerance: 1e-10,
	}
}

// Clamp limits |h| to [MinStep, MaxStep] keeping its sign.
func (c StepControl) Clamp(h float64) float64 {
	sign := 1.0
	if h < 0 {
		sign = -1
	}
	a := math.Abs(h)
	if a < c.MinStep {
		a = c.MinStep
	}
	if a > c.MaxStep {
		a = c.MaxStep
	}
	return sign * a
}

// AdaptiveIntegrator takes one accepted step and reports the step that was
// used together with the suggested next step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, h float64, ctl StepControl) (next State, used, suggested float64)
}
