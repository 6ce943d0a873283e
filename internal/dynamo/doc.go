// Package dynamo provides the core numerical primitives shared by the
// phase-portrait engine.
//
// The package defines the fundamental interfaces and types for integrating
// autonomous planar vector fields in a single chart:
//
//   - [State]: vector representing a point in chart coordinates
//   - [System]: interface for an autonomous field (dX/dt = f(X))
//   - [Integrator]: fixed step integrator interface
//   - [AdaptiveIntegrator]: integrator with local error control
//
// # Example
//
//	field := dynamo.SystemFunc(func(x dynamo.State) dynamo.State {
//		return dynamo.State{x[0], -x[1]}
//	})
//	rk := integrators.NewRK78()
//	y, h, next := rk.StepAdaptive(field, dynamo.State{0.1, 0}, 0.01, dynamo.DefaultStepControl())
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// The engine drives everything from a single session.
package dynamo
