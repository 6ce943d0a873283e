package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/polyphase/internal/dynamo"
)

var adaptive = map[string]func() dynamo.AdaptiveIntegrator{
	"rk78": func() dynamo.AdaptiveIntegrator { return NewRK78() },
	"rk45": func() dynamo.AdaptiveIntegrator { return NewRK45() },
}

// New returns the adaptive integrator registered under name.
func New(name string) (dynamo.AdaptiveIntegrator, error) {
	fn, ok := adaptive[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(adaptive))
	for name := range adaptive {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
