package config

import "sort"

var Presets = map[string]*Config{
	"fast": {
		Integrator: "rk45", View: "sphere",
		Integration: IntegrationConfig{Epsilon: 0.02, HMin: 1e-6, HMax: 0.5, Step: 0.05, Tolerance: 1e-6, IntPoints: 100},
		LimitCycle:  LimitCycleConfig{Grid: 0.05, Points: 500, CheckEvery: 5, Tolerance: 1e-6},
	},
	"accurate": {
		Integrator: "rk78", View: "sphere",
		Integration: IntegrationConfig{Epsilon: 0.005, HMin: 1e-12, HMax: 0.05, Step: 0.001, Tolerance: 1e-12, IntPoints: 500},
		LimitCycle:  LimitCycleConfig{Grid: 0.005, Points: 5000, CheckEvery: 20, Tolerance: 1e-10},
	},
	"infinity": {
		Integrator: "rk78", View: "U1",
		Integration: IntegrationConfig{Epsilon: 0.01, HMin: 1e-10, HMax: 0.1, Step: 0.01, Tolerance: 1e-10, IntPoints: 400},
		LimitCycle:  LimitCycleConfig{Grid: 0.01, Points: 2000, CheckEvery: 10, Tolerance: 1e-8},
	},
}

// GetPreset returns a copy of the named preset with default output
// settings, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Output = DefaultConfig().Output
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
