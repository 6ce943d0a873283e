package config

import (
	"fmt"
	"os"

	"github.com/san-kum/polyphase/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEpsilon   = 0.01
	DefaultHMin      = 1e-10
	DefaultHMax      = 0.1
	DefaultStep      = 0.01
	DefaultTolerance = 1e-10
	DefaultIntPoints = 200

	DefaultLCGrid       = 0.01
	DefaultLCPoints     = 2000
	DefaultLCCheckEvery = 10
	DefaultLCTolerance  = 1e-8

	DefaultWidth  = 80
	DefaultHeight = 40
)

type Config struct {
	Integrator  string            `yaml:"integrator"`
	View        string            `yaml:"view"`
	Integration IntegrationConfig `yaml:"integration"`
	LimitCycle  LimitCycleConfig  `yaml:"limit_cycle"`
	Output      OutputConfig      `yaml:"output"`
}

type IntegrationConfig struct {
	Epsilon   float64 `yaml:"epsilon"`
	HMin      float64 `yaml:"h_min"`
	HMax      float64 `yaml:"h_max"`
	Step      float64 `yaml:"step"`
	Tolerance float64 `yaml:"tolerance"`
	IntPoints int     `yaml:"int_points"`
}

type LimitCycleConfig struct {
	Grid       float64 `yaml:"lc_grid"`
	Points     int     `yaml:"lc_points"`
	CheckEvery int     `yaml:"lc_check_every"`
	Tolerance  float64 `yaml:"lc_tolerance"`
}

type OutputConfig struct {
	// Bounds is x0 y0 x1 y1 for planar views.
	Bounds []float64 `yaml:"bounds"`
	Width  int       `yaml:"width"`
	Height int       `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk78",
		View:       "sphere",
		Integration: IntegrationConfig{
			Epsilon:   DefaultEpsilon,
			HMin:      DefaultHMin,
			HMax:      DefaultHMax,
			Step:      DefaultStep,
			Tolerance: DefaultTolerance,
			IntPoints: DefaultIntPoints,
		},
		LimitCycle: LimitCycleConfig{
			Grid:       DefaultLCGrid,
			Points:     DefaultLCPoints,
			CheckEvery: DefaultLCCheckEvery,
			Tolerance:  DefaultLCTolerance,
		},
		Output: OutputConfig{
			Bounds: []float64{-1, -1, 1, 1},
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	in := c.Integration
	if in.Epsilon <= 0 {
		return invalid("epsilon must be positive, got %g", in.Epsilon)
	}
	if in.HMin <= 0 || in.HMax <= 0 {
		return invalid("step bounds must be positive, got [%g, %g]", in.HMin, in.HMax)
	}
	if in.HMin > in.HMax {
		return invalid("h_min %g exceeds h_max %g", in.HMin, in.HMax)
	}
	if in.Step < in.HMin || in.Step > in.HMax {
		return invalid("step %g outside [%g, %g]", in.Step, in.HMin, in.HMax)
	}
	if in.Tolerance <= 0 {
		return invalid("tolerance must be positive, got %g", in.Tolerance)
	}
	if in.IntPoints < 1 {
		return invalid("int_points must be at least 1, got %d", in.IntPoints)
	}

	lc := c.LimitCycle
	if lc.Grid <= 0 {
		return invalid("lc_grid must be positive, got %g", lc.Grid)
	}
	if lc.Points < 1 || lc.CheckEvery < 1 {
		return invalid("lc_points and lc_check_every must be at least 1")
	}
	if lc.Tolerance <= 0 {
		return invalid("lc_tolerance must be positive, got %g", lc.Tolerance)
	}

	if b := c.Output.Bounds; len(b) != 0 && (len(b) != 4 || b[0] >= b[2] || b[1] >= b[3]) {
		return invalid("bounds must be x0 y0 x1 y1 with x0 < x1 and y0 < y1, got %v", b)
	}
	if c.Output.Width < 1 || c.Output.Height < 1 {
		return invalid("output size must be positive, got %dx%d", c.Output.Width, c.Output.Height)
	}
	return nil
}

// StepControl returns the adaptive step bounds of the integration section.
func (c *Config) StepControl() dynamo.StepControl {
	return dynamo.StepControl{
		MinStep:   c.Integration.HMin,
		MaxStep:   c.Integration.HMax,
		Tolerance: c.Integration.Tolerance,
	}
}
