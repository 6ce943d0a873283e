package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/gcf"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
	"github.com/san-kum/polyphase/internal/render"
	"github.com/san-kum/polyphase/internal/tab"
)

// levelFromFlags maps --verbose and --quiet to a log level.
func levelFromFlags(verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromFlags(verbose, quiet),
	}))
}

// loadConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("view") {
		cfg.View = view
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("epsilon") {
		cfg.Integration.Epsilon = epsilon
	}
	if flags.Changed("points") {
		cfg.Integration.IntPoints = intPoints
	}
	if flags.Changed("bounds") {
		b, err := parseFloats(bounds, 4)
		if err != nil {
			return nil, fmt.Errorf("bounds: %w", err)
		}
		cfg.Output.Bounds = b
	}
	if flags.Changed("width") {
		cfg.Output.Width = width
	}
	if flags.Changed("height") {
		cfg.Output.Height = height
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadResults reads a table file, or builds the chart fields of the
// polynomial system given by --p and --q. A bare system has no singular
// points; those come from tables only.
func loadResults() (*portrait.Results, error) {
	if tabFile != "" {
		f, err := os.Open(tabFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		res, err := tab.Read(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", tabFile, err)
		}
		gcf.ApplyGCF(res)
		return res, nil
	}

	if fieldP == "" || fieldQ == "" {
		return nil, fmt.Errorf("either --tab or both --p and --q are required")
	}
	p, err := poly.Parse2(fieldP)
	if err != nil {
		return nil, fmt.Errorf("--p: %w", err)
	}
	q, err := poly.Parse2(fieldQ)
	if err != nil {
		return nil, fmt.Errorf("--q: %w", err)
	}

	res := portrait.NewResults()
	res.SetField(portrait.NewVectorField(chart.R2, p, q))
	w, err := parseInts(weights, 2)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if w[0] == 1 && w[1] == 1 {
		portrait.Compactify(res)
	} else {
		portrait.CompactifyWeighted(res, w[0], w[1])
	}
	return res, nil
}

func newSession(cmd *cobra.Command, opts ...engine.Option) (*engine.Session, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	res, err := loadResults()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]engine.Option{engine.WithLogger(newLogger())}, opts...)
	s, err := engine.New(res, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// outputBounds prefers bounds stored in the tables over the configured
// ones unless --bounds was given.
func outputBounds(cmd *cobra.Command, s *engine.Session, cfg *config.Config) []float64 {
	if b := render.BoundsOf(s.Results); b != nil && !cmd.Flags().Changed("bounds") {
		return b
	}
	return cfg.Output.Bounds
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, fmt.Errorf("weights must be positive, got %d", v)
		}
		out[i] = v
	}
	return out, nil
}

// pointArgs parses the chart point given as two positional arguments.
func pointArgs(s *engine.Session, args []string) (chart.Sphere, error) {
	v, err := parseFloats(strings.Join(args, ","), 2)
	if err != nil {
		return chart.Sphere{}, err
	}
	c, err := chart.ParseChart(fromChart)
	if err != nil {
		return chart.Sphere{}, err
	}
	return s.Atlas.ChartToSphere(c, chart.Point{v[0], v[1]}), nil
}
