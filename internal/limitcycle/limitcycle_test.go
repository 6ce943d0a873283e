package limitcycle_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/limitcycle"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

// x' = -y + x(1-x²-y²), y' = x + y(1-x²-y²): an attracting unit circle.
func circleResults() *portrait.Results {
	res := portrait.NewResults()
	res.SetField(portrait.NewVectorField(chart.R2,
		poly.Poly2{{ExpY: 1, Coeff: -1}, {ExpX: 1, Coeff: 1}, {ExpX: 3, Coeff: -1}, {ExpX: 1, ExpY: 2, Coeff: -1}},
		poly.Poly2{{ExpX: 1, Coeff: 1}, {ExpY: 1, Coeff: 1}, {ExpX: 2, ExpY: 1, Coeff: -1}, {ExpY: 3, Coeff: -1}},
	))
	portrait.Compactify(res)
	return res
}

func weightedCircleResults(p, q int) *portrait.Results {
	res := circleResults()
	portrait.CompactifyWeighted(res, p, q)
	return res
}

func searchConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.View = "R2"
	cfg.Integration.Tolerance = 1e-12
	cfg.Integration.HMin = 1e-10
	cfg.Integration.HMax = 0.1
	cfg.Integration.Step = 0.01
	cfg.LimitCycle.Grid = 0.15
	cfg.LimitCycle.Points = 2000
	cfg.LimitCycle.CheckEvery = 2
	cfg.LimitCycle.Tolerance = 1e-8
	return cfg
}

var _ = Describe("Search", func() {
	var (
		res  *portrait.Results
		s    *engine.Session
		a, b chart.Sphere
	)

	BeforeEach(func() {
		var err error
		res = circleResults()
		s, err = engine.New(res, searchConfig())
		Expect(err).NotTo(HaveOccurred())
		a = s.Atlas.ChartToSphere(chart.R2, chart.Point{0.5, 0})
		b = s.Atlas.ChartToSphere(chart.R2, chart.Point{2, 0})
	})

	It("finds the unit circle on the positive x-axis", func() {
		search, err := limitcycle.New(s, a, b)
		Expect(err).NotTo(HaveOccurred())

		cycles, err := search.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(cycles).To(HaveLen(1))
		Expect(res.LimitCycles).To(HaveLen(1))
		Expect(res.LimitCycles[0]).To(BeIdenticalTo(cycles[0]))

		lc := cycles[0]
		Expect(lc.Color).To(Equal(portrait.ColorLimitCycle))
		start := s.Atlas.SphereToChart(chart.R2, lc.Start)
		Expect(start[0]).To(BeNumerically("~", 1, 1e-8))
		Expect(start[1]).To(BeNumerically("~", 0, 1e-8))

		Expect(len(lc.Points)).To(BeNumerically(">", 10))
		Expect(lc.Points[0].Connected).To(BeFalse())
		for _, p := range lc.Points {
			pt := s.Atlas.SphereToChart(chart.R2, p.Pos)
			Expect(math.Hypot(pt[0], pt[1])).To(BeNumerically("~", 1, 1e-6))
			Expect(p.Color).To(Equal(portrait.ColorLimitCycle))
		}
		last := s.Atlas.SphereToChart(chart.R2, lc.Points[len(lc.Points)-1].Pos)
		Expect(last[0]).To(BeNumerically("~", 1, 1e-6))
	})

	It("leaves the results untouched when canceled mid-scan", func() {
		o := s.StartOrbit(s.Atlas.ChartToSphere(chart.R2, chart.Point{0.2, 0.1}))
		Expect(s.ContinueOrbit(o, 1, 5)).To(Equal(5))
		orbits := len(res.Orbits)
		points := len(o.Points)

		calls := 0
		search, err := limitcycle.New(s, a, b, limitcycle.WithStop(func() bool {
			calls++
			return calls > 1
		}))
		Expect(err).NotTo(HaveOccurred())

		cycles, err := search.Run()
		Expect(err).To(MatchError(dynamo.ErrCanceled))
		Expect(cycles).To(BeNil())
		Expect(calls).To(Equal(2))
		Expect(res.LimitCycles).To(BeEmpty())
		Expect(res.Orbits).To(HaveLen(orbits))
		Expect(o.Points).To(HaveLen(points))
	})

	It("stops at once on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		search, err := limitcycle.New(s, a, b, limitcycle.WithStop(limitcycle.StopOnContext(ctx)))
		Expect(err).NotTo(HaveOccurred())

		_, err = search.Run()
		Expect(err).To(MatchError(dynamo.ErrCanceled))
		Expect(res.LimitCycles).To(BeEmpty())
	})

	It("finds nothing on a section inside the cycle", func() {
		inner := s.Atlas.ChartToSphere(chart.R2, chart.Point{0.6, 0})
		search, err := limitcycle.New(s, a, inner)
		Expect(err).NotTo(HaveOccurred())

		cycles, err := search.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(cycles).To(BeEmpty())
		Expect(res.LimitCycles).To(BeEmpty())
	})
})

var _ = Describe("Search with weights", func() {
	It("finds the unit circle across the edge of the finite disk", func() {
		res := weightedCircleResults(1, 1)
		s, err := engine.New(res, searchConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Atlas.Weighted()).To(BeTrue())

		a := sphereAt(s.Atlas, 0.5, 0)
		b := sphereAt(s.Atlas, 2, 0)
		Expect(chart.IsFinite(b)).To(BeFalse())

		search, err := limitcycle.New(s, a, b)
		Expect(err).NotTo(HaveOccurred())
		cycles, err := search.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(cycles).To(HaveLen(1))
		Expect(res.LimitCycles).To(HaveLen(1))

		start := s.Atlas.SphereToChart(chart.R2, cycles[0].Start)
		Expect(start[0]).To(BeNumerically("~", 1, 1e-8))
		Expect(start[1]).To(BeNumerically("~", 0, 1e-8))
		for _, p := range cycles[0].Points {
			pt := s.Atlas.SphereToChart(chart.R2, p.Pos)
			Expect(math.Hypot(pt[0], pt[1])).To(BeNumerically("~", 1, 1e-6))
		}
	})
})

var _ = Describe("Section", func() {
	It("measures classical positions in radians", func() {
		atlas := chart.New(false, 1, 1, chart.ViewSphere)
		a := atlas.ChartToSphere(chart.R2, chart.Point{0.5, 0})
		b := atlas.ChartToSphere(chart.R2, chart.Point{2, 0})
		sec, err := limitcycle.NewSection(atlas, a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(sec.Length()).To(BeNumerically("~", math.Atan(2)-math.Atan(0.5), 1e-12))

		for _, s := range []float64{0, 0.1, 0.3, sec.Length()} {
			p := sec.At(s)
			Expect(sec.Eval(p)).To(BeNumerically("~", 0, 1e-12))
			Expect(sec.Position(p)).To(BeNumerically("~", s, 1e-12))
		}

		pt := atlas.SphereToChart(chart.R2, sec.At(math.Pi/4-math.Atan(0.5)))
		Expect(pt[0]).To(BeNumerically("~", 1, 1e-12))

		above := atlas.ChartToSphere(chart.R2, chart.Point{1, 0.5})
		below := atlas.ChartToSphere(chart.R2, chart.Point{1, -0.5})
		Expect(sec.Eval(above) * sec.Eval(below)).To(BeNumerically("<", 0))
	})

	It("measures weighted positions in plane distance", func() {
		atlas := chart.New(true, 1, 2, chart.ViewSphere)
		a := atlas.ChartToSphere(chart.R2, chart.Point{0, 0})
		b := atlas.ChartToSphere(chart.R2, chart.Point{0.3, 0.4})
		sec, err := limitcycle.NewSection(atlas, a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(sec.Length()).To(BeNumerically("~", 0.5, 1e-12))

		mid := sec.At(0.25)
		Expect(sec.Eval(mid)).To(BeNumerically("~", 0, 1e-12))
		Expect(sec.Position(mid)).To(BeNumerically("~", 0.25, 1e-12))
		Expect(sec.Eval(sphereAt(atlas, 0, 1))).To(BeNumerically("~", 0.6, 1e-12))
	})

	It("rejects degenerate sections", func() {
		atlas := chart.New(false, 1, 1, chart.ViewSphere)
		a := atlas.ChartToSphere(chart.R2, chart.Point{1, 1})
		_, err := limitcycle.NewSection(atlas, a, a)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

		weighted := chart.New(true, 1, 1, chart.ViewSphere)
		_, err = limitcycle.NewSection(weighted, chart.Sphere{0, 0, 0}, chart.Sphere{1, 0, 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("accepts weighted endpoints on the cylinder", func() {
		atlas := chart.New(true, 1, 2, chart.ViewSphere)
		a := sphereAt(atlas, 0.5, 0)
		b := sphereAt(atlas, 2, 0)
		Expect(chart.IsFinite(b)).To(BeFalse())

		sec, err := limitcycle.NewSection(atlas, a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(sec.Length()).To(BeNumerically("~", 1.5, 1e-9))

		far := sec.At(1.2)
		Expect(chart.IsFinite(far)).To(BeFalse())
		Expect(sec.Eval(far)).To(BeNumerically("~", 0, 1e-9))
		Expect(sec.Position(far)).To(BeNumerically("~", 1.2, 1e-9))

		above := sphereAt(atlas, 1.5, 0.5)
		below := sphereAt(atlas, 1.5, -0.5)
		Expect(chart.IsFinite(above)).To(BeFalse())
		Expect(sec.Eval(above) * sec.Eval(below)).To(BeNumerically("<", 0))
	})
})

func sphereAt(atlas chart.Atlas, x, y float64) chart.Sphere {
	return atlas.ChartToSphere(chart.R2, chart.Point{x, y})
}
