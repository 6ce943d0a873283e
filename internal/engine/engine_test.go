package engine_test

import (
	"errors"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

// x' = x, y' = -y with one saddle at the origin and its four separatrices.
const saddleTable = `0 1 1
0
1 0
0
0
0
0
0
1  1 0 1
1  0 1 -1
1  1 0 -2
1  0 1 -1
1  1 0 2
1  0 1 1
1  1 0 -2
1  0 1 -1
1  1 0 2
1  0 1 1
1
1 R2 0 0 0
0.01
1 0 0 1
1  1 0 1
1  0 1 -1
4
1  1 0  0
1 -1 0  0
0  1 1  0
0 -1 1  0
`

type recorder struct {
	points, lines int
}

func (r *recorder) DrawPoint(chart.Sphere, portrait.Color)       { r.points++ }
func (r *recorder) DrawLine(_, _ chart.Sphere, _ portrait.Color) { r.lines++ }

func testConfig(view string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.View = view
	cfg.Integration.HMin = 1e-8
	cfg.Integration.HMax = 0.1
	cfg.Integration.Step = 0.01
	return cfg
}

func constantField(c chart.Chart, dx, dy float64) *portrait.VectorField {
	return portrait.NewVectorField(c, poly.Poly2{{Coeff: dx}}, poly.Poly2{{Coeff: dy}})
}

var _ = Describe("Session", func() {
	var (
		s   *engine.Session
		rec *recorder
	)

	Describe("linear saddle", func() {
		BeforeEach(func() {
			var err error
			rec = &recorder{}
			s, err = engine.New(nil, testConfig("R2"), engine.WithDrawer(rec))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.LoadTables(strings.NewReader(saddleTable))).To(Succeed())
		})

		It("integrates the unstable separatrix along x > 0", func() {
			s.Select(0)
			sing, sep, err := s.SelectedSeparatrix()
			Expect(err).NotTo(HaveOccurred())
			Expect(sep.Type).To(Equal(portrait.Unstable))

			s.StartSeparatrix(sing, sep)
			Expect(sep.Points).To(HaveLen(engine.Substeps + 1))
			Expect(rec.points).To(Equal(1))
			Expect(rec.lines).To(Equal(engine.Substeps))

			hmin := s.Config().Integration.HMin
			hmax := s.Config().Integration.HMax
			for i := 0; i < 10; i++ {
				Expect(s.ContinueSeparatrix(sep, 1)).To(Equal(1))
				Expect(s.CurrentStep()).To(BeNumerically(">=", hmin))
				Expect(s.CurrentStep()).To(BeNumerically("<=", hmax))
			}
			Expect(sep.Points).To(HaveLen(engine.Substeps + 11))

			prev := s.Atlas.SphereToView(sep.Points[0].Pos)
			for i, p := range sep.Points[1:] {
				v := s.Atlas.SphereToView(p.Pos)
				Expect(v[0]).To(BeNumerically(">", prev[0]), "point %d", i+1)
				Expect(v[0]-prev[0]).To(BeNumerically("<=", hmax))
				Expect(v[1]).To(BeNumerically("~", 0, 1e-12))
				Expect(p.Color).To(Equal(portrait.ColorUnstable))
				Expect(p.Connected).To(BeTrue())
				prev = v
			}
			Expect(s.StepHistory()).To(HaveLen(10))
		})

		It("integrates stable separatrices backward in time", func() {
			sing := s.Results.Singularities[0]
			sep := sing.Separatrices[2]
			s.StartSeparatrix(sing, sep)
			s.ContinueSeparatrix(sep, 20)

			last := s.Atlas.SphereToView(sep.Points[len(sep.Points)-1].Pos)
			Expect(sep.Cursor.Dir).To(Equal(-1))
			Expect(last[1]).To(BeNumerically(">", 0.01))
			Expect(last[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(sep.Points[len(sep.Points)-1].Color).To(Equal(portrait.ColorStable))
		})

		It("cycles through the separatrices", func() {
			_, err := s.NextSeparatrix()
			Expect(err).To(MatchError(dynamo.ErrNoSelection))

			_, err = s.SelectNearestSingularity(s.Atlas.ViewToSphere(chart.Point{0.3, -0.2}))
			Expect(err).NotTo(HaveOccurred())
			for i := 1; i <= 4; i++ {
				sep, err := s.NextSeparatrix()
				Expect(err).NotTo(HaveOccurred())
				Expect(sep).To(BeIdenticalTo(s.Results.Singularities[0].Separatrices[i%4]))
				Expect(sep.Points).To(HaveLen(engine.Substeps + 1))
			}
		})

		It("restarts with a new epsilon", func() {
			s.Select(0)
			Expect(s.ChangeEpsilon(0.05)).To(Succeed())
			_, sep, _ := s.SelectedSeparatrix()
			end := s.Atlas.SphereToView(sep.Points[len(sep.Points)-1].Pos)
			Expect(end[0]).To(BeNumerically("~", 0.05, 0.0006))
		})

		It("runs orbits in both directions", func() {
			o := s.StartOrbit(s.Atlas.ViewToSphere(chart.Point{0.5, 0.5}))
			Expect(s.ContinueOrbit(o, 1, 5)).To(Equal(5))
			Expect(s.ContinueOrbit(o, -1, 5)).To(Equal(5))

			fwd := s.Atlas.SphereToView(o.Points[4].Pos)
			back := s.Atlas.SphereToView(o.Past[4].Pos)
			Expect(fwd[0]).To(BeNumerically(">", 0.5))
			Expect(fwd[1]).To(BeNumerically("<", 0.5))
			Expect(back[0]).To(BeNumerically("<", 0.5))
			Expect(back[1]).To(BeNumerically(">", 0.5))
			Expect(o.Points[0].Connected).To(BeTrue())

			Expect(s.DeleteLastOrbit()).To(Succeed())
			Expect(s.Results.Orbits).To(BeEmpty())
			Expect(s.DeleteLastOrbit()).To(MatchError(dynamo.ErrNoSelection))
		})

		It("keeps the current portrait when a table is truncated", func() {
			s.Select(0)
			Expect(s.PlotAllSeparatrices(3)).To(Equal(4))
			before := s.Results

			cut := strings.Index(saddleTable, "\n4\n") + 1
			err := s.LoadTables(strings.NewReader(saddleTable[:cut]))
			Expect(errors.Is(err, dynamo.ErrShortRead)).To(BeTrue())
			Expect(s.Results).To(BeIdenticalTo(before))
			Expect(s.Results.Singularities).To(HaveLen(1))
			Expect(s.Results.Singularities[0].Separatrices[0].Points).To(HaveLen(engine.Substeps + 1 + 3))
			Expect(s.Selected()).To(BeIdenticalTo(before.Singularities[0]))
		})

		It("clears curves but keeps the singular points", func() {
			s.Select(0)
			s.PlotAllSeparatrices(3)
			o := s.StartOrbit(s.Atlas.ViewToSphere(chart.Point{0.5, 0.5}))
			s.ContinueOrbit(o, 1, 3)

			s.ClearPoints()
			Expect(s.Results.Singularities).To(HaveLen(1))
			Expect(s.Results.Orbits).To(BeEmpty())
			Expect(s.CurrentOrbit()).To(BeNil())
			Expect(s.StepHistory()).To(BeEmpty())
			for _, sep := range s.Results.Singularities[0].Separatrices {
				Expect(sep.Points).To(BeEmpty())
				Expect(sep.Cursor.Status).To(Equal(portrait.NotStarted))
			}

			Expect(s.Selected()).NotTo(BeNil())
			n, err := s.ContinueSelected(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("separatrix through a negative GCF strip", func() {
		// GCF = (x - 0.2)(x - 0.4) is negative for 0.2 < x < 0.4.
		gcfAt := func(x float64) float64 { return (x - 0.2) * (x - 0.4) }

		BeforeEach(func() {
			res := portrait.NewResults()
			res.SetField(portrait.NewVectorField(chart.R2,
				poly.Poly2{{ExpX: 1, Coeff: 1}},
				poly.Poly2{{ExpY: 1, Coeff: -1}}))
			portrait.Compactify(res)
			res.GCF[chart.R2] = poly.Poly2{{ExpX: 2, Coeff: 1}, {ExpX: 1, Coeff: -0.6}, {Coeff: 0.08}}

			sing := &portrait.Singularity{Kind: portrait.Saddle, Chart: chart.R2, Matrix: [4]float64{1, 0, 0, 1}}
			sing.Separatrices = []*portrait.Separatrix{{Type: portrait.Unstable, Direction: 1}}
			res.AddSingularity(sing)

			var err error
			s, err = engine.New(res, testConfig("R2"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("swaps the color inside the strip and back after it", func() {
			sing := s.Results.Singularities[0]
			sep := sing.Separatrices[0]
			s.StartSeparatrix(sing, sep)
			s.ContinueSeparatrix(sep, 200)

			var colors []portrait.Color
			for i, p := range sep.Points {
				x := s.Atlas.SphereToChart(chart.R2, p.Pos)[0]
				want := portrait.ColorUnstable
				if gcfAt(x) < 0 {
					want = portrait.ColorStable
				}
				Expect(p.Color).To(Equal(want), "point %d at x=%g", i, x)
				if len(colors) == 0 || colors[len(colors)-1] != p.Color {
					colors = append(colors, p.Color)
				}
			}
			Expect(colors).To(Equal([]portrait.Color{
				portrait.ColorUnstable, portrait.ColorStable, portrait.ColorUnstable,
			}))
		})
	})

	Describe("weighted orbit crossing r = 0 on the cylinder", func() {
		BeforeEach(func() {
			res := portrait.NewResults()
			res.Weighted = true
			res.P, res.Q = 1, 2
			res.SingInf = true
			res.DirVecField = -1
			res.SetField(constantField(chart.R2, 1, 0))
			res.SetField(portrait.NewCylinderField(poly.Poly3{{Coeff: -1}}, nil))

			var err error
			s, err = engine.New(res, testConfig("sphere"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("reflects once, breaks the line and reverses time", func() {
			o := s.StartOrbit(s.Atlas.ChartToSphere(chart.Cylinder, chart.Point{0.05, 0.3}))
			Expect(o.Forward.Chart).To(Equal(chart.Cylinder))
			Expect(s.ContinueOrbit(o, 1, 8)).To(Equal(8))

			breaks := 0
			for _, p := range o.Points {
				if !p.Connected {
					breaks++
				}
			}
			Expect(breaks).To(Equal(1))
			Expect(o.Forward.Chart).To(Equal(chart.Cylinder))
			Expect(o.Forward.Dir).To(Equal(-1))
			Expect(o.Forward.Last[0]).To(BeNumerically(">", 0))
			Expect(o.Forward.Last[0]).To(BeNumerically("<", 1))
			Expect(o.Forward.Last[1]).To(BeNumerically("~", math.Pi-0.3, 1e-12))
		})
	})

	Describe("duplicated saddle at infinity", func() {
		BeforeEach(func() {
			res := portrait.NewResults()
			res.SetField(portrait.NewVectorField(chart.R2,
				poly.Poly2{{ExpX: 1, Coeff: 1}},
				poly.Poly2{{ExpY: 1, Coeff: -1}}))
			portrait.Compactify(res)

			sing := &portrait.Singularity{Kind: portrait.Saddle, Chart: chart.U1, X0: 0, Matrix: [4]float64{1, 0, 0, 1}}
			for _, st := range []portrait.SepType{portrait.Stable, portrait.Stable, portrait.Unstable, portrait.Unstable} {
				sing.Separatrices = append(sing.Separatrices, &portrait.Separatrix{Type: st, Direction: 1, Taylor: poly.Poly1{{Exp: 2, Coeff: 0.5}}})
			}
			i := res.AddSingularity(sing)
			_, err := res.Duplicate(i)
			Expect(err).NotTo(HaveOccurred())

			s, err = engine.New(res, testConfig("sphere"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("frees each separatrix exactly once", func() {
			Expect(s.PlotAllSeparatrices(5)).To(Equal(4))
			s.Select(1)
			_, sep, err := s.SelectedSeparatrix()
			Expect(err).NotTo(HaveOccurred())
			Expect(sep).To(BeIdenticalTo(s.Results.Singularities[0].Separatrices[0]))

			st := s.ClearResults()
			Expect(st.Singularities).To(Equal(2))
			Expect(st.Separatrices).To(Equal(4))
			Expect(st.Points).To(Equal(4 * (engine.Substeps + 1 + 5)))
			Expect(s.Selected()).To(BeNil())
			Expect(s.CurrentStep()).To(BeZero())
		})
	})

	Describe("line of singularities at infinity", func() {
		BeforeEach(func() {
			res := portrait.NewResults()
			res.SingInf = true
			res.DirVecField = -1
			res.SetField(constantField(chart.R2, 1, 0))
			res.SetField(constantField(chart.U1, 0, -1))
			res.SetField(constantField(chart.V1, 0, -1))

			var err error
			s, err = engine.New(res, testConfig("sphere"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("flips to the antipodal chart once and breaks the line there", func() {
			o := s.StartOrbit(s.Atlas.ChartToSphere(chart.U1, chart.Point{0.2, 0.05}))
			Expect(o.Forward.Chart).To(Equal(chart.U1))
			Expect(s.ContinueOrbit(o, 1, 4)).To(Equal(4))

			breaks := 0
			for _, p := range o.Points {
				if !p.Connected {
					breaks++
				}
			}
			Expect(breaks).To(Equal(1))
			Expect(o.Forward.Chart).To(Equal(chart.V1))
			Expect(o.Forward.Dir).To(Equal(-1))
			Expect(o.Forward.Last[0]).To(BeNumerically("~", -0.2, 1e-12))
			Expect(o.Forward.Last[1]).To(BeNumerically(">", 0))
		})
	})

	Describe("blow-up chain", func() {
		var (
			sing *portrait.Singularity
			b    *portrait.BlowUpPoint
		)

		BeforeEach(func() {
			res := portrait.NewResults()
			res.SetField(constantField(chart.R2, 1, 0))
			portrait.Compactify(res)

			b = &portrait.BlowUpPoint{
				Trans:  []portrait.Transformation{{C1: 1, C2: 1, D1: 1, D3: 1, D4: 1}},
				Matrix: [4]float64{1, 0, 0, 1},
				Field:  constantField(chart.R2, 4, 0),
				Type:   portrait.Unstable, Direction: 1,
			}
			second := &portrait.BlowUpPoint{
				Trans:  []portrait.Transformation{{C1: 1, C2: 1, D1: 1, D2: 1, D4: 1}},
				Matrix: [4]float64{0, 1, 1, 0},
				Type:   portrait.Stable, Direction: -1,
			}
			sing = &portrait.Singularity{Kind: portrait.Degenerate, Chart: chart.R2, BlowUps: []*portrait.BlowUpPoint{b, second}}
			res.AddSingularity(sing)

			var err error
			s, err = engine.New(res, testConfig("R2"))
			Expect(err).NotTo(HaveOccurred())
			s.Config().Integration.Step = 0.1
		})

		It("hands off to the chart field exactly once without repeating a point", func() {
			s.StartBlowUp(sing, b)
			Expect(b.BlowUpVecField).To(BeTrue())

			Expect(s.ContinueBlowUp(sing, b, 5)).To(Equal(5))
			Expect(b.BlowUpVecField).To(BeFalse())
			Expect(s.HandOffs()).To(Equal(1))

			s.ContinueBlowUp(sing, b, 10)
			Expect(s.HandOffs()).To(Equal(1))
			Expect(b.Points).To(HaveLen(engine.Substeps + 1 + 15))

			for i := 1; i < len(b.Points); i++ {
				Expect(b.Points[i].Pos).NotTo(Equal(b.Points[i-1].Pos), "point %d repeats", i)
				prev := s.Atlas.SphereToView(b.Points[i-1].Pos)
				cur := s.Atlas.SphereToView(b.Points[i].Pos)
				Expect(cur[0]).To(BeNumerically(">", prev[0]))
			}
		})

		It("wraps around the chain", func() {
			s.Select(0)
			next, err := s.NextBlowUp()
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(BeIdenticalTo(sing.BlowUps[1]))

			next, err = s.NextBlowUp()
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(BeIdenticalTo(b))
		})

		It("continues the selected blow-up node of a degenerate point", func() {
			s.Select(0)
			n, err := s.ContinueSelected(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(5))
			Expect(b.Points).To(HaveLen(engine.Substeps + 1 + 5))
		})

		It("stops a node without a local field", func() {
			second := sing.BlowUps[1]
			s.StartBlowUp(sing, second)
			Expect(s.ContinueBlowUp(sing, second, 3)).To(Equal(0))
			Expect(second.Cursor.Status).To(Equal(portrait.Exhausted))
		})
	})
})
