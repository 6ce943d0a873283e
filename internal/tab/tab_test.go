package tab

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/portrait"
)

const saddleTable = `# linear saddle x' = x, y' = -y
0 1 1
0
1 0
# gcf
0
0
0
0
0
# R2
1  1 0 1
1  0 1 -1
# U1
1  1 0 -2
1  0 1 -1
# U2
1  1 0 2
1  0 1 1
# V1
1  1 0 -2
1  0 1 -1
# V2
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
0 -1 1  1  2 0.5
`

const degenerateTable = `1 2 1
1 -2 -2 2 2
-1 1
1  1 0 1
0
0
0
0
1  2 0 1
1  0 2 -1
0
0
0
0
0
0
0
0
1  1 0 0 1
1  0 0 1 1
2
6 U1 0.5 0 1
0.02 2
2
0 0 1 1 1 0 1 1
0.5 0 2 1 1 0 0 1
0.25 0
1 0 0 1
1  1 0 1
1  0 1 -1
1 1  1  2 0.1
1
0 0 1 1 1 0 0 1
0 0
0 1 1 0
0
0
0 -1  0
2 R2 1 1 0
-1
`

func TestReadSaddle(t *testing.T) {
	res, err := Read(strings.NewReader(saddleTable))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if res.Weighted || res.P != 1 || res.Q != 1 || res.DirVecField != 1 || res.SingInf {
		t.Errorf("bad header: %+v", res)
	}
	if res.Bounds != nil {
		t.Error("expected no bounds")
	}

	dx, dy := res.Field(chart.U2).Eval(0.5, 0.2)
	if dx != 1 || dy != 0.2 {
		t.Errorf("U2 field = (%g, %g), want (1, 0.2)", dx, dy)
	}

	if len(res.Singularities) != 1 {
		t.Fatalf("expected 1 singular point, got %d", len(res.Singularities))
	}
	s := res.Singularities[0]
	if s.Kind != portrait.Saddle || !s.NotADummy || s.Epsilon != 0.01 {
		t.Errorf("bad saddle: %+v", s)
	}
	if len(s.Separatrices) != 4 {
		t.Fatalf("expected 4 separatrices, got %d", len(s.Separatrices))
	}
	last := s.Separatrices[3]
	if last.Type != portrait.Stable || last.Direction != -1 || !last.FreeY {
		t.Errorf("bad separatrix: %+v", last)
	}
	if got := last.Taylor.Eval(2); got != 2 {
		t.Errorf("taylor(2) = %g, want 2", got)
	}
}

func TestReadWeightedDegenerate(t *testing.T) {
	res, err := Read(strings.NewReader(degenerateTable))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !res.Weighted || res.P != 2 || res.Q != 1 || !res.SingInf || res.DirVecField != -1 {
		t.Errorf("bad header: %+v", res)
	}
	if res.Bounds == nil || res.Bounds[2] != 2 {
		t.Errorf("bad bounds: %v", res.Bounds)
	}
	if res.Field(chart.Cylinder) == nil || len(res.Field(chart.Cylinder).PC) != 1 {
		t.Error("cylinder field not read")
	}

	// The degenerate point is duplicated, the node is not.
	if len(res.Singularities) != 3 {
		t.Fatalf("expected 3 singular points, got %d", len(res.Singularities))
	}
	deg, dup, node := res.Singularities[0], res.Singularities[1], res.Singularities[2]
	if deg.Kind != portrait.Degenerate || len(deg.BlowUps) != 2 {
		t.Fatalf("bad degenerate point: %+v", deg)
	}
	if dup.NotADummy || dup.Chart != chart.V1 || len(res.BlowUpsOf(dup)) != 2 {
		t.Errorf("bad duplicate: %+v", dup)
	}
	if node.Kind != portrait.Node || node.Stable != portrait.StabilityStable {
		t.Errorf("bad node: %+v", node)
	}

	b := deg.BlowUps[0]
	if len(b.Trans) != 2 || b.Trans[1].X0 != 0.5 || !b.BlowUpVecField {
		t.Errorf("bad blow-up: %+v", b)
	}
	if b.Type != portrait.Unstable || b.Direction != 1 {
		t.Errorf("bad blow-up separatrix: %v %d", b.Type, b.Direction)
	}
}

func TestReadTruncated(t *testing.T) {
	cut := strings.Index(saddleTable, "0 -1 1  1  2 0.5")
	tests := []struct {
		name  string
		input string
		sing  int
	}{
		{"empty", "", -1},
		{"header only", "0 1 1\n0\n", -1},
		{"inside gcf", saddleTable[:strings.Index(saddleTable, "# R2")], -1},
		{"inside separatrices", saddleTable[:cut], 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Read(strings.NewReader(tt.input))
			if res != nil {
				t.Error("partial results must not be returned")
			}
			if !IsShortRead(err) {
				t.Fatalf("expected short read, got %v", err)
			}
			var pe *dynamo.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Singularity != tt.sing {
				t.Errorf("singularity index = %d, want %d", pe.Singularity, tt.sing)
			}
		})
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"bad weight", "0 x 1", "p"},
		{"bad flag", "2 1 1", "weighted"},
		{"zero weight", "0 0 1\n0\n1 0", "weights"},
		{"bad dir", "0 1 1\n0\n3 0", "dir_vec_field"},
		{"bad tag", strings.Replace(saddleTable, "\n1 R2 0 0 0\n", "\n9 R2 0 0 0\n", 1), "tag"},
		{"bad chart", strings.Replace(saddleTable, "\n1 R2 0 0 0\n", "\n1 W3 0 0 0\n", 1), "chart"},
		{"dup in finite plane", strings.Replace(saddleTable, "\n1 R2 0 0 0\n", "\n1 R2 0 0 1\n", 1), "dup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, dynamo.ErrBadRecord) {
				t.Fatalf("expected ErrBadRecord, got %v", err)
			}
			var pe *dynamo.ParseError
			if errors.As(err, &pe) && pe.Field != tt.field {
				t.Errorf("field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}

func TestWriteReadBack(t *testing.T) {
	res, err := Read(strings.NewReader(degenerateTable))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	again, err := Read(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v\n%s", err, buf.String())
	}

	if len(again.Singularities) != len(res.Singularities) {
		t.Fatalf("singular points: got %d, want %d", len(again.Singularities), len(res.Singularities))
	}
	if again.Singularities[1].NotADummy {
		t.Error("duplicate lost its role")
	}
	want := res.Singularities[0].BlowUps[0]
	got := again.Singularities[0].BlowUps[0]
	if got.Trans[1] != want.Trans[1] || got.Taylor.String() != want.Taylor.String() {
		t.Errorf("blow-up changed: %+v vs %+v", got, want)
	}
	if again.Field(chart.Cylinder).String() != res.Field(chart.Cylinder).String() {
		t.Error("cylinder field changed")
	}
}
