package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/ungerik/go3d/float64/vec3"
)

func TestPairSpinePoints(t *testing.T) {
	t.Run("straight spans", func(t *testing.T) {
		spans := PairSpinePoints([]SpinePoint{
			{Pos: vec3.T{0, 0, 0}},
			{Pos: vec3.T{100, 0, 0}},
			{Pos: vec3.T{100, 100, 0}},
		}, vec3.UnitZ)
		if len(spans) != 2 {
			t.Fatalf("got %d spans, want 2", len(spans))
		}
		for i, s := range spans {
			if s.Curve != SpineLine {
				t.Errorf("span %d curve = %d, want SpineLine", i, s.Curve)
			}
		}
		if !vecClose(spans[0].End, spans[1].Start, testEps) {
			t.Error("consecutive spans do not chain")
		}
	})

	t.Run("curve record shapes its span", func(t *testing.T) {
		spans := PairSpinePoints([]SpinePoint{
			{Pos: vec3.T{0, 0, 0}},
			{Pos: vec3.T{1, 1, 0}, IsCurve: true, Curve: SpineThru},
			{Pos: vec3.T{2, 0, 0}},
			{Pos: vec3.T{4, 0, 0}},
		}, vec3.UnitZ)
		if len(spans) != 2 {
			t.Fatalf("got %d spans, want 2", len(spans))
		}
		arc := spans[0]
		if arc.Curve != SpineThru {
			t.Errorf("span 0 curve = %d, want SpineThru", arc.Curve)
		}
		if !vecClose(arc.Start, vec3.T{0, 0, 0}, testEps) ||
			!vecClose(arc.End, vec3.T{2, 0, 0}, testEps) ||
			!vecClose(arc.Mid, vec3.T{1, 1, 0}, testEps) {
			t.Errorf("span 0 endpoints wrong: %+v", arc)
		}
		if spans[1].Curve != SpineLine {
			t.Errorf("span 1 curve = %d, want SpineLine", spans[1].Curve)
		}
	})

	t.Run("trailing curve record dropped", func(t *testing.T) {
		spans := PairSpinePoints([]SpinePoint{
			{Pos: vec3.T{0, 0, 0}},
			{Pos: vec3.T{1, 1, 0}, IsCurve: true, Curve: SpineThru},
		}, vec3.UnitZ)
		if len(spans) != 0 {
			t.Errorf("got %d spans, want 0 for a dangling curve record", len(spans))
		}
	})

	t.Run("zero preferred direction defaults to Z", func(t *testing.T) {
		spans := PairSpinePoints([]SpinePoint{
			{Pos: vec3.T{0, 0, 0}},
			{Pos: vec3.T{100, 0, 0}},
		}, vec3.Zero)
		if len(spans) != 1 {
			t.Fatalf("got %d spans, want 1", len(spans))
		}
		if !vecClose(spans[0].PreferredDir, vec3.UnitZ, testEps) {
			t.Errorf("preferred dir = %v, want +Z", spans[0].PreferredDir)
		}
	})
}

func TestSpineSpanThruArc(t *testing.T) {
	span := SpineSpan{
		Start:        vec3.T{0, 0, 0},
		End:          vec3.T{2, 0, 0},
		Mid:          vec3.T{1, 1, 0},
		Curve:        SpineThru,
		PreferredDir: vec3.UnitZ,
	}
	seg, err := span.Segment()
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}
	arc, ok := seg.(Arc)
	if !ok {
		t.Fatalf("segment is %T, want Arc", seg)
	}

	if !vecClose(arc.Center, vec3.T{1, 0, 0}, 1e-9) {
		t.Errorf("center = %v, want (1,0,0)", arc.Center)
	}
	if !floatClose(arc.Radius, 1, 1e-9) {
		t.Errorf("radius = %g, want 1", arc.Radius)
	}
	if !floatClose(arc.Sweep, math.Pi, 1e-9) {
		t.Errorf("sweep = %g, want pi", arc.Sweep)
	}
	// The arc must actually pass through the through point and land on
	// the end point.
	if got := arc.PointAt(0.5); !vecClose(got, span.Mid, 1e-9) {
		t.Errorf("PointAt(0.5) = %v, want the through point %v", got, span.Mid)
	}
	if got := arc.PointAt(1); !vecClose(got, span.End, 1e-9) {
		t.Errorf("PointAt(1) = %v, want %v", got, span.End)
	}
}

func TestSpineSpanThruArcCollinear(t *testing.T) {
	span := SpineSpan{
		Start: vec3.T{0, 0, 0},
		End:   vec3.T{2, 0, 0},
		Mid:   vec3.T{1, 0, 0},
		Curve: SpineThru,
	}
	if _, err := span.Segment(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput for collinear points", err)
	}
}

func TestSpineSpanCentArc(t *testing.T) {
	span := SpineSpan{
		Start:        vec3.T{1, 0, 0},
		End:          vec3.T{0, 1, 0},
		Mid:          vec3.T{0, 0, 0},
		Curve:        SpineCent,
		PreferredDir: vec3.UnitZ,
	}
	seg, err := span.Segment()
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}
	arc, ok := seg.(Arc)
	if !ok {
		t.Fatalf("segment is %T, want Arc", seg)
	}

	if !vecClose(arc.Center, span.Mid, testEps) {
		t.Errorf("center = %v, want origin", arc.Center)
	}
	if !floatClose(arc.Radius, 1, 1e-9) {
		t.Errorf("radius = %g, want 1", arc.Radius)
	}
	if !floatClose(arc.Sweep, math.Pi/2, 1e-9) {
		t.Errorf("sweep = %g, want pi/2", arc.Sweep)
	}
	if arc.Clockwise {
		t.Error("counter-clockwise arc flagged clockwise")
	}
	if got := arc.PointAt(1); !vecClose(got, span.End, 1e-9) {
		t.Errorf("PointAt(1) = %v, want %v", got, span.End)
	}
}

func TestSpineSpanCentArcNotEquidistant(t *testing.T) {
	span := SpineSpan{
		Start: vec3.T{1, 0, 0},
		End:   vec3.T{0, 2, 0},
		Mid:   vec3.T{0, 0, 0},
		Curve: SpineCent,
	}
	if _, err := span.Segment(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput for unequal radii", err)
	}
}

func TestBuildSpinePath(t *testing.T) {
	t.Run("mixed spans", func(t *testing.T) {
		spans := PairSpinePoints([]SpinePoint{
			{Pos: vec3.T{0, 0, 0}},
			{Pos: vec3.T{0, 0, 500}},
			{Pos: vec3.T{146.447, 0, 853.553}, IsCurve: true, Curve: SpineThru},
			{Pos: vec3.T{500, 0, 1000}},
		}, vec3.UnitY)
		path, err := BuildSpinePath(spans)
		if err != nil {
			t.Fatalf("BuildSpinePath() error: %v", err)
		}
		if len(path.Segments) != 2 {
			t.Fatalf("got %d segments, want 2", len(path.Segments))
		}
		if _, ok := path.Segments[0].(Line); !ok {
			t.Errorf("segment 0 is %T, want Line", path.Segments[0])
		}
		arc, ok := path.Segments[1].(Arc)
		if !ok {
			t.Fatalf("segment 1 is %T, want Arc", path.Segments[1])
		}
		if !vecClose(arc.PreferredAxis, vec3.UnitY, testEps) {
			t.Errorf("arc preferred axis = %v, want +Y", arc.PreferredAxis)
		}
	})

	t.Run("invalid spans skipped", func(t *testing.T) {
		spans := []SpineSpan{
			{Start: vec3.T{0, 0, 0}, End: vec3.T{2, 0, 0}, Mid: vec3.T{1, 0, 0}, Curve: SpineThru},
			{Start: vec3.T{0, 0, 0}, End: vec3.T{100, 0, 0}, Curve: SpineLine},
		}
		path, err := BuildSpinePath(spans)
		if err != nil {
			t.Fatalf("BuildSpinePath() error: %v", err)
		}
		if len(path.Segments) != 1 {
			t.Errorf("got %d segments, want the collinear arc skipped", len(path.Segments))
		}
	})

	t.Run("nothing usable", func(t *testing.T) {
		spans := []SpineSpan{
			{Start: vec3.T{0, 0, 0}, End: vec3.T{2, 0, 0}, Mid: vec3.T{1, 0, 0}, Curve: SpineThru},
		}
		if _, err := BuildSpinePath(spans); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}
