package sweep

import (
	"fmt"
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// SpineCurve identifies how a spine span is interpolated between its
// endpoints.
type SpineCurve int

const (
	// SpineLine is a straight span between two spine points.
	SpineLine SpineCurve = iota
	// SpineThru is an arc passing through an intermediate point.
	SpineThru
	// SpineCent is an arc around an explicit center point.
	SpineCent
)

// SpineSpan is one span of a section spine. Mid is the through point
// for SpineThru and the center for SpineCent; it is ignored for
// straight spans.
type SpineSpan struct {
	Start vec3.T
	End   vec3.T
	Mid   vec3.T
	Curve SpineCurve

	// PreferredDir is the spine's secondary orientation hint, carried
	// onto arc segments as their preferred axis.
	PreferredDir vec3.T
}

// SpinePoint is one raw spine record: either a position point or a
// curve control record that shapes the span between its neighbors.
type SpinePoint struct {
	Pos     vec3.T
	IsCurve bool
	Curve   SpineCurve // for curve records; SpineThru or SpineCent
}

// PairSpinePoints groups raw spine records into spans: two consecutive
// position points form a straight span, and a position point followed
// by a curve record pairs with the next position point into an arc
// span. Malformed tails (a trailing curve record with no closing
// point) are dropped.
func PairSpinePoints(points []SpinePoint, preferredDir vec3.T) []SpineSpan {
	if preferredDir.LengthSqr() < zeroTol {
		preferredDir = vec3.UnitZ
	}
	var spans []SpineSpan
	for i := 0; i+1 < len(points); {
		p0 := points[i]
		p1 := points[i+1]
		switch {
		case !p0.IsCurve && !p1.IsCurve:
			spans = append(spans, SpineSpan{
				Start:        p0.Pos,
				End:          p1.Pos,
				Curve:        SpineLine,
				PreferredDir: preferredDir,
			})
			i++
		case !p0.IsCurve && p1.IsCurve && i+2 < len(points):
			spans = append(spans, SpineSpan{
				Start:        p0.Pos,
				End:          points[i+2].Pos,
				Mid:          p1.Pos,
				Curve:        p1.Curve,
				PreferredDir: preferredDir,
			})
			i += 2
		default:
			i++
		}
	}
	return spans
}

// Segment converts a spine span into a path segment.
func (s SpineSpan) Segment() (Segment, error) {
	switch s.Curve {
	case SpineLine:
		return Line{Start: s.Start, End: s.End}, nil
	case SpineThru:
		return s.thruArc()
	case SpineCent:
		return s.centArc()
	default:
		return nil, fmt.Errorf("sweep: unknown spine curve %d: %w", s.Curve, ErrInvalidInput)
	}
}

// thruArc builds the arc through (Start, Mid, End): center at the
// circumcenter of the three points, sweep angle (π − ∠ at the through
// point) doubled by the inscribed angle theorem.
func (s SpineSpan) thruArc() (Segment, error) {
	center, ok := circumCenter(s.Start, s.End, s.Mid)
	if !ok {
		return nil, fmt.Errorf("sweep: collinear through-arc points: %w", ErrInvalidInput)
	}
	v0 := vec3.Sub(&s.Start, &s.Mid)
	v1 := vec3.Sub(&s.End, &s.Mid)
	angle := (math.Pi - angleBetween(v0, v1)) * 2

	axis := vec3.Cross(&v1, &v0)
	if axis.LengthSqr() < zeroTol {
		return nil, fmt.Errorf("sweep: degenerate through-arc axis: %w", ErrInvalidInput)
	}
	axis.Normalize()

	return Arc{
		Center:        center,
		Radius:        vec3.Distance(&center, &s.Start),
		Start:         s.Start,
		Sweep:         angle,
		Axis:          axis,
		Clockwise:     axis[2] < 0,
		PreferredAxis: s.PreferredDir,
	}, nil
}

// centArc builds the arc around the explicit center Mid, sweeping from
// Start to End the short way.
func (s SpineSpan) centArc() (Segment, error) {
	v0 := vec3.Sub(&s.Start, &s.Mid)
	v1 := vec3.Sub(&s.End, &s.Mid)
	r0 := v0.Length()
	r1 := v1.Length()
	if r0 < zeroTol || math.Abs(r0-r1) > closedPathTol+1e-3*r0 {
		return nil, fmt.Errorf("sweep: center-arc endpoints not equidistant from center: %w", ErrInvalidInput)
	}

	axis := vec3.Cross(&v0, &v1)
	if axis.LengthSqr() < zeroTol {
		return nil, fmt.Errorf("sweep: degenerate center-arc axis: %w", ErrInvalidInput)
	}
	axis.Normalize()

	return Arc{
		Center:        s.Mid,
		Radius:        r0,
		Start:         s.Start,
		Sweep:         angleBetween(v0, v1),
		Axis:          axis,
		Clockwise:     axis[2] < 0,
		PreferredAxis: s.PreferredDir,
	}, nil
}

// BuildSpinePath converts spine spans into a path, skipping spans that
// cannot form a valid segment with a warning.
func BuildSpinePath(spans []SpineSpan) (Path, error) {
	segs := make([]Segment, 0, len(spans))
	for i, span := range spans {
		seg, err := span.Segment()
		if err != nil {
			Logger().Warn("skipping invalid spine span", "span", i, "err", err)
			continue
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return Path{}, fmt.Errorf("sweep: no usable spine spans: %w", ErrInvalidInput)
	}
	return NewPath(segs...), nil
}

// circumCenter returns the center of the circle through three points,
// or false when they are collinear.
func circumCenter(p0, p1, p2 vec3.T) (vec3.T, bool) {
	v0 := vec3.Sub(&p1, &p0)
	v1 := vec3.Sub(&p2, &p0)
	a2 := vec3.Dot(&v0, &v0)
	ab := vec3.Dot(&v0, &v1)
	b2 := vec3.Dot(&v1, &v1)
	det := a2*b2 - ab*ab
	if math.Abs(det) < zeroTol {
		return vec3.Zero, false
	}
	u := (b2*a2 - ab*b2) / (2 * det)
	v := (a2*b2 - ab*a2) / (2 * det)
	return vec3.T{
		p0[0] + u*v0[0] + v*v1[0],
		p0[1] + u*v0[1] + v*v1[1],
		p0[2] + u*v0[2] + v*v1[2],
	}, true
}

// angleBetween returns the unsigned angle between two vectors in
// [0, π].
func angleBetween(a, b vec3.T) float64 {
	la := a.Length()
	lb := b.Length()
	if la < zeroTol || lb < zeroTol {
		return 0
	}
	return math.Acos(clampFloat(vec3.Dot(&a, &b)/(la*lb), -1, 1))
}
