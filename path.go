package sweep

import (
	"math"

	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// Segment is a single piece of a sweep path: a straight Line or a
// circular Arc. The parameter t runs over [0, 1] from the segment start
// to its end; callers pre-clamp t.
type Segment interface {
	// PointAt returns the position at parameter t.
	PointAt(t float64) vec3.T

	// TangentAt returns the unit tangent at parameter t, pointing in
	// the direction of travel.
	TangentAt(t float64) vec3.T

	// Length returns the arc length of the segment.
	Length() float64

	// StartPoint returns the position at t=0.
	StartPoint() vec3.T

	// EndPoint returns the position at t=1.
	EndPoint() vec3.T

	// Validate reports ErrInvalidInput for malformed segments.
	Validate() error

	isSegment()
}

// Line is a straight path segment from Start to End.
type Line struct {
	Start vec3.T
	End   vec3.T
}

func (Line) isSegment() {}

// Dir returns the unit direction of the line, or the zero vector for a
// degenerate line.
func (l Line) Dir() vec3.T {
	d := vec3.Sub(&l.End, &l.Start)
	if d.LengthSqr() < zeroTol {
		return vec3.Zero
	}
	d.Normalize()
	return d
}

// PointAt returns the linear interpolation between Start and End.
func (l Line) PointAt(t float64) vec3.T {
	return vec3.Interpolate(&l.Start, &l.End, t)
}

// TangentAt returns the constant line direction; t is ignored.
func (l Line) TangentAt(t float64) vec3.T {
	_ = t
	return l.Dir()
}

// Length returns the distance between Start and End.
func (l Line) Length() float64 {
	return vec3.Distance(&l.Start, &l.End)
}

// StartPoint returns the line start.
func (l Line) StartPoint() vec3.T { return l.Start }

// EndPoint returns the line end.
func (l Line) EndPoint() vec3.T { return l.End }

// Validate rejects zero-length lines.
func (l Line) Validate() error {
	if vec3.SquareDistance(&l.Start, &l.End) < zeroTol {
		return ErrInvalidInput
	}
	return nil
}

// Arc is a circular path segment. Start is a point on the circle; the
// arc sweeps from it by Sweep radians about Axis through Center.
// Clockwise flips the direction of travel. PreferredAxis optionally
// pins the cross-section's up direction for the whole arc; the zero
// vector means no preference.
type Arc struct {
	Center        vec3.T
	Radius        float64
	Start         vec3.T
	Sweep         float64
	Axis          vec3.T
	Clockwise     bool
	PreferredAxis vec3.T
}

func (Arc) isSegment() {}

// PointAt rotates the start point about the arc axis by Sweep*t.
func (a Arc) PointAt(t float64) vec3.T {
	axis := a.Axis.Normalized()
	rot := quaternion.FromAxisAngle(&axis, a.Sweep*t)
	radial := vec3.Sub(&a.Start, &a.Center)
	p := rot.RotatedVec3(&radial)
	return vec3.Add(&a.Center, &p)
}

// TangentAt returns axis x radial at parameter t, sign-flipped for
// clockwise arcs.
func (a Arc) TangentAt(t float64) vec3.T {
	p := a.PointAt(t)
	radial := vec3.Sub(&p, &a.Center)
	if radial.LengthSqr() < zeroTol {
		return vec3.Zero
	}
	radial.Normalize()
	axis := a.Axis.Normalized()
	tan := vec3.Cross(&axis, &radial)
	tan.Normalize()
	if a.Clockwise {
		tan = tan.Inverted()
	}
	return tan
}

// Length returns radius * |sweep angle|.
func (a Arc) Length() float64 {
	return a.Radius * math.Abs(a.Sweep)
}

// StartPoint returns the arc start point.
func (a Arc) StartPoint() vec3.T { return a.Start }

// EndPoint returns the arc end point.
func (a Arc) EndPoint() vec3.T { return a.PointAt(1) }

// Validate rejects non-positive radii and degenerate axes.
func (a Arc) Validate() error {
	if a.Radius <= 0 {
		return ErrInvalidInput
	}
	if a.Axis.LengthSqr() < zeroTol {
		return ErrInvalidInput
	}
	return nil
}

// Path is a non-empty ordered sequence of segments. Continuity between
// consecutive segments is checked and reported, not enforced.
type Path struct {
	Segments []Segment
}

// NewPath creates a path from the given segments.
func NewPath(segments ...Segment) Path {
	return Path{Segments: segments}
}

// Length returns the total arc length of the path.
func (p Path) Length() float64 {
	var sum float64
	for _, s := range p.Segments {
		sum += s.Length()
	}
	return sum
}

// ContinuityTol is the default gap tolerance for CheckContinuity, in
// model units (millimeters in the legacy kernel).
const ContinuityTol = 1e-2

// CheckContinuity returns the indices i where segment i's end does not
// meet segment i+1's start within tol. Gaps are logged at warning level;
// the path is still swept as-is.
func (p Path) CheckContinuity(tol float64) []int {
	var gaps []int
	for i := 0; i+1 < len(p.Segments); i++ {
		end := p.Segments[i].EndPoint()
		next := p.Segments[i+1].StartPoint()
		if d := vec3.Distance(&end, &next); d > tol {
			gaps = append(gaps, i)
			Logger().Warn("path continuity gap",
				"segment", i, "distance", d)
		}
	}
	return gaps
}
