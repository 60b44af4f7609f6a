package sweep

import (
	"math"

	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// Transform is the affine map attached to one path segment. It rescales
// the segment's normalized ("unit") form back to true size and, for the
// first segment of a path, also places the whole instance:
//
//	world = Translation + Rotation * (Scale o local)
//
// where o is the component-wise product. Rotation carries the segment
// frame and any roll about the tangent; roll is never baked into profile
// geometry so instances differing only by roll share a unit mesh.
type Transform struct {
	Translation vec3.T
	Rotation    quaternion.T
	Scale       vec3.T
}

// IdentityTransform returns the transform that maps local coordinates to
// themselves.
func IdentityTransform() Transform {
	return Transform{
		Rotation: quaternion.Ident,
		Scale:    vec3.T{1, 1, 1},
	}
}

// ApplyPoint maps a local position to world space.
func (t Transform) ApplyPoint(local vec3.T) vec3.T {
	p := vec3.Mul(&t.Scale, &local)
	p = rotate(t.Rotation, p)
	return vec3.Add(&t.Translation, &p)
}

// ApplyVector maps a local direction to world space. Directions ignore
// translation and scale.
func (t Transform) ApplyVector(local vec3.T) vec3.T {
	return rotate(t.Rotation, local)
}

// UniformScale reports whether all three scale factors are equal within
// floating tolerance.
func (t Transform) UniformScale() bool {
	return math.Abs(t.Scale[0]-t.Scale[1]) < zeroTol &&
		math.Abs(t.Scale[1]-t.Scale[2]) < zeroTol
}

// ApplySegment reconstructs a true-size segment from its unit form.
// Unit arcs carry a uniform scale (the radius), so arc parameters map
// directly; unit lines scale along local Z only.
func (t Transform) ApplySegment(s Segment) Segment {
	switch seg := s.(type) {
	case Line:
		return Line{
			Start: t.ApplyPoint(seg.Start),
			End:   t.ApplyPoint(seg.End),
		}
	case Arc:
		axis := t.ApplyVector(seg.Axis)
		axis.Normalize()
		out := Arc{
			Center:    t.ApplyPoint(seg.Center),
			Start:     t.ApplyPoint(seg.Start),
			Radius:    seg.Radius * t.Scale[0],
			Sweep:     seg.Sweep,
			Axis:      axis,
			Clockwise: seg.Clockwise,
		}
		if seg.PreferredAxis.LengthSqr() > zeroTol {
			pref := t.ApplyVector(seg.PreferredAxis)
			pref.Normalize()
			out.PreferredAxis = pref
		}
		return out
	default:
		return s
	}
}
