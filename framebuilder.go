package sweep

import (
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// UnitLineLength is the canonical length of a normalized line segment.
// A true line of length L carries Scale[2] = L / UnitLineLength.
const UnitLineLength = 10.0

// BuildFrames walks an ordered path and produces one normalized ("unit")
// segment plus one Transform per usable input segment.
//
// Per segment, the tangent at its start seeds a frame via basis
// resolution; the secondary hint is taken from the segment's own
// preferred axis first, then the profile's reference axis, then the
// fallback chain. The transform rotation is the frame rotation composed
// with the roll about the tangent; roll is never baked into geometry so
// instances differing only by roll still share a cached unit mesh.
//
// Unit segments are expressed in frame-local coordinates, so for every
// returned pair transforms[i].ApplySegment(unit.Segments[i]) reproduces
// the original segment: lines become UnitLineLength runs along local Z
// with Scale[2] = length/UnitLineLength, arcs become unit-radius arcs
// with a uniform scale equal to the radius. Translation is the true
// start (lines) or center (arcs).
//
// Only transforms[0] is meant for outer placement; the rest are consumed
// by Sweep when reconstructing the path. Degenerate segments are skipped
// with a warning. BuildFrames fails only for an empty path.
func BuildFrames(path Path, profileRef vec3.T, roll float64) (Path, []Transform, error) {
	if len(path.Segments) == 0 {
		return Path{}, nil, ErrInvalidInput
	}
	path.CheckContinuity(ContinuityTol)

	unit := Path{Segments: make([]Segment, 0, len(path.Segments))}
	transforms := make([]Transform, 0, len(path.Segments))

	for i, seg := range path.Segments {
		if err := seg.Validate(); err != nil {
			Logger().Warn("skipping invalid path segment", "segment", i, "err", err)
			continue
		}
		tangent := seg.TangentAt(0)
		if tangent.LengthSqr() < zeroTol {
			Logger().Warn("skipping degenerate path segment", "segment", i)
			continue
		}

		frame, err := Resolve(tangent, segmentHint(seg, profileRef))
		if err != nil {
			Logger().Warn("skipping segment with unresolvable frame", "segment", i, "err", err)
			continue
		}
		frameQuat := frame.Quaternion()
		rollQuat := quaternion.FromZAxisAngle(roll)
		rotation := quaternion.Mul(&frameQuat, &rollQuat)

		switch s := seg.(type) {
		case Line:
			unit.Segments = append(unit.Segments, Line{
				End: vec3.T{0, 0, UnitLineLength},
			})
			transforms = append(transforms, Transform{
				Translation: s.Start,
				Rotation:    rotation,
				Scale:       vec3.T{1, 1, s.Length() / UnitLineLength},
			})
		case Arc:
			inv := conjugate(rotation)
			radial := vec3.Sub(&s.Start, &s.Center)
			radial.Scale(1 / s.Radius)
			localStart := rotate(inv, radial)
			localAxis := rotate(inv, s.Axis.Normalized())

			ua := Arc{
				Radius:    1,
				Start:     localStart,
				Sweep:     s.Sweep,
				Axis:      localAxis,
				Clockwise: s.Clockwise,
			}
			if s.PreferredAxis.LengthSqr() > zeroTol {
				// Stored against the un-rolled frame: reconstruction
				// through the full rotation then rolls the section's up
				// direction about the tangent, which is where bangle
				// lands for arc paths.
				invFrame := conjugate(frameQuat)
				pref := s.PreferredAxis.Normalized()
				ua.PreferredAxis = rotate(invFrame, pref)
			}
			unit.Segments = append(unit.Segments, ua)
			transforms = append(transforms, Transform{
				Translation: s.Center,
				Rotation:    rotation,
				Scale:       vec3.T{s.Radius, s.Radius, s.Radius},
			})
		}
	}

	return unit, transforms, nil
}

// segmentHint returns the secondary hint for a segment's frame: the
// segment's own preferred axis when it declares one, otherwise the
// profile reference axis, otherwise nil (fallback chain).
func segmentHint(seg Segment, profileRef vec3.T) *vec3.T {
	if a, ok := seg.(Arc); ok && a.PreferredAxis.LengthSqr() > zeroTol {
		h := a.PreferredAxis
		return &h
	}
	if profileRef.LengthSqr() > zeroTol {
		h := profileRef
		return &h
	}
	return nil
}
