package sweep

import (
	"github.com/ungerik/go3d/float64/vec2"
	"github.com/ungerik/go3d/float64/vec3"
)

// ProfileVertex is one corner of a 2D cross-section. Fillet is the
// rounding radius applied by the upstream polygon processor; it is kept
// on the vertex because it is part of the profile's identity for unit
// mesh sharing. Normal optionally carries an in-plane outward normal;
// the zero vector means normals are derived from the swept faces.
type ProfileVertex struct {
	Pos    vec2.T
	Normal vec2.T
	Fillet float64
}

// Profile is a closed 2D cross-section: at least three ordered vertices
// wound counter-clockwise, an in-plane offset, and a reference axis
// ("plax") that seeds basis resolution for the swept frames.
//
// A profile with holes arrives here pre-resolved into one simple loop
// per layer; multi-loop handling is the caller's responsibility.
type Profile struct {
	Vertices      []ProfileVertex
	Offset        vec2.T
	ReferenceAxis vec3.T
}

// RectProfile returns a width x height rectangle centered on the origin
// with the default reference axis (global Z).
func RectProfile(width, height float64) Profile {
	hw, hh := width/2, height/2
	return Profile{
		Vertices: []ProfileVertex{
			{Pos: vec2.T{-hw, -hh}},
			{Pos: vec2.T{hw, -hh}},
			{Pos: vec2.T{hw, hh}},
			{Pos: vec2.T{-hw, hh}},
		},
		ReferenceAxis: vec3.UnitZ,
	}
}

// Validate rejects profiles with fewer than three vertices or negative
// fillet radii.
func (p Profile) Validate() error {
	if len(p.Vertices) < 3 {
		return ErrInvalidInput
	}
	for _, v := range p.Vertices {
		if v.Fillet < 0 {
			return ErrInvalidInput
		}
	}
	return nil
}

// Centroid returns the average of the profile vertices. Used as the fan
// apex when triangulating end caps.
func (p Profile) Centroid() vec2.T {
	var c vec2.T
	if len(p.Vertices) == 0 {
		return c
	}
	for _, v := range p.Vertices {
		c[0] += v.Pos[0]
		c[1] += v.Pos[1]
	}
	c[0] /= float64(len(p.Vertices))
	c[1] /= float64(len(p.Vertices))
	return c
}

// ApplyProfileTransform returns a copy of the profile translated by
// offset in-plane and, when mirror is set, reflected by negating the
// first in-plane coordinate of every vertex and normal.
//
// Roll about the tangent is deliberately NOT applied here: it is folded
// into the per-segment Transform rotation so instances that differ only
// by roll can share a cached unit mesh.
func ApplyProfileTransform(p Profile, offset vec2.T, mirror bool) Profile {
	out := Profile{
		Vertices:      make([]ProfileVertex, len(p.Vertices)),
		Offset:        p.Offset,
		ReferenceAxis: p.ReferenceAxis,
	}
	for i, v := range p.Vertices {
		pos := vec2.T{v.Pos[0] + offset[0], v.Pos[1] + offset[1]}
		normal := v.Normal
		if mirror {
			pos[0] = -pos[0]
			normal[0] = -normal[0]
		}
		out.Vertices[i] = ProfileVertex{Pos: pos, Normal: normal, Fillet: v.Fillet}
	}
	return out
}
