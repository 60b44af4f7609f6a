package sweep

import (
	"hash/fnv"
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// GeometryKey computes a cache key identifying the shape of a swept
// unit geometry. Two sweeps share a key exactly when their unit meshes
// are interchangeable: same profile (vertices, fillets, offset,
// reference axis), same mirroring, same unit segment shapes, and same
// arc subdivision.
//
// Placement is deliberately excluded. Position, orientation, and the
// outer scale live in the per-segment transforms and are applied to
// the cached mesh afterwards, so straight runs of any length reuse one
// mesh per profile. Section roll is part of the frame rotation and is
// likewise excluded. Arc unit shapes hash distinctly per local start,
// axis, and subdivision; whether they are ever cached is the caller's
// policy.
func GeometryKey(unitPath Path, profile Profile, arcSamples int, mirror, noCaps bool) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 64)

	buf = appendFloat(buf, profile.Offset[0])
	buf = appendFloat(buf, profile.Offset[1])
	buf = appendVec3(buf, profile.ReferenceAxis)
	buf = appendBool(buf, mirror)
	buf = appendBool(buf, noCaps)
	buf = appendUint(buf, uint64(len(profile.Vertices)))
	for _, v := range profile.Vertices {
		buf = appendFloat(buf, v.Pos[0])
		buf = appendFloat(buf, v.Pos[1])
		buf = appendFloat(buf, v.Normal[0])
		buf = appendFloat(buf, v.Normal[1])
		buf = appendFloat(buf, v.Fillet)
	}
	_, _ = h.Write(buf)

	buf = buf[:0]
	buf = appendUint(buf, uint64(len(unitPath.Segments)))
	for _, seg := range unitPath.Segments {
		switch s := seg.(type) {
		case Line:
			buf = append(buf, 'L')
			buf = appendVec3(buf, s.Start)
			buf = appendVec3(buf, s.End)
		case Arc:
			buf = append(buf, 'A')
			buf = appendVec3(buf, s.Start)
			buf = appendVec3(buf, s.Axis)
			buf = appendVec3(buf, s.PreferredAxis)
			buf = appendFloat(buf, s.Radius)
			buf = appendFloat(buf, s.Sweep)
			buf = appendBool(buf, s.Clockwise)
			buf = appendUint(buf, uint64(arcSamples))
		}
	}
	_, _ = h.Write(buf)

	return h.Sum64()
}

func appendFloat(b []byte, f float64) []byte {
	u := math.Float64bits(f)
	return appendUint(b, u)
}

func appendUint(b []byte, u uint64) []byte {
	return append(b,
		byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
		byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56),
	)
}

func appendVec3(b []byte, v vec3.T) []byte {
	b = appendFloat(b, v[0])
	b = appendFloat(b, v[1])
	return appendFloat(b, v[2])
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}
