package sweep

import (
	"math"

	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// parallelTol is the |dot| threshold above which two unit vectors are
// treated as parallel and the secondary hint is rejected.
const parallelTol = 0.99

// zeroTol guards against near-zero-length directions.
const zeroTol = 1e-6

// Frame is an orthonormal (right, up, forward) triple describing local
// orientation at a path point. Profiles live in the right/up plane;
// forward follows the path tangent.
type Frame struct {
	Right, Up, Forward vec3.T
}

// Quaternion returns the rotation taking local axes into the frame:
// local X to Right, local Y to Up, local Z to Forward.
func (f Frame) Quaternion() quaternion.T {
	return quatFromBasis(f.Right, f.Up, f.Forward)
}

// fallbackAxes is the fixed priority order tried when the secondary hint
// is absent or nearly parallel to the primary direction.
var fallbackAxes = [3]vec3.T{vec3.UnitZ, vec3.UnitY, vec3.UnitX}

// pickHint returns a usable secondary direction for the given forward
// axis: the hint itself when present and safely non-parallel, otherwise
// the first axis of the chain that is non-parallel.
func pickHint(forward vec3.T, hint *vec3.T, chain []vec3.T) vec3.T {
	if hint != nil && hint.LengthSqr() > zeroTol {
		h := hint.Normalized()
		if math.Abs(vec3.Dot(&h, &forward)) <= parallelTol {
			return h
		}
	}
	for _, axis := range chain {
		if math.Abs(vec3.Dot(&axis, &forward)) <= parallelTol {
			return axis
		}
	}
	// Unreachable for unit forward: no vector is near-parallel to all
	// three coordinate axes at once.
	return vec3.UnitX
}

// resolve is the shared degeneracy core of the basis family:
// forward = normalize(primary), right = normalize(hint x forward),
// up = forward x right. The chain supplies the fallback axes tried when
// the hint is missing or parallel.
func resolve(primary vec3.T, hint *vec3.T, chain []vec3.T) (Frame, error) {
	if primary.LengthSqr() < zeroTol {
		return Frame{}, ErrInvalidDirection
	}
	forward := primary.Normalized()
	h := pickHint(forward, hint, chain)

	right := vec3.Cross(&h, &forward)
	right.Normalize()
	up := vec3.Cross(&forward, &right)
	return Frame{Right: right, Up: up, Forward: forward}, nil
}

// Resolve builds an orthonormal frame from a primary direction and an
// optional secondary hint. When hint is nil or nearly parallel to
// primary, fallback axes are substituted in the fixed priority order
// Z, Y, X. Fails only when primary has near-zero length; the caller
// guarantees non-degenerate input otherwise.
func Resolve(primary vec3.T, hint *vec3.T) (Frame, error) {
	return resolve(primary, hint, fallbackAxes[:])
}

// ResolveYDir builds a frame whose up axis tracks a YDIR reference
// direction as closely as orthogonality to forward allows.
func ResolveYDir(forward, ydir vec3.T) (Frame, error) {
	return resolve(forward, &ydir, fallbackAxes[:])
}

// ResolveOpDir builds a frame from an operating direction (OPDI), which
// becomes the forward axis. A vertical operating direction picks -Y
// signed by the direction's Z component, matching the legacy
// operating-direction rule for valves and nozzles.
func ResolveOpDir(opdi vec3.T) (Frame, error) {
	if opdi.LengthSqr() < zeroTol {
		return Frame{}, ErrInvalidDirection
	}
	f := opdi.Normalized()
	if math.Abs(vec3.Dot(&f, &vec3.UnitZ)) > parallelTol {
		h := vec3.T{0, -1, 0}
		if f[2] < 0 {
			h = vec3.T{0, 1, 0}
		}
		return resolve(f, &h, fallbackAxes[:])
	}
	return resolve(f, nil, fallbackAxes[:])
}

// ResolveExtrusion builds a frame for an extrusion axis. The secondary
// reference is global Z, or global X for vertical axes; negate flips the
// reference for reversed extrusions.
func ResolveExtrusion(forward vec3.T, negate bool) (Frame, error) {
	if forward.LengthSqr() < zeroTol {
		return Frame{}, ErrInvalidDirection
	}
	f := forward.Normalized()
	h := vec3.UnitZ
	if math.Abs(vec3.Dot(&f, &vec3.UnitZ)) > parallelTol {
		h = vec3.UnitX
	}
	if negate {
		h = h.Inverted()
	}
	return resolve(f, &h, fallbackAxes[:])
}

// ResolveCutPlane builds a frame whose up axis lies in the cut plane:
// up = cutp x forward, falling back to global Z when the cut-plane
// normal is nearly parallel to the axis. Used for joint cut planes.
func ResolveCutPlane(forward, cutp vec3.T) (Frame, error) {
	if forward.LengthSqr() < zeroTol {
		return Frame{}, ErrInvalidDirection
	}
	f := forward.Normalized()
	up := vec3.Cross(&cutp, &f)
	if math.Abs(vec3.Dot(&cutp, &f)) > parallelTol || up.LengthSqr() < zeroTol {
		up = vec3.UnitZ
	} else {
		up.Normalize()
	}
	right := vec3.Cross(&up, &f)
	right.Normalize()
	// Re-orthogonalize up so the triple is exactly orthonormal even for
	// a substituted fallback axis.
	orthoUp := vec3.Cross(&f, &right)
	return Frame{Right: right, Up: orthoUp, Forward: f}, nil
}

// quatFromBasis converts the rotation with columns (right, up, forward)
// into a unit quaternion using Shepperd's method.
func quatFromBasis(r, u, f vec3.T) quaternion.T {
	m00, m01, m02 := r[0], u[0], f[0]
	m10, m11, m12 := r[1], u[1], f[1]
	m20, m21, m22 := r[2], u[2], f[2]

	trace := m00 + m11 + m22
	var q quaternion.T
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = quaternion.T{(m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s, s / 4}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quaternion.T{s / 4, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quaternion.T{(m01 + m10) / s, s / 4, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quaternion.T{(m02 + m20) / s, (m12 + m21) / s, s / 4, (m10 - m01) / s}
	}
	q.Normalize()
	return q
}

// rotate applies a unit quaternion rotation to a vector.
func rotate(q quaternion.T, v vec3.T) vec3.T {
	return q.RotatedVec3(&v)
}

// conjugate returns the inverse rotation of a unit quaternion.
func conjugate(q quaternion.T) quaternion.T {
	return quaternion.T{-q[0], -q[1], -q[2], q[3]}
}
