package sweep

import (
	"math"

	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec2"
	"github.com/ungerik/go3d/float64/vec3"
)

const (
	// closedPathTol is the endpoint distance below which a path is
	// treated as closed. In model units (millimeters).
	closedPathTol = 1e-2

	// capNormalMinDot rejects requested cap normals that are nearly
	// perpendicular to the path tangent, where the plane intersection
	// offset would blow up.
	capNormalMinDot = 0.1
)

// frameSample is one cross-section placement along the path. right and
// up span the section plane; tangent is the path direction.
type frameSample struct {
	pos     vec3.T
	tangent vec3.T
	right   vec3.T
	up      vec3.T
}

// Sweep extrudes profile along the path described by unitPath and its
// per-segment transforms, producing a watertight triangle mesh.
//
// unitPath and transforms are typically the output of BuildFrames; a
// path already in world coordinates can be swept by passing nil
// transforms. Open paths receive planar caps at both ends unless
// WithoutCaps is given. Closed paths (endpoints within closedPathTol)
// are stitched ring-to-ring around the loop and never capped.
//
// Returns nil when the profile is unusable or no path segment survives
// validation.
func Sweep(unitPath Path, transforms []Transform, profile Profile, lod LodPolicy, opts ...SweepOption) *Mesh {
	o := defaultSweepOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if lod == nil {
		lod = DefaultLod()
	}

	if err := profile.Validate(); err != nil {
		Logger().Warn("sweep rejected profile", "err", err)
		return nil
	}
	offset := vec2.T{
		profile.Offset[0] + o.profileOffset[0],
		profile.Offset[1] + o.profileOffset[1],
	}
	prof := ApplyProfileTransform(profile, offset, o.mirror)
	if o.mirror {
		// Mirroring reverses the contour orientation; restore outward
		// winding by reversing vertex order.
		for l, r := 0, len(prof.Vertices)-1; l < r; l, r = l+1, r-1 {
			prof.Vertices[l], prof.Vertices[r] = prof.Vertices[r], prof.Vertices[l]
		}
	}

	// Reconstruct world-space segments from unit shapes.
	var segs []Segment
	for i, s := range unitPath.Segments {
		ws := transformAt(transforms, i).ApplySegment(s)
		if err := ws.Validate(); err != nil {
			Logger().Warn("sweep skipping invalid segment", "segment", i, "err", err)
			continue
		}
		segs = append(segs, ws)
	}
	if len(segs) == 0 {
		Logger().Warn("sweep has no usable segments")
		return nil
	}

	samples := samplePathFrames(segs, arcSampleCount(segs, lod), sweepRefAxis(prof), transforms)
	if len(samples) < 2 {
		Logger().Warn("sweep produced too few path samples")
		return nil
	}

	closed := pathClosed(samples)
	if closed {
		correctClosedTwist(samples)
	}

	startTan := samples[0].tangent
	endTan := samples[len(samples)-1].tangent
	startNormal := resolveCapNormal(o.startCapNormal, startTan, scaled(startTan, -1))
	endNormal := resolveCapNormal(o.endCapNormal, endTan, endTan)

	m := &Mesh{}
	ringSamples := samples
	if closed {
		// The final sample coincides with the first; drop it and stitch
		// modulo the ring count instead.
		ringSamples = samples[:len(samples)-1]
	}
	numRings := len(ringSamples)
	n := len(prof.Vertices)

	// Section rings with shared vertices.
	fixedNormal := make([]bool, 0, numRings*n)
	for i, s := range ringSamples {
		isFirst := !closed && i == 0
		isLast := !closed && i == numRings-1
		for _, pv := range prof.Vertices {
			local := sectionPoint(s, pv.Pos)
			offset := 0.0
			if isFirst {
				offset = capOffset(local, s.tangent, startNormal)
			} else if isLast {
				offset = capOffset(local, s.tangent, endNormal)
			}
			pos := vec3.Add(&s.pos, &local)
			pos[0] += s.tangent[0] * offset
			pos[1] += s.tangent[1] * offset
			pos[2] += s.tangent[2] * offset
			m.Vertices = append(m.Vertices, pos)

			if pv.Normal.LengthSqr() > zeroTol {
				nrm := sectionPoint(s, pv.Normal)
				nrm.Normalize()
				m.Normals = append(m.Normals, nrm)
				fixedNormal = append(fixedNormal, true)
			} else {
				m.Normals = append(m.Normals, vec3.Zero)
				fixedNormal = append(fixedNormal, false)
			}
		}
	}

	ringSteps := numRings - 1
	if closed {
		ringSteps = numRings
	}
	for i := 0; i < ringSteps; i++ {
		nextRing := i + 1
		if closed {
			nextRing = (i + 1) % numRings
		}
		for j := 0; j < n; j++ {
			curr := uint32(i*n + j)
			next := uint32(i*n + (j+1)%n)
			nextRingCurr := uint32(nextRing*n + j)
			nextRingNext := uint32(nextRing*n + (j+1)%n)
			m.Indices = append(m.Indices,
				curr, next, nextRingNext,
				curr, nextRingNext, nextRingCurr,
			)
		}
	}

	if !closed && !o.noCaps {
		addCap(m, prof, ringSamples[0], 0, startNormal, &fixedNormal)
		addCap(m, prof, ringSamples[numRings-1], (numRings-1)*n, endNormal, &fixedNormal)
	}

	accumulateNormals(m, fixedNormal)
	return m
}

// transformAt returns the transform for segment i, or the identity when
// none was supplied.
func transformAt(ts []Transform, i int) Transform {
	if i < len(ts) {
		return ts[i]
	}
	return IdentityTransform()
}

// sweepRefAxis returns the profile's reference axis, defaulting to
// world Z.
func sweepRefAxis(p Profile) vec3.T {
	if p.ReferenceAxis.LengthSqr() < zeroTol {
		return vec3.UnitZ
	}
	return p.ReferenceAxis.Normalized()
}

// arcSampleCount picks a single subdivision count for all arcs in the
// path, the maximum any arc requires at its true size.
func arcSampleCount(segs []Segment, lod LodPolicy) int {
	count := 1
	for _, s := range segs {
		a, ok := s.(Arc)
		if !ok {
			continue
		}
		r := math.Abs(a.Radius)
		if c := lod.SegmentCount(math.Abs(a.Sweep)*r, r); c > count {
			count = c
		}
	}
	return count
}

func pathClosed(samples []frameSample) bool {
	if len(samples) < 3 {
		return false
	}
	first := samples[0].pos
	last := samples[len(samples)-1].pos
	return vec3.Distance(&first, &last) < closedPathTol
}

// sectionPoint lifts a 2D section coordinate into world space using the
// frame's right and up axes.
func sectionPoint(s frameSample, p vec2.T) vec3.T {
	return vec3.T{
		s.right[0]*p[0] + s.up[0]*p[1],
		s.right[1]*p[0] + s.up[1]*p[1],
		s.right[2]*p[0] + s.up[2]*p[1],
	}
}

// capOffset returns the signed distance along the tangent that moves a
// section point onto the cap plane through the section origin with the
// given normal. Near-perpendicular planes yield no offset.
func capOffset(local, tangent, planeNormal vec3.T) float64 {
	denom := vec3.Dot(&planeNormal, &tangent)
	if math.Abs(denom) > 1e-6 {
		return -vec3.Dot(&planeNormal, &local) / denom
	}
	return 0
}

// resolveCapNormal validates a requested cap plane normal against the
// path tangent at that end. Invalid or missing requests fall back to
// the tangent-aligned default, and accepted normals are flipped to
// point outward.
func resolveCapNormal(requested *vec3.T, tangent, fallback vec3.T) vec3.T {
	if requested == nil || requested.LengthSqr() < 1e-3 {
		return fallback
	}
	n := requested.Normalized()
	d := vec3.Dot(&n, &tangent)
	if math.Abs(d) < capNormalMinDot {
		Logger().Warn("cap normal nearly perpendicular to path, using default",
			"dot", d)
		return fallback
	}
	outward := vec3.Dot(&fallback, &tangent)
	if (outward < 0 && d > 0) || (outward >= 0 && d < 0) {
		n.Scale(-1)
	}
	return n
}

// addCap closes one end of the tube with a triangle fan from the
// section centroid to the end ring, reusing the ring vertices so the
// surface stays watertight.
func addCap(m *Mesh, prof Profile, s frameSample, ringBase int, planeNormal vec3.T, fixedNormal *[]bool) {
	c := prof.Centroid()
	local := sectionPoint(s, c)
	offset := capOffset(local, s.tangent, planeNormal)
	center := vec3.Add(&s.pos, &local)
	center[0] += s.tangent[0] * offset
	center[1] += s.tangent[1] * offset
	center[2] += s.tangent[2] * offset

	centerIdx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, center)
	m.Normals = append(m.Normals, planeNormal)
	*fixedNormal = append(*fixedNormal, true)

	n := len(prof.Vertices)
	tris := make([]uint32, 0, 3*n)
	for j := 0; j < n; j++ {
		tris = append(tris,
			centerIdx,
			uint32(ringBase+j),
			uint32(ringBase+(j+1)%n),
		)
	}

	// Orient the fan to face along the cap plane normal.
	p0 := m.Vertices[tris[0]]
	p1 := m.Vertices[tris[1]]
	p2 := m.Vertices[tris[2]]
	e1 := vec3.Sub(&p1, &p0)
	e2 := vec3.Sub(&p2, &p0)
	face := vec3.Cross(&e1, &e2)
	if vec3.Dot(&face, &planeNormal) < 0 {
		for k := 0; k+2 < len(tris); k += 3 {
			tris[k+1], tris[k+2] = tris[k+2], tris[k+1]
		}
	}
	m.Indices = append(m.Indices, tris...)
}

// accumulateNormals fills in normals for vertices whose profile did not
// carry one, by area-weighted accumulation of incident face normals.
func accumulateNormals(m *Mesh, fixed []bool) {
	for k := 0; k+2 < len(m.Indices); k += 3 {
		i0, i1, i2 := m.Indices[k], m.Indices[k+1], m.Indices[k+2]
		if fixed[i0] && fixed[i1] && fixed[i2] {
			continue
		}
		p0, p1, p2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		e1 := vec3.Sub(&p1, &p0)
		e2 := vec3.Sub(&p2, &p0)
		face := vec3.Cross(&e1, &e2)
		for _, idx := range [3]uint32{i0, i1, i2} {
			if !fixed[idx] {
				m.Normals[idx] = vec3.Add(&m.Normals[idx], &face)
			}
		}
	}
	for i := range m.Normals {
		if fixed[i] {
			continue
		}
		if m.Normals[i].LengthSqr() > zeroTol {
			m.Normals[i].Normalize()
		} else {
			m.Normals[i] = vec3.UnitZ
		}
	}
}

// samplePathFrames walks the world-space segments and produces a
// cross-section frame at every sample point. Frames after the first are
// propagated by rotation minimization so the section never spins about
// the tangent; a path consisting of a single arc instead uses the fixed
// radial frame convention, where the section keeps the arc's preferred
// axis as its up direction for the whole sweep.
func samplePathFrames(segs []Segment, arcSegments int, plax vec3.T, transforms []Transform) []frameSample {
	if len(segs) == 1 {
		if a, ok := segs[0].(Arc); ok {
			rotPlax := rotate(transformAt(transforms, 0).Rotation, plax)
			if rotPlax.LengthSqr() > zeroTol {
				rotPlax.Normalize()
			}
			return sampleArcFrames(a, arcSegments, rotPlax)
		}
	}

	type rawSample struct {
		pos     vec3.T
		tangent vec3.T
	}
	var raw []rawSample
	for _, seg := range segs {
		switch s := seg.(type) {
		case Line:
			dir := s.Dir()
			if len(raw) == 0 {
				raw = append(raw, rawSample{s.Start, dir})
			}
			raw = append(raw, rawSample{s.End, dir})
		default:
			steps := arcSegments
			if steps < 4 {
				steps = 4
			}
			if len(raw) == 0 {
				raw = append(raw, rawSample{seg.PointAt(0), seg.TangentAt(0)})
			}
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				raw = append(raw, rawSample{seg.PointAt(t), seg.TangentAt(t)})
			}
		}
	}
	if len(raw) < 2 {
		return nil
	}

	firstTan := raw[0].tangent
	var right vec3.T
	if len(transforms) > 0 {
		// The precomputed frame carries the resolved orientation,
		// including any section roll.
		right = rotate(transforms[0].Rotation, vec3.UnitX)
	} else {
		refUp := firstFrameUp(segs, firstTan, plax)
		right = vec3.Cross(&refUp, &firstTan)
	}
	// Re-orthogonalize against the actual first tangent.
	right = projectToPlane(right, firstTan)
	up := vec3.Cross(&firstTan, &right)
	up.Normalize()

	samples := make([]frameSample, 0, len(raw))
	samples = append(samples, frameSample{raw[0].pos, firstTan, right, up})

	for i := 1; i < len(raw); i++ {
		prev := samples[i-1]
		t2 := raw[i].tangent
		if t2.LengthSqr() < zeroTol {
			t2 = prev.tangent
		} else {
			t2.Normalize()
		}

		// Minimal rotation: project the previous right axis onto the
		// plane normal to the new tangent.
		r := prev.right
		d := vec3.Dot(&r, &t2)
		proj := vec3.T{r[0] - t2[0]*d, r[1] - t2[1]*d, r[2] - t2[2]*d}
		if proj.LengthSqr() < zeroTol {
			proj = vec3.Cross(&prev.up, &t2)
		}
		if proj.LengthSqr() < zeroTol {
			perp := perpAxis(t2)
			proj = vec3.Cross(&perp, &t2)
		}
		proj.Normalize()
		u := vec3.Cross(&t2, &proj)
		u.Normalize()

		samples = append(samples, frameSample{raw[i].pos, t2, proj, u})
	}
	return samples
}

// firstFrameUp picks the reference up direction for the first frame of
// a multi-segment path: the first arc's preferred axis when the path
// contains arcs, otherwise the profile reference axis, replaced by a
// constructed perpendicular when it degenerates against the tangent.
func firstFrameUp(segs []Segment, firstTan, plax vec3.T) vec3.T {
	for _, seg := range segs {
		if a, ok := seg.(Arc); ok && a.PreferredAxis.LengthSqr() > zeroTol {
			return a.PreferredAxis.Normalized()
		}
	}
	if math.Abs(vec3.Dot(&firstTan, &plax)) > 0.9 {
		perp := perpAxis(firstTan)
		tmpRight := vec3.Cross(&perp, &firstTan)
		tmpRight.Normalize()
		up := vec3.Cross(&firstTan, &tmpRight)
		up.Normalize()
		return up
	}
	return plax
}

// sampleArcFrames produces frames for a single-arc path. The section
// orientation is fixed for the whole arc: up follows the arc's
// preferred axis and the section normal follows plax, negated for
// clockwise arcs.
func sampleArcFrames(a Arc, arcSegments int, plax vec3.T) []frameSample {
	steps := arcSegments
	if steps < 4 {
		steps = 4
	}

	up := a.PreferredAxis
	if up.LengthSqr() < zeroTol {
		up = vec3.UnitZ
	}
	up.Normalize()
	normal := plax
	if normal.LengthSqr() < zeroTol {
		normal = vec3.UnitZ
	}
	normal.Normalize()
	if a.Clockwise {
		normal.Scale(-1)
	}

	right := vec3.Cross(&up, &normal)
	if right.LengthSqr() < zeroTol {
		perp := perpAxis(normal)
		right = vec3.Cross(&perp, &normal)
	}
	right.Normalize()
	orthoUp := vec3.Cross(&normal, &right)
	orthoUp.Normalize()

	samples := make([]frameSample, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		samples = append(samples, frameSample{
			pos:     a.PointAt(t),
			tangent: a.TangentAt(t),
			right:   right,
			up:      orthoUp,
		})
	}
	return samples
}

// correctClosedTwist removes the net twist rotation-minimizing frames
// accumulate around a closed loop, distributing the start/end angular
// mismatch linearly along the samples so the seam rings line up.
func correctClosedTwist(samples []frameSample) {
	if len(samples) < 3 {
		return
	}
	first := samples[0]
	last := samples[len(samples)-1]
	t0 := first.tangent
	if vec3.Dot(&t0, &last.tangent) <= 0.99 || t0.LengthSqr() < zeroTol {
		return
	}

	p0 := projectToPlane(first.right, t0)
	pn := projectToPlane(last.right, t0)
	if p0.LengthSqr() < zeroTol || pn.LengthSqr() < zeroTol {
		return
	}
	crossPN := vec3.Cross(&p0, &pn)
	sin := vec3.Dot(&t0, &crossPN)
	cos := clampFloat(vec3.Dot(&p0, &pn), -1, 1)
	delta := math.Atan2(sin, cos)
	if math.Abs(delta) <= 1e-4 {
		return
	}

	n := len(samples)
	for i := range samples {
		frac := float64(i) / float64(n-1)
		q := quaternion.FromAxisAngle(&t0, -delta*frac)
		samples[i].right = rotate(q, samples[i].right)
		samples[i].up = rotate(q, samples[i].up)
	}
	Logger().Debug("closed path twist corrected", "delta", delta)
}

// projectToPlane projects v onto the plane normal to axis and
// normalizes, falling back to a constructed perpendicular when the
// projection degenerates.
func projectToPlane(v, axis vec3.T) vec3.T {
	d := vec3.Dot(&v, &axis)
	p := vec3.T{v[0] - axis[0]*d, v[1] - axis[1]*d, v[2] - axis[2]*d}
	if p.LengthSqr() < zeroTol {
		perp := perpAxis(axis)
		p = vec3.Cross(&perp, &axis)
	}
	p.Normalize()
	return p
}

// perpAxis returns a world axis not parallel to t.
func perpAxis(t vec3.T) vec3.T {
	if math.Abs(t[0]) < 0.9 {
		return vec3.UnitX
	}
	return vec3.UnitY
}

// scaled returns v scaled by f without mutating the argument.
func scaled(v vec3.T, f float64) vec3.T {
	v.Scale(f)
	return v
}
