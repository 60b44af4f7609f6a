package sweep

import (
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"

	"github.com/plantgeom/sweep/cache"
)

// Generator produces placed sweep meshes for model elements. Unit
// geometry is memoized, so every straight run with the same catalogue
// profile shares one mesh regardless of length, orientation, or roll.
// Bends are swept directly: the section of a cached unit arc would be
// rescaled by the bend radius on placement.
//
// A Generator is safe for concurrent use.
type Generator struct {
	src  AttributeSource
	lod  LodPolicy
	memo *cache.Memo[uint64, *Mesh]
}

// NewGenerator creates a Generator. src may be nil when elements carry
// no override attributes; lod nil selects the default policy.
func NewGenerator(src AttributeSource, lod LodPolicy) *Generator {
	if lod == nil {
		lod = DefaultLod()
	}
	return &Generator{
		src:  src,
		lod:  lod,
		memo: cache.NewMemo[uint64, *Mesh](cache.Uint64Hasher),
	}
}

// Generate sweeps profile along path for one element, applying the
// element's override attributes. Returns nil when no mesh can be
// produced.
func (g *Generator) Generate(elementID uint64, path Path, profile Profile) *Mesh {
	return g.GenerateWithOverrides(path, profile, ResolveOverrides(g.src, elementID))
}

// GenerateWithOverrides is Generate with the overrides already
// resolved.
func (g *Generator) GenerateWithOverrides(path Path, profile Profile, o Overrides) *Mesh {
	unitPath, transforms, err := BuildFrames(path, orientationRef(path, profile, o), o.Roll)
	if err != nil {
		Logger().Warn("generate: frame construction failed", "err", err)
		return nil
	}

	var opts []SweepOption
	if o.Mirror {
		opts = append(opts, WithMirror())
	}
	if o.StartCapNormal != nil {
		opts = append(opts, WithStartCapNormal(*o.StartCapNormal))
	}
	if o.EndCapNormal != nil {
		opts = append(opts, WithEndCapNormal(*o.EndCapNormal))
	}

	var mesh *Mesh
	if g.cacheable(unitPath, o) {
		mesh = g.cachedSweep(unitPath, transforms, profile, o)
	} else {
		mesh = Sweep(unitPath, transforms, profile, g.lod, opts...)
	}
	if mesh == nil {
		return nil
	}

	if o.PosOffset != vec3.Zero || o.LocalOffset != vec3.Zero || o.AxialOffset != 0 {
		f := frameFromRotation(transformAt(transforms, 0).Rotation)
		delta := o.ApplyPosition(vec3.Zero, f)
		mesh = mesh.Transformed(Transform{
			Translation: delta,
			Rotation:    quaternion.Ident,
			Scale:       vec3.T{1, 1, 1},
		})
	}
	return mesh
}

// CacheStats reports unit-geometry cache statistics.
func (g *Generator) CacheStats() cache.Stats {
	return g.memo.Stats()
}

// cacheable reports whether the swept unit geometry can be shared
// through the memo table: exactly one straight segment with no cap
// overrides. Oblique caps bake world geometry into the mesh, and
// multi-segment paths depend on relative segment placement that the
// unit shapes alone do not capture. Arcs are never cached: their unit
// form carries a uniform radius scale that would inflate the
// cross-section on placement, so the section-to-radius ratio cannot be
// reconciled by any single outer transform.
func (g *Generator) cacheable(unitPath Path, o Overrides) bool {
	if len(unitPath.Segments) != 1 ||
		o.StartCapNormal != nil || o.EndCapNormal != nil {
		return false
	}
	_, isLine := unitPath.Segments[0].(Line)
	return isLine
}

// cachedSweep builds or reuses the unit mesh for a single-line path and
// places it with the segment transform. The unit mesh is swept in
// frame-local coordinates, where the forward axis is Z; the placement
// scales local Z only, so position, orientation, roll, and the run
// length stay out of the cached data while the section keeps its true
// size.
func (g *Generator) cachedSweep(unitPath Path, transforms []Transform, profile Profile, o Overrides) *Mesh {
	placement := transformAt(transforms, 0)

	key := GeometryKey(unitPath, profile, 1, o.Mirror, false)
	unit, err := g.memo.GetOrCompute(key, func() (*Mesh, error) {
		localProfile := profile
		localProfile.ReferenceAxis = vec3.UnitZ
		var opts []SweepOption
		if o.Mirror {
			opts = append(opts, WithMirror())
		}
		m := Sweep(unitPath, []Transform{IdentityTransform()}, localProfile, fixedLod(1), opts...)
		if m == nil {
			return nil, ErrInvalidInput
		}
		return m, nil
	})
	if err != nil {
		Logger().Warn("generate: unit mesh construction failed", "err", err)
		return nil
	}
	return unit.Transformed(placement)
}

// orientationRef picks the secondary reference axis for frame
// resolution. Without orientation overrides it is the profile's
// reference axis. With YDIR, OPDI, or CUTP present, the element frame
// is resolved at the path's first tangent with the model's attribute
// priority (OPDI beats YDIR, CUTP re-derives last) and its up axis
// becomes the reference, so the section tracks the overridden
// orientation. Arc segments with their own preferred axis still win
// inside BuildFrames.
func orientationRef(path Path, profile Profile, o Overrides) vec3.T {
	ref := sweepRefAxis(profile)
	if o.OperatingDir == nil && o.SecondaryRef == nil && o.CutPlane == nil {
		return ref
	}
	for _, seg := range path.Segments {
		tangent := seg.TangentAt(0)
		if tangent.LengthSqr() < zeroTol {
			continue
		}
		f, err := o.ResolveFrame(tangent)
		if err != nil {
			Logger().Warn("generate: override frame resolution failed", "err", err)
			break
		}
		return f.Up
	}
	return ref
}

// fixedLod is a LodPolicy returning a predetermined subdivision count.
type fixedLod int

func (n fixedLod) SegmentCount(arcLength, radius float64) int {
	if n < 1 {
		return 1
	}
	return int(n)
}

// frameFromRotation expands a rotation into its frame axes.
func frameFromRotation(q quaternion.T) Frame {
	return Frame{
		Right:   rotate(q, vec3.UnitX),
		Up:      rotate(q, vec3.UnitY),
		Forward: rotate(q, vec3.UnitZ),
	}
}
