package sweep

import (
	"math"
	"testing"

	"github.com/ungerik/go3d/float64/vec3"
)

func TestGeneratorStraightRunsShareUnitMesh(t *testing.T) {
	g := NewGenerator(nil, nil)
	prof := RectProfile(100, 60)

	short := g.Generate(1, NewPath(Line{End: vec3.T{0, 0, 250}}), prof)
	long := g.Generate(2, NewPath(Line{Start: vec3.T{50, 50, 0}, End: vec3.T{50, 50, 5000}}), prof)
	if short == nil || long == nil {
		t.Fatal("Generate() returned nil")
	}

	stats := g.CacheStats()
	if stats.Len != 1 {
		t.Errorf("cache len = %d, want 1 shared unit mesh", stats.Len)
	}
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}

	// Topology is shared; placement is not.
	if &short.Indices[0] != &long.Indices[0] {
		t.Error("placed meshes do not share the unit index buffer")
	}
	if short.VertexCount() != 10 || long.VertexCount() != 10 {
		t.Errorf("vertex counts = %d/%d, want 10 each",
			short.VertexCount(), long.VertexCount())
	}
}

func TestGeneratorPlacement(t *testing.T) {
	g := NewGenerator(nil, nil)
	m := g.Generate(1, NewPath(Line{End: vec3.T{0, 0, 1000}}), RectProfile(100, 60))
	if m == nil {
		t.Fatal("Generate() returned nil")
	}

	minZ, maxZ := math.MaxFloat64, -math.MaxFloat64
	for _, v := range m.Vertices {
		minZ = math.Min(minZ, v[2])
		maxZ = math.Max(maxZ, v[2])
	}
	if !floatClose(minZ, 0, 1e-9) || !floatClose(maxZ, 1000, 1e-9) {
		t.Errorf("placed z extent = [%g, %g], want [0, 1000]", minZ, maxZ)
	}
	checkUnitNormals(t, m)
	checkWatertight(t, m)
}

func TestGeneratorRollSharesLineMesh(t *testing.T) {
	src := &mapSource{
		scalars: map[uint64]map[string]float64{
			2: {"BANG": 45},
		},
	}
	g := NewGenerator(src, nil)
	path := NewPath(Line{End: vec3.T{0, 0, 1000}})
	prof := RectProfile(100, 60)

	plain := g.Generate(1, path, prof)
	rolled := g.Generate(2, path, prof)
	if plain == nil || rolled == nil {
		t.Fatal("Generate() returned nil")
	}

	// Roll lives in the placement rotation, so the rolled instance is a
	// cache hit on the same unit mesh.
	stats := g.CacheStats()
	if stats.Len != 1 || stats.Hits != 1 {
		t.Errorf("cache len/hits = %d/%d, want 1/1", stats.Len, stats.Hits)
	}

	// The rolled tube occupies a rotated footprint of the same size.
	var plainMax, rolledMax float64
	for _, v := range plain.Vertices {
		plainMax = math.Max(plainMax, math.Hypot(v[0], v[1]))
	}
	for _, v := range rolled.Vertices {
		rolledMax = math.Max(rolledMax, math.Hypot(v[0], v[1]))
	}
	if !floatClose(plainMax, rolledMax, 1e-9) {
		t.Errorf("section circumradius changed under roll: %g vs %g", plainMax, rolledMax)
	}
}

func TestGeneratorArcBypassesCache(t *testing.T) {
	// A cached unit arc would carry the radius as a uniform scale on
	// placement, inflating the cross-section by the bend radius. Arcs
	// must be swept directly.
	g := NewGenerator(nil, nil)
	arc := Arc{
		Center:        vec3.T{500, 0, 0},
		Radius:        500,
		Start:         vec3.T{0, 0, 0},
		Sweep:         math.Pi / 2,
		Axis:          vec3.UnitY,
		PreferredAxis: vec3.UnitY,
	}
	m := g.Generate(1, NewPath(arc), RectProfile(100, 60))
	if m == nil {
		t.Fatal("Generate() returned nil")
	}
	if stats := g.CacheStats(); stats.Len != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("arc path touched the cache: %+v", stats)
	}
	checkWatertight(t, m)
}

func TestGeneratorElbowMatchesDirectSweep(t *testing.T) {
	prof := RectProfile(100, 60)
	arc := Arc{
		Center:        vec3.T{500, 0, 0},
		Radius:        500,
		Start:         vec3.T{0, 0, 0},
		Sweep:         math.Pi / 2,
		Axis:          vec3.UnitY,
		PreferredAxis: vec3.UnitY,
	}

	got := NewGenerator(nil, nil).Generate(1, NewPath(arc), prof)
	if got == nil {
		t.Fatal("Generate() returned nil")
	}

	unit, transforms, err := BuildFrames(NewPath(arc), sweepRefAxis(prof), 0)
	if err != nil {
		t.Fatalf("BuildFrames() error: %v", err)
	}
	want := Sweep(unit, transforms, prof, DefaultLod())
	if want == nil {
		t.Fatal("Sweep() returned nil")
	}

	if got.VertexCount() != want.VertexCount() {
		t.Fatalf("vertex counts differ: %d vs %d", got.VertexCount(), want.VertexCount())
	}
	for i := range want.Vertices {
		if !vecClose(got.Vertices[i], want.Vertices[i], 1e-6) {
			t.Fatalf("vertex %d = %v, want %v", i, got.Vertices[i], want.Vertices[i])
		}
	}

	// The section must keep its true size: no vertex strays from the
	// arc by more than the section half-diagonal.
	half := math.Hypot(50, 30)
	for i, v := range got.Vertices {
		c := vec3.Sub(&v, &arc.Center)
		if dev := math.Abs(c.Length() - arc.Radius); dev > half+1e-6 {
			t.Errorf("vertex %d = %v strays %g from the arc", i, v, dev)
		}
	}
}

func TestGeneratorCachedLineMatchesDirectSweep(t *testing.T) {
	prof := RectProfile(100, 60)
	line := Line{Start: vec3.T{100, 200, 300}, End: vec3.T{700, 200, 300}}

	got := NewGenerator(nil, nil).Generate(1, NewPath(line), prof)
	if got == nil {
		t.Fatal("Generate() returned nil")
	}

	unit, transforms, err := BuildFrames(NewPath(line), sweepRefAxis(prof), 0)
	if err != nil {
		t.Fatalf("BuildFrames() error: %v", err)
	}
	want := Sweep(unit, transforms, prof, DefaultLod())
	if want == nil {
		t.Fatal("Sweep() returned nil")
	}

	if got.VertexCount() != want.VertexCount() {
		t.Fatalf("vertex counts differ: %d vs %d", got.VertexCount(), want.VertexCount())
	}
	// Corner normals blend wall and cap faces at the mesh's own scale,
	// so only positions are required to agree between the routes.
	for i := range want.Vertices {
		if !vecClose(got.Vertices[i], want.Vertices[i], 1e-6) {
			t.Fatalf("vertex %d = %v, want %v", i, got.Vertices[i], want.Vertices[i])
		}
	}
	checkUnitNormals(t, got)
}

func sectionExtents(m *Mesh) (maxAbsX, maxAbsY float64) {
	for _, v := range m.Vertices {
		maxAbsX = math.Max(maxAbsX, math.Abs(v[0]))
		maxAbsY = math.Max(maxAbsY, math.Abs(v[1]))
	}
	return maxAbsX, maxAbsY
}

func TestGeneratorOrientationOverrides(t *testing.T) {
	path := NewPath(Line{End: vec3.T{0, 0, 1000}})
	prof := RectProfile(100, 60)

	g := NewGenerator(nil, nil)
	plain := g.GenerateWithOverrides(path, prof, Overrides{})
	if plain == nil {
		t.Fatal("GenerateWithOverrides() returned nil")
	}
	// Default vertical frame: section x on world x, section y on world y.
	if x, y := sectionExtents(plain); !floatClose(x, 50, 1e-9) || !floatClose(y, 30, 1e-9) {
		t.Fatalf("default extents = %g/%g, want 50/30", x, y)
	}

	t.Run("secondary reference", func(t *testing.T) {
		ydir := vec3.T{1, 0, 0}
		m := g.GenerateWithOverrides(path, prof, Overrides{SecondaryRef: &ydir})
		if m == nil {
			t.Fatal("GenerateWithOverrides() returned nil")
		}
		// The section's up axis now tracks world X, swapping the
		// footprint.
		if x, y := sectionExtents(m); !floatClose(x, 30, 1e-9) || !floatClose(y, 50, 1e-9) {
			t.Errorf("extents with YDIR = %g/%g, want 30/50", x, y)
		}
	})

	t.Run("operating direction beats secondary reference", func(t *testing.T) {
		ydir := vec3.T{0, 1, 0}
		opdi := vec3.T{1, 0, 1}
		opdi.Normalize()
		m := g.GenerateWithOverrides(path, prof, Overrides{
			SecondaryRef: &ydir,
			OperatingDir: &opdi,
		})
		if m == nil {
			t.Fatal("GenerateWithOverrides() returned nil")
		}
		// YDIR alone would keep the default footprint; the oblique
		// operating direction rotates the section a quarter turn.
		if x, y := sectionExtents(m); !floatClose(x, 30, 1e-9) || !floatClose(y, 50, 1e-9) {
			t.Errorf("extents with OPDI = %g/%g, want 30/50", x, y)
		}
	})

	t.Run("cut plane", func(t *testing.T) {
		cutp := vec3.T{1, 0, 0}
		m := g.GenerateWithOverrides(path, prof, Overrides{CutPlane: &cutp})
		if m == nil {
			t.Fatal("GenerateWithOverrides() returned nil")
		}
		different := false
		for i := range plain.Vertices {
			if !vecClose(m.Vertices[i], plain.Vertices[i], 1e-9) {
				different = true
				break
			}
		}
		if !different {
			t.Error("cut plane override produced identical geometry")
		}
	})

	t.Run("orientation stays out of the cache key", func(t *testing.T) {
		fresh := NewGenerator(nil, nil)
		ydir := vec3.T{1, 0, 0}
		if fresh.GenerateWithOverrides(path, prof, Overrides{}) == nil ||
			fresh.GenerateWithOverrides(path, prof, Overrides{SecondaryRef: &ydir}) == nil {
			t.Fatal("GenerateWithOverrides() returned nil")
		}
		if stats := fresh.CacheStats(); stats.Len != 1 || stats.Hits != 1 {
			t.Errorf("oriented runs did not share the unit mesh: %+v", stats)
		}
	})
}

func TestGeneratorMultiSegmentBypassesCache(t *testing.T) {
	g := NewGenerator(nil, nil)
	path := NewPath(
		Line{End: vec3.T{0, 0, 500}},
		Line{Start: vec3.T{0, 0, 500}, End: vec3.T{500, 0, 500}},
	)
	m := g.Generate(1, path, RectProfile(100, 60))
	if m == nil {
		t.Fatal("Generate() returned nil")
	}
	stats := g.CacheStats()
	if stats.Len != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("multi-segment path touched the cache: %+v", stats)
	}
}

func TestGeneratorCapNormalBypassesCache(t *testing.T) {
	src := &mapSource{
		vectors: map[uint64]map[string]vec3.T{
			1: {"DRNE": {1, 0, 1}},
		},
	}
	g := NewGenerator(src, nil)
	m := g.Generate(1, NewPath(Line{End: vec3.T{0, 0, 1000}}), RectProfile(100, 60))
	if m == nil {
		t.Fatal("Generate() returned nil")
	}
	if stats := g.CacheStats(); stats.Len != 0 {
		t.Errorf("oblique-capped sweep was cached: %+v", stats)
	}
}

func TestGeneratorPositionOverrides(t *testing.T) {
	src := &mapSource{
		vectors: map[uint64]map[string]vec3.T{
			1: {"NPOS": {5, 6, 7}},
		},
		scalars: map[uint64]map[string]float64{
			1: {"ZDIS": 100},
		},
	}
	g := NewGenerator(src, nil)
	path := NewPath(Line{End: vec3.T{0, 0, 1000}})
	prof := RectProfile(100, 60)

	plain := NewGenerator(nil, nil).Generate(0, path, prof)
	moved := g.Generate(1, path, prof)
	if plain == nil || moved == nil {
		t.Fatal("Generate() returned nil")
	}
	if plain.VertexCount() != moved.VertexCount() {
		t.Fatal("vertex counts differ")
	}

	// A vertical run has the identity frame, so ZDIS adds to world z on
	// top of the NPOS world offset.
	want := vec3.T{5, 6, 107}
	for i := range plain.Vertices {
		p := plain.Vertices[i]
		q := moved.Vertices[i]
		d := vec3.Sub(&q, &p)
		if !vecClose(d, want, 1e-9) {
			t.Fatalf("vertex %d moved by %v, want %v", i, d, want)
		}
	}
}

func TestGeneratorEmptyPath(t *testing.T) {
	g := NewGenerator(nil, nil)
	if m := g.Generate(1, Path{}, RectProfile(100, 60)); m != nil {
		t.Errorf("Generate() = %v, want nil for an empty path", m)
	}
}

func TestGeneratorMirrorKeyedSeparately(t *testing.T) {
	src := &mapSource{
		scalars: map[uint64]map[string]float64{
			2: {"LMIRR": 1},
		},
	}
	g := NewGenerator(src, nil)
	path := NewPath(Line{End: vec3.T{0, 0, 500}})
	prof := RectProfile(100, 60)
	prof.Offset = [2]float64{20, 0}

	if g.Generate(1, path, prof) == nil || g.Generate(2, path, prof) == nil {
		t.Fatal("Generate() returned nil")
	}
	if stats := g.CacheStats(); stats.Len != 2 || stats.Hits != 0 {
		t.Errorf("mirrored sweep shared the unmirrored unit mesh: %+v", stats)
	}
}

func BenchmarkGeneratorCachedStraight(b *testing.B) {
	g := NewGenerator(nil, nil)
	path := NewPath(Line{End: vec3.T{0, 0, 1000}})
	prof := RectProfile(100, 60)
	if g.Generate(0, path, prof) == nil {
		b.Fatal("Generate() returned nil")
	}
	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		if m := g.Generate(0, path, prof); m == nil {
			b.Fatal("Generate() returned nil")
		}
	}
}
