// Command sweepdemo demonstrates the sweep mesh kernel.
//
// It sweeps a rectangular section along three demo paths (a straight
// run, a 90 degree elbow, and a two-segment spine) and writes the
// results as Wavefront OBJ files.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/plantgeom/sweep"
)

func main() {
	var (
		outDir   = flag.String("out", ".", "output directory for OBJ files")
		settings = flag.String("settings", "", "optional LOD settings YAML file")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		sweep.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	lod := sweep.DefaultLod()
	if *settings != "" {
		s, err := sweep.LoadLodSettings(*settings)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		lod = s
	}

	gen := sweep.NewGenerator(nil, lod)
	profile := sweep.RectProfile(100, 60)

	demos := []struct {
		name string
		path sweep.Path
	}{
		{"straight", straightPath()},
		{"elbow", elbowPath()},
		{"spine", spinePath()},
	}

	for _, d := range demos {
		mesh := gen.Generate(0, d.path, profile)
		if mesh == nil {
			log.Fatalf("Failed to generate %s mesh", d.name)
		}
		out := filepath.Join(*outDir, d.name+".obj")
		if err := writeOBJ(out, mesh); err != nil {
			log.Fatalf("Failed to write %s: %v", out, err)
		}
		log.Printf("%s: %d vertices, %d triangles -> %s",
			d.name, mesh.VertexCount(), mesh.TriangleCount(), out)
	}

	stats := gen.CacheStats()
	log.Printf("cache: %d entries, %d hits, %d misses", stats.Len, stats.Hits, stats.Misses)
}

func straightPath() sweep.Path {
	return sweep.NewPath(sweep.Line{
		Start: vec3.T{0, 0, 0},
		End:   vec3.T{0, 0, 2000},
	})
}

func elbowPath() sweep.Path {
	return sweep.NewPath(sweep.Arc{
		Center:        vec3.T{500, 0, 0},
		Radius:        500,
		Start:         vec3.T{0, 0, 0},
		Sweep:         math.Pi / 2,
		Axis:          vec3.T{0, 1, 0},
		PreferredAxis: vec3.T{0, 1, 0},
	})
}

func spinePath() sweep.Path {
	spans := sweep.PairSpinePoints([]sweep.SpinePoint{
		{Pos: vec3.T{0, 0, 0}},
		{Pos: vec3.T{0, 0, 1000}},
		{Pos: vec3.T{300, 0, 1300}, IsCurve: true, Curve: sweep.SpineThru},
		{Pos: vec3.T{600, 0, 1000}},
		{Pos: vec3.T{600, 0, 0}},
	}, vec3.UnitY)
	path, err := sweep.BuildSpinePath(spans)
	if err != nil {
		log.Fatalf("Failed to build spine path: %v", err)
	}
	return path
}

func writeOBJ(path string, m *sweep.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, v := range m.Vertices {
		fmt.Fprintf(f, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(f, "vn %g %g %g\n", n[0], n[1], n[2])
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		fmt.Fprintf(f, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return nil
}
