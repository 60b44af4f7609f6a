// Package sweep converts a 3D path of line and arc segments plus a 2D
// cross-section profile into a watertight triangle mesh, reproducing the
// shape conventions of a legacy plant-design CAD kernel.
//
// # Overview
//
// sweep backs a headless model-generation pipeline that materializes
// thousands of piping and structural elements from a property graph. It
// covers three things:
//
//   - Orientation resolution: loosely specified directional hints (YDIR,
//     OPDI, cut planes, preferred axes) are turned into a fully determined
//     orthonormal frame, including the legacy degenerate-axis fallbacks.
//   - Normalized segments: each path segment is reduced to a canonical
//     "unit" segment plus an affine Transform, so geometrically similar
//     instances can share one generated mesh.
//   - Sweeping: the profile is placed at sampled frames along the
//     reconstructed path, rings are stitched into triangles, and the two
//     ends are closed with straight or oblique caps.
//
// # Quick Start
//
//	profile := sweep.RectProfile(10, 10)
//	path := sweep.NewPath(sweep.Line{End: vec3.T{0, 0, 100}})
//
//	unit, transforms, err := sweep.BuildFrames(path, profile.ReferenceAxis, 0)
//	if err != nil {
//	    // invalid input, element skipped
//	}
//	mesh := sweep.Sweep(unit, transforms, profile, sweep.DefaultLod())
//
// For the full per-element pipeline (attribute overrides, unit-mesh
// caching, outer placement) see Generator.
//
// # Architecture
//
// The library is organized into:
//   - Root package: path sampling, basis resolution, frame building,
//     profile handling, the mesh sweeper, LOD policy.
//   - cache/: a concurrent compute-once memo table for unit meshes.
//
// A single generation is synchronous and pure; only the cache is shared.
// Workers may run generations concurrently without coordination.
//
// # Coordinate System
//
// Right-handed, Z up. A frame is the orthonormal triple (right, up,
// forward); profiles live in the right/up plane and forward follows the
// path tangent. Angles are in radians.
//
// # Errors
//
// Malformed domain input (too few profile vertices, empty paths,
// non-positive radii) yields a nil mesh and a warning log, never a panic:
// one bad element must not abort generation of the rest.
package sweep
