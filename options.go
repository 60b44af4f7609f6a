package sweep

import "github.com/ungerik/go3d/float64/vec3"

// SweepOption configures a sweep operation.
// Use functional options to customize cap handling and section placement.
//
// Example:
//
//	// Default caps, no mirroring
//	mesh := sweep.Sweep(path, transforms, profile, lod)
//
//	// Miter the start cap against an adjoining component
//	mesh := sweep.Sweep(path, transforms, profile, lod,
//		sweep.WithStartCapNormal(n))
type SweepOption func(*sweepOptions)

// sweepOptions holds optional configuration for a sweep.
type sweepOptions struct {
	startCapNormal *vec3.T
	endCapNormal   *vec3.T
	noCaps         bool
	mirror         bool
	profileOffset  [2]float64
}

// defaultSweepOptions returns the default sweep options.
func defaultSweepOptions() sweepOptions {
	return sweepOptions{}
}

// WithStartCapNormal requests an oblique start cap whose plane is
// perpendicular to n. The request is ignored, with a warning, when n is
// nearly perpendicular to the path tangent at the start; the default
// tangent-aligned cap is used instead.
func WithStartCapNormal(n vec3.T) SweepOption {
	return func(o *sweepOptions) {
		o.startCapNormal = &n
	}
}

// WithEndCapNormal requests an oblique end cap whose plane is
// perpendicular to n, with the same fallback behavior as
// WithStartCapNormal.
func WithEndCapNormal(n vec3.T) SweepOption {
	return func(o *sweepOptions) {
		o.endCapNormal = &n
	}
}

// WithoutCaps leaves both ends of the tube open. Closed paths never
// receive caps regardless of this option.
func WithoutCaps() SweepOption {
	return func(o *sweepOptions) {
		o.noCaps = true
	}
}

// WithMirror mirrors the cross section across its local Y axis before
// sweeping. Mirroring flips the section's X coordinates and X normal
// components; triangle winding is adjusted so the surface stays
// outward-facing.
func WithMirror() SweepOption {
	return func(o *sweepOptions) {
		o.mirror = true
	}
}

// WithProfileOffset shifts the cross section within its local plane
// before sweeping. The offset is applied prior to mirroring.
func WithProfileOffset(x, y float64) SweepOption {
	return func(o *sweepOptions) {
		o.profileOffset = [2]float64{x, y}
	}
}
