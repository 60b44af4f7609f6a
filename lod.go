package sweep

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// LodPolicy decides how many samples an arc of a given true size gets.
// It is a pure function of geometric scale so that level-of-detail
// policy stays decoupled from the sweep itself.
type LodPolicy interface {
	// SegmentCount returns the number of subdivisions for an arc with
	// the given true arc length and radius. Always >= 1.
	SegmentCount(arcLength, radius float64) int
}

// maxArcSegments is the hard upper bound on arc subdivision, matching
// the legacy kernel's cap.
const maxArcSegments = 512

// LodSettings configures the default LOD policy. The zero value is not
// useful; start from DefaultLodSettings or load from YAML.
type LodSettings struct {
	// RadialSegments is the base subdivision count for arcs of
	// moderate size.
	RadialSegments int `yaml:"radial_segments"`

	// MinRadialSegments bounds subdivision from below.
	MinRadialSegments int `yaml:"min_radial_segments"`

	// MaxRadialSegments bounds subdivision from above; 0 means the
	// hard cap (512). Long large-radius arcs visibly facet when this is
	// configured too low.
	MaxRadialSegments int `yaml:"max_radial_segments"`

	// TargetSegmentLength, when positive, switches to size-adaptive
	// subdivision: one sample per TargetSegmentLength of arc, clamped
	// to the min/max bounds. In model units (millimeters).
	TargetSegmentLength float64 `yaml:"target_segment_length"`
}

// DefaultLodSettings returns the legacy kernel's default precision.
func DefaultLodSettings() LodSettings {
	return LodSettings{
		RadialSegments:    24,
		MinRadialSegments: 8,
	}
}

// DefaultLod returns the default LOD policy.
func DefaultLod() LodPolicy {
	return DefaultLodSettings()
}

// SegmentCount implements LodPolicy.
func (s LodSettings) SegmentCount(arcLength, radius float64) int {
	minSegs := s.MinRadialSegments
	if minSegs < 1 {
		minSegs = 1
	}
	maxSegs := s.MaxRadialSegments
	if maxSegs <= 0 || maxSegs > maxArcSegments {
		maxSegs = maxArcSegments
	}
	if maxSegs < minSegs {
		maxSegs = minSegs
	}

	if s.TargetSegmentLength > 0 {
		n := int(math.Ceil(arcLength / s.TargetSegmentLength))
		return clampInt(n, minSegs, maxSegs)
	}

	base := float64(s.RadialSegments)
	lengthFactor := clampFloat(arcLength/100, 0.5, 3)
	radiusFactor := clampFloat(radius/50, 0.5, 2)
	return clampInt(int(base*lengthFactor*radiusFactor), minSegs, maxSegs)
}

// LodSettingsFromYAML parses settings from YAML, applying defaults for
// absent fields.
func LodSettingsFromYAML(data []byte) (LodSettings, error) {
	s := DefaultLodSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return LodSettings{}, fmt.Errorf("sweep: parse lod settings: %w", err)
	}
	return s, nil
}

// LoadLodSettings reads settings from a YAML file.
func LoadLodSettings(path string) (LodSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LodSettings{}, fmt.Errorf("sweep: read lod settings: %w", err)
	}
	return LodSettingsFromYAML(data)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
