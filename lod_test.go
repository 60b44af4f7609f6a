package sweep

import "testing"

func TestDefaultLodSettings(t *testing.T) {
	s := DefaultLodSettings()
	if s.RadialSegments != 24 {
		t.Errorf("RadialSegments = %d, want 24", s.RadialSegments)
	}
	if s.MinRadialSegments != 8 {
		t.Errorf("MinRadialSegments = %d, want 8", s.MinRadialSegments)
	}
	if s.TargetSegmentLength != 0 {
		t.Errorf("TargetSegmentLength = %g, want 0", s.TargetSegmentLength)
	}
}

func TestLodSegmentCount(t *testing.T) {
	tests := []struct {
		name      string
		settings  LodSettings
		arcLength float64
		radius    float64
		want      int
	}{
		{
			name:     "moderate size uses base count",
			settings: DefaultLodSettings(),
			// Both scale factors land at 1.
			arcLength: 100,
			radius:    50,
			want:      24,
		},
		{
			name:      "tiny arc clamps to minimum",
			settings:  DefaultLodSettings(),
			arcLength: 1,
			radius:    0.5,
			want:      8,
		},
		{
			name:      "large arc scales up",
			settings:  DefaultLodSettings(),
			arcLength: 300,
			radius:    100,
			want:      144, // 24 * 3 * 2
		},
		{
			name:      "length factor saturates",
			settings:  DefaultLodSettings(),
			arcLength: 10000,
			radius:    100,
			want:      144,
		},
		{
			name: "configured max bounds the count",
			settings: LodSettings{
				RadialSegments:    24,
				MinRadialSegments: 8,
				MaxRadialSegments: 32,
			},
			arcLength: 300,
			radius:    100,
			want:      32,
		},
		{
			name: "hard cap applies to huge configured counts",
			settings: LodSettings{
				RadialSegments:    2000,
				MinRadialSegments: 1,
				MaxRadialSegments: 100000,
			},
			arcLength: 300,
			radius:    100,
			want:      512,
		},
		{
			name: "target length mode",
			settings: LodSettings{
				MinRadialSegments:   1,
				TargetSegmentLength: 10,
			},
			arcLength: 95,
			radius:    50,
			want:      10, // ceil(95 / 10)
		},
		{
			name: "target length respects minimum",
			settings: LodSettings{
				MinRadialSegments:   8,
				TargetSegmentLength: 100,
			},
			arcLength: 50,
			radius:    25,
			want:      8,
		},
		{
			name:      "zero settings still return at least one",
			settings:  LodSettings{},
			arcLength: 100,
			radius:    50,
			want:      1, // min defaults to 1, base count is 0
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.settings.SegmentCount(tt.arcLength, tt.radius)
			if got != tt.want {
				t.Errorf("SegmentCount(%g, %g) = %d, want %d",
					tt.arcLength, tt.radius, got, tt.want)
			}
		})
	}
}

func TestLodSettingsFromYAML(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		s, err := LodSettingsFromYAML([]byte(`
radial_segments: 48
min_radial_segments: 12
max_radial_segments: 128
target_segment_length: 25.5
`))
		if err != nil {
			t.Fatalf("LodSettingsFromYAML() error: %v", err)
		}
		want := LodSettings{
			RadialSegments:      48,
			MinRadialSegments:   12,
			MaxRadialSegments:   128,
			TargetSegmentLength: 25.5,
		}
		if s != want {
			t.Errorf("settings = %+v, want %+v", s, want)
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		s, err := LodSettingsFromYAML([]byte("max_radial_segments: 64\n"))
		if err != nil {
			t.Fatalf("LodSettingsFromYAML() error: %v", err)
		}
		if s.RadialSegments != 24 || s.MinRadialSegments != 8 {
			t.Errorf("defaults not preserved: %+v", s)
		}
		if s.MaxRadialSegments != 64 {
			t.Errorf("MaxRadialSegments = %d, want 64", s.MaxRadialSegments)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := LodSettingsFromYAML([]byte("radial_segments: [oops")); err == nil {
			t.Error("LodSettingsFromYAML() succeeded on malformed input")
		}
	})
}

func TestLoadLodSettingsMissingFile(t *testing.T) {
	if _, err := LoadLodSettings("testdata/does-not-exist.yaml"); err == nil {
		t.Error("LoadLodSettings() succeeded on a missing file")
	}
}
