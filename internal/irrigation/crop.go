package irrigation

import (
	"fmt"
	"slices"
	"strings"
)

// CropProfile is the reference water need of one crop.
type CropProfile struct {
	Name                   string  `json:"name" yaml:"name"`
	MinWaterPerArea        float64 `json:"min_water_per_area" yaml:"min_water_per_area"` // litres per acre
	MaxWaterPerArea        float64 `json:"max_water_per_area" yaml:"max_water_per_area"` // litres per acre
	OptimalMoisturePercent float64 `json:"optimal_moisture_percent" yaml:"optimal_moisture_percent"`
}

// CropTable is an immutable, case-insensitive set of crop profiles.
type CropTable struct {
	profiles map[string]CropProfile
	version  string
}

// NewCropTable builds a table from profiles. Names are trimmed and matched
// case-insensitively; blank or duplicate names are rejected.
func NewCropTable(version string, profiles ...CropProfile) (*CropTable, error) {
	t := &CropTable{
		profiles: make(map[string]CropProfile, len(profiles)),
		version:  version,
	}
	for _, p := range profiles {
		key := normalizeCropName(p.Name)
		if key == "" {
			return nil, fmt.Errorf("crop profile with empty name")
		}
		if _, dup := t.profiles[key]; dup {
			return nil, fmt.Errorf("duplicate crop profile %q", p.Name)
		}
		p.Name = key
		t.profiles[key] = p
	}
	return t, nil
}

// Lookup returns the profile for name, ignoring case and surrounding space.
func (t *CropTable) Lookup(name string) (CropProfile, bool) {
	if t == nil {
		return CropProfile{}, false
	}
	p, ok := t.profiles[normalizeCropName(name)]
	return p, ok
}

// Profiles returns all profiles sorted by name.
func (t *CropTable) Profiles() []CropProfile {
	if t == nil {
		return nil
	}
	out := make([]CropProfile, 0, len(t.profiles))
	for _, p := range t.profiles {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b CropProfile) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of crops.
func (t *CropTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.profiles)
}

// Version identifies the dataset the table was loaded from.
func (t *CropTable) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

func normalizeCropName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
