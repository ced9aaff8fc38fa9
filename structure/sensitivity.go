package structure

import "fmt"

// Sensitivity bounds. Values inside [0,1] but outside the usable band
// are clamped before clustering: at the extremes the adaptive epsilon
// degenerates and everything merges or nothing merges.
const (
	SensitivityMin = 0.05
	SensitivityMax = 0.95

	DefaultSensitivity = 0.5
)

// SensitivityConfig carries the per-stem clustering sensitivity.
// 0 = strict grouping (more groups), 1 = loose grouping (fewer groups).
type SensitivityConfig struct {
	Drums       float64 `json:"drums"`
	Bass        float64 `json:"bass"`
	Vocals      float64 `json:"vocals"`
	Instruments float64 `json:"instruments"`
}

// DefaultSensitivityConfig returns 0.5 for every stem.
func DefaultSensitivityConfig() SensitivityConfig {
	return SensitivityConfig{
		Drums:       DefaultSensitivity,
		Bass:        DefaultSensitivity,
		Vocals:      DefaultSensitivity,
		Instruments: DefaultSensitivity,
	}
}

// For returns the sensitivity for a stem role. full_mix has no tunable
// of its own and follows the drums lane, matching the tuning UI.
func (c SensitivityConfig) For(role StemRole) float64 {
	switch role {
	case StemBass:
		return c.Bass
	case StemVocals:
		return c.Vocals
	case StemInstruments:
		return c.Instruments
	default:
		return c.Drums
	}
}

// Validate rejects values outside [0,1]. Clamping to the usable band is
// a separate, non-failing step.
func (c SensitivityConfig) Validate() error {
	for _, v := range []struct {
		role StemRole
		val  float64
	}{
		{StemDrums, c.Drums},
		{StemBass, c.Bass},
		{StemVocals, c.Vocals},
		{StemInstruments, c.Instruments},
	} {
		if v.val < 0 || v.val > 1 {
			return fmt.Errorf("sensitivity for %s must be in [0, 1], got %v", v.role, v.val)
		}
	}
	return nil
}

// Clamped returns a copy with every value clamped to
// [SensitivityMin, SensitivityMax].
func (c SensitivityConfig) Clamped() SensitivityConfig {
	return SensitivityConfig{
		Drums:       ClampSensitivity(c.Drums),
		Bass:        ClampSensitivity(c.Bass),
		Vocals:      ClampSensitivity(c.Vocals),
		Instruments: ClampSensitivity(c.Instruments),
	}
}

// ClampSensitivity clamps one value to the usable band.
func ClampSensitivity(v float64) float64 {
	if v < SensitivityMin {
		return SensitivityMin
	}
	if v > SensitivityMax {
		return SensitivityMax
	}
	return v
}
