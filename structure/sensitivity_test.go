package structure

import (
	"testing"
)

func TestClampSensitivity(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.99, 0.95},
		{0.0, 0.05},
		{1.0, 0.95},
		{0.05, 0.05},
		{0.95, 0.95},
		{0.5, 0.5},
		{0.42, 0.42},
	}

	for _, tt := range tests {
		if got := ClampSensitivity(tt.in); got != tt.want {
			t.Errorf("ClampSensitivity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSensitivityConfigValidate(t *testing.T) {
	cfg := DefaultSensitivityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	cfg.Bass = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sensitivity > 1")
	}

	cfg.Bass = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative sensitivity")
	}

	cfg.Bass = 0.0
	if err := cfg.Validate(); err != nil {
		t.Errorf("0.0 is inside [0,1] and should validate, got %v", err)
	}
}

func TestSensitivityConfigFor(t *testing.T) {
	cfg := SensitivityConfig{Drums: 0.1, Bass: 0.2, Vocals: 0.3, Instruments: 0.4}

	if got := cfg.For(StemBass); got != 0.2 {
		t.Errorf("For(bass) = %v, want 0.2", got)
	}
	if got := cfg.For(StemInstruments); got != 0.4 {
		t.Errorf("For(instruments) = %v, want 0.4", got)
	}
	// full_mix follows the drums lane
	if got := cfg.For(StemFullMix); got != 0.1 {
		t.Errorf("For(full_mix) = %v, want 0.1", got)
	}
}
