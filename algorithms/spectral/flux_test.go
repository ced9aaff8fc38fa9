package spectral

import (
	"testing"
)

func TestSpectralFluxPositiveChangesOnly(t *testing.T) {
	sf := NewSpectralFlux()

	spectrogram := [][]float64{
		{1, 1, 1},
		{3, 1, 1}, // +2 in one bin
		{0, 0, 0}, // all decay, no positive change
	}
	flux := sf.Compute(spectrogram)

	if len(flux) != 2 {
		t.Fatalf("expected 2 flux values, got %d", len(flux))
	}
	if flux[0] != 2 {
		t.Errorf("flux[0] = %v, want 2", flux[0])
	}
	if flux[1] != 0 {
		t.Errorf("decaying energy should not count, got %v", flux[1])
	}
}

func TestSpectralFluxShortInput(t *testing.T) {
	sf := NewSpectralFlux()
	if got := sf.Compute([][]float64{{1, 2}}); len(got) != 0 {
		t.Errorf("single frame has no flux, got %v", got)
	}
}
