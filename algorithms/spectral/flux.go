package spectral

// SpectralFlux measures frame-to-frame spectral change. Only positive
// changes count: energy arriving is novel, energy decaying is not.
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator.
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// Compute sums the positive magnitude differences between consecutive
// frames. Returns len(spectrogram)-1 values; flux[i] is the change
// arriving at frame i+1.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	if len(spectrogram) < 2 {
		return []float64{}
	}

	flux := make([]float64, len(spectrogram)-1)
	for t := 1; t < len(spectrogram); t++ {
		sum := 0.0
		for f := range spectrogram[t] {
			if diff := spectrogram[t][f] - spectrogram[t-1][f]; diff > 0 {
				sum += diff
			}
		}
		flux[t-1] = sum
	}
	return flux
}
