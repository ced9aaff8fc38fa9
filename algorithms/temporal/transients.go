package temporal

import (
	"fmt"

	"github.com/stemscope/stemscope/algorithms/spectral"
	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/algorithms/windowing"
)

// TransientDensity measures how much percussive activity a signal has
// over time. Onset strength is taken as positive spectral flux,
// smoothed with a short moving average and normalized so the curve
// lives in [0, 1].
type TransientDensity struct {
	windowSize  int
	hopSize     int
	smoothWidth int

	stft *spectral.STFT
	flux *spectral.SpectralFlux
}

// NewTransientDensity creates a transient density analyzer. The
// smoothing window covers roughly windowSize/hopSize frames so a
// single onset spreads over one analysis window.
func NewTransientDensity(windowSize, hopSize int) *TransientDensity {
	smoothWidth := windowSize / hopSize
	if smoothWidth < 1 {
		smoothWidth = 1
	}

	return &TransientDensity{
		windowSize:  windowSize,
		hopSize:     hopSize,
		smoothWidth: smoothWidth,
		stft:        spectral.NewSTFT(),
		flux:        spectral.NewSpectralFlux(),
	}
}

// Compute returns the normalized transient density curve for a
// signal. One value per flux frame; use FrameTime to map indices to
// seconds.
func (td *TransientDensity) Compute(signal []float64, sampleRate int) ([]float64, error) {
	if len(signal) < td.windowSize {
		return []float64{}, nil
	}

	window := windowing.NewHann(td.windowSize, false)
	result, err := td.stft.Compute(signal, td.windowSize, td.hopSize, sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}

	onsetStrength := td.flux.Compute(result.Magnitude)
	smoothed := stats.MovingAverage(onsetStrength, td.smoothWidth)
	return stats.NormalizeToMax(smoothed), nil
}

// FrameTime returns the time in seconds of the given density frame.
func (td *TransientDensity) FrameTime(frame int, sampleRate int) float64 {
	return float64((frame+1)*td.hopSize) / float64(sampleRate)
}
