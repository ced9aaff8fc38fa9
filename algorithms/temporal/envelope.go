package temporal

import (
	"math"
)

// Envelope computes frame-level RMS energy over a signal. The frame
// grid matches the STFT grid so energy curves line up with spectral
// features computed at the same hop.
type Envelope struct {
	frameSize  int
	hopSize    int
	sampleRate int
}

// NewEnvelope creates an RMS envelope calculator.
func NewEnvelope(frameSize, hopSize, sampleRate int) *Envelope {
	return &Envelope{
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
	}
}

// ComputeRMS calculates per-frame RMS energy for overlapping frames.
func (e *Envelope) ComputeRMS(signal []float64) []float64 {
	if len(signal) < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i * e.hopSize
		end := start + e.frameSize

		sumSquares := 0.0
		for j := start; j < end; j++ {
			sumSquares += signal[j] * signal[j]
		}
		energies[i] = math.Sqrt(sumSquares / float64(e.frameSize))
	}

	return energies
}

// MeanRMS returns the RMS of the whole signal as a single value.
func (e *Envelope) MeanRMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, s := range signal {
		sumSquares += s * s
	}
	return math.Sqrt(sumSquares / float64(len(signal)))
}

// FrameTime returns the time in seconds of the given frame index.
func (e *Envelope) FrameTime(frame int) float64 {
	return float64(frame*e.hopSize) / float64(e.sampleRate)
}

// HopDuration returns the hop size in seconds.
func (e *Envelope) HopDuration() float64 {
	return float64(e.hopSize) / float64(e.sampleRate)
}
