package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"
)

// STFT provides Short-Time Fourier Transform analysis. Frames are
// processed by a small worker pool since feature extraction scans whole
// tracks at once.
type STFT struct {
	fft *FFT
}

// STFTResult holds the magnitude spectrogram and its geometry.
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"` // time x frequency
	TimeFrames     int         `json:"time_frames"`
	FreqBins       int         `json:"freq_bins"`
	SampleRate     int         `json:"sample_rate"`
	WindowSize     int         `json:"window_size"`
	HopSize        int         `json:"hop_size"`
	FreqResolution float64     `json:"freq_resolution"` // Hz per bin
	TimeResolution float64     `json:"time_resolution"` // seconds per frame
}

// FrameTime returns the start time of frame index i in seconds.
func (r *STFTResult) FrameTime(i int) float64 {
	return float64(i) * r.TimeResolution
}

// Window is any analysis window that can be applied in place.
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT analyzer.
func NewSTFT() *STFT {
	return &STFT{fft: NewFFT()}
}

// Compute calculates the magnitude spectrogram of signal. window may be
// nil for a rectangular window.
func (s *STFT) Compute(signal []float64, windowSize, hopSize, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("window size and hop size must be positive")
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	if numFrames <= 0 {
		return nil, fmt.Errorf("signal too short for window size %d", windowSize)
	}
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	for i := range magnitude {
		magnitude[i] = make([]float64, freqBins)
	}

	numWorkers := workerCount(numFrames)
	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup
	for _i := 0; _i < numWorkers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			frame := make([]float64, windowSize)
			for idx := range jobs {
				start := idx * hopSize
				copy(frame, signal[start:start+windowSize])

				if window != nil {
					if err := window.ApplyInPlace(frame); err != nil {
						continue
					}
				}

				spectrum := s.fft.Compute(frame)
				for k := 0; k < freqBins; k++ {
					magnitude[idx][k] = cmplx.Abs(spectrum[k])
				}
			}
		}()
	}

	for idx := 0; idx < numFrames; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}

func workerCount(numFrames int) int {
	numCPU := runtime.NumCPU()
	switch {
	case numFrames < 100:
		return max(1, min(numCPU/2, numFrames))
	case numFrames < 1000:
		return min(numCPU, 8)
	default:
		return numCPU
	}
}
