package motifs

import (
	"context"
	"fmt"

	"github.com/stemscope/stemscope/algorithms/spectral"
	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/algorithms/temporal"
	"github.com/stemscope/stemscope/algorithms/windowing"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/structure"
)

const (
	embeddingWindowSize = 2048
	embeddingHopSize    = 512
)

// Options controls motif segmentation and embedding.
type Options struct {
	WindowBars      float64 `json:"window_bars"`      // motif window length (default 2)
	HopBars         float64 `json:"hop_bars"`         // slide step (default 1)
	ExcludeFullMix  bool    `json:"exclude_full_mix"` // skip the full_mix lane
	SilenceRMS      float64 `json:"silence_rms"`      // segments below this never yield instances
	NumCoefficients int     `json:"num_coefficients"` // cepstral coefficients per frame
}

// DefaultOptions returns the standard 2-bar window, 1-bar hop setup.
func DefaultOptions() Options {
	return Options{
		WindowBars:      2.0,
		HopBars:         1.0,
		ExcludeFullMix:  true,
		SilenceRMS:      0.01,
		NumCoefficients: 13,
	}
}

// Result is one motif detection run. Raw holds the pre-clustering
// instances so the run can be re-clustered with a new sensitivity
// without re-extracting features.
type Result struct {
	Instances []*structure.MotifInstance `json:"instances"`
	Groups    []*structure.MotifGroup   `json:"groups"`
	Raw       []*structure.MotifInstance `json:"-"`
}

// Detector slices each stem into bar-aligned windows, embeds them, and
// clusters the embeddings into motif groups.
type Detector struct {
	opts   Options
	logger logging.Logger
}

// NewDetector creates a motif detector.
func NewDetector(opts Options) *Detector {
	if opts.WindowBars <= 0 {
		opts.WindowBars = 2.0
	}
	if opts.HopBars <= 0 {
		opts.HopBars = 1.0
	}
	if opts.SilenceRMS <= 0 {
		opts.SilenceRMS = 0.01
	}
	if opts.NumCoefficients <= 0 {
		opts.NumCoefficients = 13
	}

	return &Detector{
		opts:   opts,
		logger: logging.GetGlobalLogger(),
	}
}

// Detect extracts motif instances from every stem, clusters each
// stem's instances independently, and aligns the clustered instances
// to regions. The raw pre-cluster instances are retained on the
// result.
func (d *Detector) Detect(ctx context.Context, set *structure.StemSet, regions []*structure.Region, sensitivity structure.SensitivityConfig) (*Result, error) {
	raw, err := d.ExtractInstances(ctx, set)
	if err != nil {
		return nil, err
	}

	instances, groups := d.Cluster(raw, sensitivity)
	AlignRegions(instances, regions)

	d.logger.Debug("motif detection complete", logging.Fields{
		"instances": len(instances),
		"groups":    len(groups),
	})

	return &Result{Instances: instances, Groups: groups, Raw: raw}, nil
}

// Recluster re-runs the clustering step over retained raw instances
// with a new sensitivity. The raw list is never mutated; fresh
// instance records come back aligned to the given regions.
func (d *Detector) Recluster(raw []*structure.MotifInstance, regions []*structure.Region, sensitivity structure.SensitivityConfig) ([]*structure.MotifInstance, []*structure.MotifGroup) {
	instances, groups := d.Cluster(raw, sensitivity)
	AlignRegions(instances, regions)
	return instances, groups
}

// ExtractInstances windows every stem and embeds each surviving
// segment. The returned instances carry no group assignment.
func (d *Detector) ExtractInstances(ctx context.Context, set *structure.StemSet) ([]*structure.MotifInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if set.BPM <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", set.BPM)
	}

	roles := structure.StemRoles()
	if !d.opts.ExcludeFullMix {
		roles = append(roles, structure.StemFullMix)
	}

	var instances []*structure.MotifInstance
	for _, role := range roles {
		buf := set.Stem(role)
		if buf == nil {
			continue
		}

		stemInstances, err := d.extractStem(buf, set.BPM)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s motifs: %w", role, err)
		}
		instances = append(instances, stemInstances...)
	}

	return instances, nil
}

// extractStem slides the motif window across one stem buffer.
func (d *Detector) extractStem(buf *structure.StemBuffer, bpm float64) ([]*structure.MotifInstance, error) {
	windowSec := structure.BarsToSeconds(d.opts.WindowBars, bpm)
	hopSec := structure.BarsToSeconds(d.opts.HopBars, bpm)
	duration := buf.Duration()

	envelope := temporal.NewEnvelope(embeddingWindowSize, embeddingHopSize, buf.SampleRate)

	var instances []*structure.MotifInstance
	for start := 0.0; start+windowSec <= duration; start += hopSec {
		end := start + windowSec
		startSample := int(start * float64(buf.SampleRate))
		endSample := min(int(end*float64(buf.SampleRate)), len(buf.Samples))
		segment := buf.Samples[startSample:endSample]

		// Silent windows never yield a motif instance.
		if envelope.MeanRMS(segment) < d.opts.SilenceRMS {
			continue
		}

		embedding, err := d.embed(segment, buf.SampleRate)
		if err != nil {
			return nil, err
		}
		if embedding == nil {
			continue
		}

		instances = append(instances, &structure.MotifInstance{
			ID:        fmt.Sprintf("%s_motif_%03d", buf.Role, len(instances)),
			Stem:      buf.Role,
			StartTime: start,
			EndTime:   end,
			Embedding: embedding,
		})
	}

	return instances, nil
}

// embed computes the segment's timbral descriptor: the mean and
// standard deviation of each cepstral coefficient across frames,
// concatenated. The length is independent of segment length.
func (d *Detector) embed(segment []float64, sampleRate int) ([]float64, error) {
	if len(segment) < embeddingWindowSize {
		return nil, nil
	}

	window := windowing.NewHann(embeddingWindowSize, false)
	stft := spectral.NewSTFT()
	result, err := stft.Compute(segment, embeddingWindowSize, embeddingHopSize, sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}

	mfcc := spectral.NewMFCC(sampleRate, d.opts.NumCoefficients)
	frames, err := mfcc.ComputeFrames(result.Magnitude)
	if err != nil {
		return nil, fmt.Errorf("failed to compute MFCCs: %w", err)
	}
	if len(frames) == 0 {
		return nil, nil
	}

	numCoeffs := len(frames[0])
	embedding := make([]float64, 2*numCoeffs)
	column := make([]float64, len(frames))
	for c := 0; c < numCoeffs; c++ {
		for t, frame := range frames {
			column[t] = frame[c]
		}
		embedding[c] = stats.Mean(column)
		embedding[numCoeffs+c] = stats.StdDev(column)
	}

	return embedding, nil
}

// AlignRegions populates each instance's RegionIDs with every region
// whose interval overlaps the instance's window.
func AlignRegions(instances []*structure.MotifInstance, regions []*structure.Region) {
	for _, inst := range instances {
		inst.RegionIDs = inst.RegionIDs[:0]
		for _, r := range regions {
			if r.Overlaps(inst.StartTime, inst.EndTime) {
				inst.RegionIDs = append(inst.RegionIDs, r.ID)
			}
		}
	}
}
