// Package render drives an engine through a scripted note for offline tools.
package render

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-sampler/sampler"
)

// Options controls an offline note render. With DecayDBFS set to +Inf the
// render runs for exactly Duration seconds; otherwise it stops once the
// block RMS stays below DecayDBFS for DecayHoldBlocks blocks, between
// MinDuration and MaxDuration.
type Options struct {
	Notes        []int
	Velocity     int
	Channel      int
	ReleaseAfter float64
	Duration     float64

	DecayDBFS       float64
	DecayHoldBlocks int
	MinDuration     float64
	MaxDuration     float64
	BlockSize       int
}

// DefaultOptions renders middle C for two seconds.
func DefaultOptions() Options {
	return Options{
		Notes:           []int{60},
		Velocity:        100,
		ReleaseAfter:    1.0,
		Duration:        2.0,
		DecayDBFS:       math.Inf(1),
		DecayHoldBlocks: 6,
		MinDuration:     0.5,
		MaxDuration:     20.0,
		BlockSize:       128,
	}
}

// AutoStop reports whether decay detection is enabled.
func (o Options) AutoStop() bool {
	return !math.IsInf(o.DecayDBFS, 1)
}

// Note plays the configured notes on e, releases them after ReleaseAfter
// seconds and returns the stereo interleaved result.
func Note(e *sampler.Engine, opt Options) ([]float32, error) {
	if len(opt.Notes) == 0 {
		return nil, errors.New("no notes to render")
	}
	sr := e.SampleRate()
	blockSize := max(opt.BlockSize, 16)
	holdBlocks := max(opt.DecayHoldBlocks, 1)

	minFrames := 0
	maxFrames := max(int(float64(sr)*opt.Duration), 1)
	if opt.AutoStop() {
		minFrames = int(float64(sr) * max(opt.MinDuration, 0))
		maxFrames = max(int(float64(sr)*opt.MaxDuration), minFrames)
		if maxFrames < 1 {
			return nil, errors.New("max duration too small")
		}
	}
	releaseAt := max(int(float64(sr)*opt.ReleaseAfter), 0)
	threshold := math.Pow(10.0, opt.DecayDBFS/20.0)

	for _, n := range opt.Notes {
		e.NoteOn(n, opt.Velocity, opt.Channel)
	}

	out := make([]float32, 0, maxFrames*2)
	block := make([]float32, blockSize*2)
	rendered := 0
	released := false
	below := 0
	for rendered < maxFrames {
		n := min(blockSize, maxFrames-rendered)
		if !released && rendered >= releaseAt {
			for _, note := range opt.Notes {
				e.NoteOff(note, opt.Channel)
			}
			released = true
		}
		e.RenderInto(block[:n*2])
		out = append(out, block[:n*2]...)
		rendered += n

		if opt.AutoStop() && rendered >= minFrames {
			if StereoRMS(block[:n*2]) < threshold {
				below++
				if below >= holdBlocks {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return out, nil
}

// StereoRMS is the RMS over all samples of an interleaved buffer.
func StereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}

	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(interleaved)))
}
