package render

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sampler/sampler"
)

func newEngine(t *testing.T, release float32) *sampler.Engine {
	t.Helper()
	p := sampler.NewDefaultParams()
	p.ReleaseDuration = release
	e := sampler.NewEngine(48000, 8, p)
	data := make([]float32, 48000)
	for i := range data {
		data[i] = 0.5
	}
	desc := sampler.FullRangeDescriptor(60)
	desc.Looping = true
	if _, err := e.LoadRegion([][]float32{data}, 48000, desc); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.BuildKeyMap(sampler.PolicyExactRange)
	return e
}

func TestNoteFixedDuration(t *testing.T) {
	e := newEngine(t, 0)
	opt := DefaultOptions()
	opt.Duration = 0.25
	opt.ReleaseAfter = 0.1
	out, err := Note(e, opt)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if len(out) != 12000*2 {
		t.Fatalf("frames = %d", len(out)/2)
	}
	if StereoRMS(out[:4800*2]) < 0.1 {
		t.Fatalf("held part should be loud")
	}
	if StereoRMS(out[len(out)-2400:]) > 1e-4 {
		t.Fatalf("released tail should be silent")
	}
}

func TestNoteAutoStopsAfterRelease(t *testing.T) {
	e := newEngine(t, 0.05)
	opt := DefaultOptions()
	opt.DecayDBFS = -90
	opt.MinDuration = 0.1
	opt.MaxDuration = 5
	opt.ReleaseAfter = 0.2
	out, err := Note(e, opt)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	frames := len(out) / 2
	if frames >= 5*48000 || frames < int(0.2*48000) {
		t.Fatalf("auto-stop at %d frames", frames)
	}
}

func TestNoteRequiresNotes(t *testing.T) {
	opt := DefaultOptions()
	opt.Notes = nil
	if _, err := Note(newEngine(t, 0), opt); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStereoRMS(t *testing.T) {
	if got := StereoRMS([]float32{1, -1, 1, -1}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("rms = %f", got)
	}
	if StereoRMS(nil) != 0 {
		t.Fatalf("empty rms should be 0")
	}
}
