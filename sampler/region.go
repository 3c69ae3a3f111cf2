package sampler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GeoffreyPlitt/debuggo"
)

var storeDebug = debuggo.Debug("sampler:store")

// ErrInvalidRegion is matched by every *InvalidRegionError.
var ErrInvalidRegion = errors.New("invalid region")

// InvalidRegionError reports why a region was rejected at load time.
type InvalidRegionError struct {
	Field  string
	Reason string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region: %s: %s", e.Field, e.Reason)
}

func (e *InvalidRegionError) Is(target error) bool {
	return target == ErrInvalidRegion
}

func invalid(field, format string, args ...any) error {
	return &InvalidRegionError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RegionID identifies a region by its insertion index in the store.
type RegionID int

// SampleDescriptor carries the per-region metadata handed over by a loader.
//
// Frame positions follow the loader convention: EndPoint 0 means the last
// frame, LoopEnd 0 means EndPoint, and loop points in (0,1] are fractions of
// EndPoint. RootFrequency 0 means the equal-tempered frequency of RootNote.
type SampleDescriptor struct {
	RootNote      int
	Detune        float32 // cents
	RootFrequency float64 // Hz

	MinKey      int
	MaxKey      int
	MinVelocity int
	MaxVelocity int

	Looping    bool
	LoopStart  float64
	LoopEnd    float64
	StartPoint float64
	EndPoint   float64

	GainDB float32
	Pan    float32
}

// FullRangeDescriptor returns a descriptor covering every key and velocity.
func FullRangeDescriptor(rootNote int) SampleDescriptor {
	return SampleDescriptor{
		RootNote:    rootNote,
		MinKey:      0,
		MaxKey:      127,
		MinVelocity: 0,
		MaxVelocity: 127,
	}
}

// SampleRegion is an immutable decoded sample plus its resolved metadata.
type SampleRegion struct {
	ID         RegionID
	Data       [][]float32 // planar, 1 or 2 channels, equal lengths
	SampleRate float64

	RootNote      int
	Detune        float32
	RootFrequency float64

	MinKey      int
	MaxKey      int
	MinVelocity int
	MaxVelocity int

	Looping    bool
	LoopStart  float64
	LoopEnd    float64
	StartPoint float64
	EndPoint   float64

	Gain float32 // linear
	Pan  float32
}

// Channels reports the number of planar channels.
func (r *SampleRegion) Channels() int {
	return len(r.Data)
}

// Frames reports the number of frames per channel.
func (r *SampleRegion) Frames() int {
	if len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0])
}

// ContainsKey reports whether note lies inside the key range.
func (r *SampleRegion) ContainsKey(note int) bool {
	return note >= r.MinKey && note <= r.MaxKey
}

// ContainsVelocity reports whether velocity lies inside the velocity range.
func (r *SampleRegion) ContainsVelocity(velocity int) bool {
	return velocity >= r.MinVelocity && velocity <= r.MaxVelocity
}

// Decoder turns an encoded sample file into planar float channels.
type Decoder interface {
	Decode(encoded []byte) (data [][]float32, sampleRate float64, err error)
}

// SampleStore owns decoded sample buffers. Adding regions never rebuilds a
// key map; the caller commits explicitly.
type SampleStore struct {
	mu      sync.Mutex
	regions []*SampleRegion
}

// NewSampleStore creates an empty store.
func NewSampleStore() *SampleStore {
	return &SampleStore{}
}

// AddRegion validates and stores a planar sample buffer. Channels beyond the
// second are dropped.
func (s *SampleStore) AddRegion(data [][]float32, sampleRate float64, desc SampleDescriptor) (RegionID, error) {
	region, err := newRegion(data, sampleRate, desc)
	if err != nil {
		storeDebug("rejected region root=%d: %v", desc.RootNote, err)
		return -1, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	region.ID = RegionID(len(s.regions))
	s.regions = append(s.regions, region)
	storeDebug("added region %d root=%d keys=%d..%d vel=%d..%d frames=%d",
		region.ID, region.RootNote, region.MinKey, region.MaxKey,
		region.MinVelocity, region.MaxVelocity, region.Frames())
	return region.ID, nil
}

// AddInterleaved de-interleaves a buffer with the given channel count and adds it.
func (s *SampleStore) AddInterleaved(interleaved []float32, channels int, sampleRate float64, desc SampleDescriptor) (RegionID, error) {
	if channels <= 0 {
		return -1, invalid("channels", "channel count %d must be positive", channels)
	}
	if len(interleaved) == 0 {
		return -1, invalid("data", "empty buffer")
	}
	if len(interleaved)%channels != 0 {
		return -1, invalid("data", "buffer length %d is not a multiple of %d channels", len(interleaved), channels)
	}
	frames := len(interleaved) / channels
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			data[ch][i] = interleaved[i*channels+ch]
		}
	}
	return s.AddRegion(data, sampleRate, desc)
}

// AddEncoded decodes an encoded sample file and adds it.
func (s *SampleStore) AddEncoded(encoded []byte, desc SampleDescriptor, dec Decoder) (RegionID, error) {
	if dec == nil {
		return -1, fmt.Errorf("add encoded region: nil decoder")
	}
	if len(encoded) == 0 {
		return -1, invalid("data", "empty encoded buffer")
	}
	data, sampleRate, err := dec.Decode(encoded)
	if err != nil {
		return -1, fmt.Errorf("add encoded region: %w", err)
	}
	return s.AddRegion(data, sampleRate, desc)
}

// Clear drops every region.
func (s *SampleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = nil
	storeDebug("cleared")
}

// Len reports the number of stored regions.
func (s *SampleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regions)
}

// Region returns a stored region or nil.
func (s *SampleStore) Region(id RegionID) *SampleRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || int(id) >= len(s.regions) {
		return nil
	}
	return s.regions[id]
}

// Snapshot returns the current region list. Regions are immutable so the
// slice can be shared with the render actor.
func (s *SampleStore) Snapshot() []*SampleRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*SampleRegion, len(s.regions))
	copy(out, s.regions)
	return out
}

func newRegion(data [][]float32, sampleRate float64, desc SampleDescriptor) (*SampleRegion, error) {
	if len(data) == 0 {
		return nil, invalid("data", "empty buffer")
	}
	if len(data) > 2 {
		data = data[:2]
	}
	frames := len(data[0])
	if frames == 0 {
		return nil, invalid("data", "zero-length channel")
	}
	for ch := 1; ch < len(data); ch++ {
		if len(data[ch]) != frames {
			return nil, invalid("data", "channel %d has %d frames, want %d", ch, len(data[ch]), frames)
		}
	}
	if !(sampleRate > 0) {
		return nil, invalid("sampleRate", "must be positive, got %g", sampleRate)
	}
	if err := checkMIDIRange("rootNote", desc.RootNote); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"minKey", desc.MinKey}, {"maxKey", desc.MaxKey},
		{"minVelocity", desc.MinVelocity}, {"maxVelocity", desc.MaxVelocity},
	} {
		if err := checkMIDIRange(f.name, f.value); err != nil {
			return nil, err
		}
	}
	if desc.MinKey > desc.MaxKey {
		return nil, invalid("keyRange", "minKey %d > maxKey %d", desc.MinKey, desc.MaxKey)
	}
	if desc.MinVelocity > desc.MaxVelocity {
		return nil, invalid("velocityRange", "minVelocity %d > maxVelocity %d", desc.MinVelocity, desc.MaxVelocity)
	}

	last := float64(frames - 1)
	end := desc.EndPoint
	if end == 0 {
		end = last
	}
	start := desc.StartPoint
	if start < 0 || end > last {
		return nil, invalid("playRange", "start %g / end %g outside 0..%g", start, end, last)
	}
	if end <= start {
		return nil, invalid("playRange", "endPoint %g <= startPoint %g", end, start)
	}

	loopStart, loopEnd := desc.LoopStart, desc.LoopEnd
	if loopStart > 0 && loopStart <= 1 {
		loopStart *= end
	}
	if loopEnd > 0 && loopEnd <= 1 {
		loopEnd *= end
	}
	if loopEnd == 0 {
		loopEnd = end
	}
	if desc.Looping {
		if loopStart < start || loopEnd > end {
			return nil, invalid("loop", "loop %g..%g outside play range %g..%g", loopStart, loopEnd, start, end)
		}
		if loopStart >= loopEnd {
			return nil, invalid("loop", "loopStart %g >= loopEnd %g", loopStart, loopEnd)
		}
	} else {
		loopStart = clamp64(loopStart, start, end)
		loopEnd = clamp64(loopEnd, loopStart, end)
	}
	if desc.RootFrequency < 0 {
		return nil, invalid("rootFrequency", "must not be negative, got %g", desc.RootFrequency)
	}

	rootFreq := desc.RootFrequency
	if rootFreq == 0 {
		rootFreq = NoteHz(desc.RootNote)
	}

	return &SampleRegion{
		Data:          data,
		SampleRate:    sampleRate,
		RootNote:      desc.RootNote,
		Detune:        desc.Detune,
		RootFrequency: rootFreq,
		MinKey:        desc.MinKey,
		MaxKey:        desc.MaxKey,
		MinVelocity:   desc.MinVelocity,
		MaxVelocity:   desc.MaxVelocity,
		Looping:       desc.Looping,
		LoopStart:     loopStart,
		LoopEnd:       loopEnd,
		StartPoint:    start,
		EndPoint:      end,
		Gain:          float32(dbToGain(float64(desc.GainDB))),
		Pan:           clampf(desc.Pan, -1, 1),
	}, nil
}

func checkMIDIRange(field string, v int) error {
	if v < 0 || v > 127 {
		return invalid(field, "%d outside 0..127", v)
	}
	return nil
}

func clamp64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
