// Package playback adapts a sampler engine to audio output libraries.
package playback

import (
	"encoding/binary"
	"math"

	"github.com/gopxl/beep"
)

// Renderer produces planar stereo audio. *sampler.Engine implements it.
type Renderer interface {
	RenderPlanar(left, right []float32)
}

const chunkFrames = 1024

// Streamer exposes a Renderer as an endless beep.Streamer.
type Streamer struct {
	r     Renderer
	left  []float32
	right []float32
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer wraps r.
func NewStreamer(r Renderer) *Streamer {
	return &Streamer{
		r:     r,
		left:  make([]float32, chunkFrames),
		right: make([]float32, chunkFrames),
	}
}

// Stream fills samples and never drains.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	for off := 0; off < len(samples); off += chunkFrames {
		n := min(chunkFrames, len(samples)-off)
		s.r.RenderPlanar(s.left[:n], s.right[:n])
		for i := 0; i < n; i++ {
			samples[off+i][0] = float64(s.left[i])
			samples[off+i][1] = float64(s.right[i])
		}
	}
	return len(samples), true
}

// Err always returns nil; rendering cannot fail.
func (s *Streamer) Err() error {
	return nil
}

// PCMReader exposes a Renderer as interleaved float32 little-endian stereo
// PCM, the format oto's FormatFloat32LE expects.
type PCMReader struct {
	r     Renderer
	left  []float32
	right []float32
}

// NewPCMReader wraps r.
func NewPCMReader(r Renderer) *PCMReader {
	return &PCMReader{
		r:     r,
		left:  make([]float32, chunkFrames),
		right: make([]float32, chunkFrames),
	}
}

// Read renders len(p)/8 frames. Trailing bytes that do not form a whole
// frame are left untouched.
func (p *PCMReader) Read(buf []byte) (int, error) {
	frames := len(buf) / 8
	written := 0
	for off := 0; off < frames; off += chunkFrames {
		n := min(chunkFrames, frames-off)
		p.r.RenderPlanar(p.left[:n], p.right[:n])
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(buf[written:], math.Float32bits(p.left[i]))
			binary.LittleEndian.PutUint32(buf[written+4:], math.Float32bits(p.right[i]))
			written += 8
		}
	}
	return written, nil
}
