// Package wavio reads and writes WAV files as float sample buffers.
package wavio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/GeoffreyPlitt/debuggo"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

var debug = debuggo.Debug("wavio")

// ErrInvalidWAV is returned for data that is not a decodable WAV stream.
var ErrInvalidWAV = errors.New("invalid wav")

// Decode reads a WAV stream into planar float32 channels.
func Decode(r io.ReadSeeker) ([][]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode pcm: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("%w: missing format", ErrInvalidWAV)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	planar := make([][]float32, ch)
	for c := range planar {
		planar[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < ch; c++ {
			planar[c][i] = buf.Data[i*ch+c]
		}
	}
	debug("decoded %d ch, %d frames @ %d Hz", ch, frames, buf.Format.SampleRate)
	return planar, buf.Format.SampleRate, nil
}

// ReadWAV loads a WAV file into planar float32 channels.
func ReadWAV(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	data, sr, err := Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return data, sr, nil
}

// ReadWAVMono loads a WAV file and averages its channels.
func ReadWAVMono(path string) ([]float64, int, error) {
	data, sr, err := ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	return MixToMono(data), sr, nil
}

// MixToMono averages planar channels into one float64 channel.
func MixToMono(data [][]float32) []float64 {
	if len(data) == 0 {
		return nil
	}
	out := make([]float64, len(data[0]))
	scale := 1 / float64(len(data))
	for _, ch := range data {
		for i := range out {
			out[i] += float64(ch[i]) * scale
		}
	}
	return out
}

// StereoToMono64 averages an interleaved stereo buffer.
func StereoToMono64(st []float32) []float64 {
	n := len(st) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 0.5 * (float64(st[i*2]) + float64(st[i*2+1]))
	}
	return out
}

// Resample converts a mono signal between sample rates. Equal rates return
// the input unchanged.
func Resample(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ResamplePlanar resamples every channel of a planar buffer.
func ResamplePlanar(data [][]float32, fromRate int, toRate int) ([][]float32, error) {
	if fromRate == toRate {
		return data, nil
	}
	out := make([][]float32, len(data))
	for c, ch := range data {
		in := make([]float64, len(ch))
		for i, v := range ch {
			in[i] = float64(v)
		}
		res, err := Resample(in, fromRate, toRate)
		if err != nil {
			return nil, err
		}
		out[c] = make([]float32, len(res))
		for i, v := range res {
			out[c][i] = float32(v)
		}
	}
	// Channels may differ by a frame after resampling.
	n := math.MaxInt
	for _, ch := range out {
		n = min(n, len(ch))
	}
	for c := range out {
		out[c] = out[c][:n]
	}
	debug("resampled %d ch %d -> %d Hz", len(data), fromRate, toRate)
	return out, nil
}

// WriteStereoInterleavedWAV writes a 16-bit stereo WAV file, creating parent
// directories as needed.
func WriteStereoInterleavedWAV(path string, samples []float32, sampleRate int) error {
	return writeWAV(path, samples, 2, sampleRate)
}

// WriteStereoWAVLR writes separate left and right channels as a stereo file.
func WriteStereoWAVLR(path string, left []float32, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch: %d vs %d", len(left), len(right))
	}
	data := make([]float32, len(left)*2)
	for i := range left {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return writeWAV(path, data, 2, sampleRate)
}

// WriteMonoWAV writes a 16-bit mono WAV file.
func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	return writeWAV(path, data, 1, sampleRate)
}

// Encode writes interleaved samples as a 16-bit WAV stream.
func Encode(w io.WriteSeeker, samples []float32, channels int, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func writeWAV(path string, samples []float32, channels int, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := Encode(f, samples, channels, sampleRate); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	debug("wrote %s (%d ch, %d frames)", path, channels, len(samples)/channels)
	return nil
}

// Decoder decodes in-memory WAV files for sampler.Engine.LoadEncodedRegion.
// A non-zero TargetRate resamples the decoded data to that rate.
type Decoder struct {
	TargetRate int
}

// Decode implements sampler.Decoder.
func (d Decoder) Decode(encoded []byte) ([][]float32, float64, error) {
	data, sr, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}
	if d.TargetRate > 0 && d.TargetRate != sr {
		data, err = ResamplePlanar(data, sr, d.TargetRate)
		if err != nil {
			return nil, 0, err
		}
		sr = d.TargetRate
	}
	return data, float64(sr), nil
}
