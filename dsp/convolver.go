package dsp

import (
	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

// StereoConvolver applies a stereo impulse response (room/body) to a stereo
// interleaved signal using partitioned overlap-add convolution.
type StereoConvolver struct {
	partSize int
	irLen    int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	leftIn   []float32
	rightIn  []float32
	leftOut  []float32
	rightOut []float32
}

// NewStereoConvolver creates a convolver with an identity IR.
func NewStereoConvolver(partSize int) *StereoConvolver {
	if partSize < 16 {
		partSize = 128
	}
	c := &StereoConvolver{partSize: partSize}
	c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// IRLen reports the length of the longer IR channel.
func (c *StereoConvolver) IRLen() int {
	return c.irLen
}

// SetIR configures left/right impulse responses. On construction failure the
// previous IR stays active.
func (c *StereoConvolver) SetIR(leftIR []float32, rightIR []float32) {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = leftIR
	}

	leftOLA, errL := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	rightOLA, errR := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if errL != nil || errR != nil {
		return
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR))

	c.leftIn = make([]float32, c.partSize)
	c.rightIn = make([]float32, c.partSize)
	c.leftOut = make([]float32, c.partSize)
	c.rightOut = make([]float32, c.partSize)
	c.Reset()
}

// Process convolves a stereo interleaved buffer in place, mixing the wet
// signal with the dry input.
func (c *StereoConvolver) Process(interleaved []float32, dry, wet float32) {
	frames := len(interleaved) / 2
	for processed := 0; processed < frames; processed += c.partSize {
		blockLen := min(c.partSize, frames-processed)
		for i := 0; i < c.partSize; i++ {
			if i < blockLen {
				c.leftIn[i] = interleaved[(processed+i)*2]
				c.rightIn[i] = interleaved[(processed+i)*2+1]
			} else {
				c.leftIn[i] = 0
				c.rightIn[i] = 0
			}
		}

		errL := c.leftOLA.ProcessBlockTo(c.leftOut, c.leftIn)
		errR := c.rightOLA.ProcessBlockTo(c.rightOut, c.rightIn)
		if errL != nil || errR != nil {
			continue
		}
		for i := 0; i < blockLen; i++ {
			l := &interleaved[(processed+i)*2]
			r := &interleaved[(processed+i)*2+1]
			*l = dry*(*l) + wet*c.leftOut[i]
			*r = dry*(*r) + wet*c.rightOut[i]
		}
	}
}

// Reset clears convolver history and overlap buffers.
func (c *StereoConvolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
}
