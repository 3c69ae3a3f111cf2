package analysis

import (
	"math"
)

const (
	envelopeFrame = 256
	envelopeHop   = 128
)

// Metrics compares a rendered note against a reference recording.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	RefAttackS      float64 `json:"ref_attack_s"`
	CandAttackS     float64 `json:"cand_attack_s"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`
	AttackDiffS     float64 `json:"attack_diff_s"`
	RefPeakHz       float64 `json:"ref_peak_hz"`
	CandPeakHz      float64 `json:"cand_peak_hz"`
	PitchErrorCents float64 `json:"pitch_error_cents"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare aligns both signals, normalises their level and returns distance
// metrics with a combined score in [0,1] (0 is identical).
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}
	ref := normalizeRMS(trimLeadingSilence(reference, 1e-6), 0.1)
	cand := normalizeRMS(trimLeadingSilence(candidate, 1e-6), 0.1)
	if len(ref) < envelopeFrame || len(cand) < envelopeFrame {
		return m
	}

	maxLag := min(sampleRate/10, len(ref)-1, len(cand)-1)
	m.LagSamples = estimateLag(ref, cand, max(maxLag, 1))
	ref, cand = alignByLag(ref, cand, m.LagSamples)
	n := min(len(ref), len(cand), sampleRate*12)
	if n < envelopeFrame {
		return m
	}
	ref, cand = ref[:n], cand[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(ref, cand)

	refEnv := RMSEnvelope(ref, envelopeFrame, envelopeHop)
	candEnv := RMSEnvelope(cand, envelopeFrame, envelopeHop)
	m.EnvelopeRMSEDB = envelopeRMSEDB(refEnv, candEnv)

	hopSec := float64(envelopeHop) / float64(sampleRate)
	m.RefAttackS = attackTime(refEnv, hopSec)
	m.CandAttackS = attackTime(candEnv, hopSec)
	m.AttackDiffS = math.Abs(m.RefAttackS - m.CandAttackS)
	m.RefDecayDBPerS = decaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = decaySlopeDBPerS(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	refF, candF := toFloat32(ref), toFloat32(cand)
	m.SpectralRMSEDB = spectralRMSEDB(refF, candF, sampleRate)
	m.RefPeakHz = PeakFrequency(refF, sampleRate)
	m.CandPeakHz = PeakFrequency(candF, sampleRate)
	if m.RefPeakHz > 0 && m.CandPeakHz > 0 {
		m.PitchErrorCents = 1200 * math.Log2(m.CandPeakHz/m.RefPeakHz)
	}

	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	decNorm := clamp01(m.DecayDiffDBPerS / 40.0)
	atkNorm := clamp01(m.AttackDiffS / 0.5)
	m.Score = clamp01(0.2*timeNorm + 0.3*envNorm + 0.25*specNorm + 0.15*decNorm + 0.1*atkNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// EnvelopeDistanceDB is the RMS difference in dB between the RMS envelopes
// of two signals, without alignment or level normalisation. It is cheap
// enough to serve as an optimizer objective.
func EnvelopeDistanceDB(reference []float64, candidate []float64) float64 {
	return envelopeRMSEDB(
		RMSEnvelope(reference, envelopeFrame, envelopeHop),
		RMSEnvelope(candidate, envelopeFrame, envelopeHop),
	)
}

// RMSEnvelope returns frame RMS values every hop samples.
func RMSEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

func envelopeRMSEDB(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := linToDB(a[i]) - linToDB(b[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// attackTime is the time for the envelope to first reach 90% of its peak.
func attackTime(env []float64, hopSec float64) float64 {
	peak := 0.0
	for _, v := range env {
		peak = max(peak, v)
	}
	if peak <= 1e-12 {
		return 0
	}
	for i, v := range env {
		if v >= 0.9*peak {
			return float64(i) * hopSec
		}
	}
	return 0
}

func spectralRMSEDB(a []float32, b []float32, sampleRate int) float64 {
	n := min(len(a), len(b), 4096)
	if n < 512 {
		return 0
	}
	sa, errA := MagnitudeSpectrum(a[:n], sampleRate)
	sb, errB := MagnitudeSpectrum(b[:n], sampleRate)
	if errA != nil || errB != nil || len(sa.Mag) != len(sb.Mag) || len(sa.Mag) < 3 {
		return 0
	}
	bins := len(sa.Mag) - 1
	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(sa.Mag[k]) - linToDB(sb.Mag[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := range x {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	out := make([]float64, len(x))
	r := rms1(x)
	g := 1.0
	if r > 1e-12 {
		g = target / r
	}
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// estimateLag finds the shift of cand relative to ref that maximises their
// correlation within ±maxLag.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	step := 2
	if len(ref) > 200000 || len(cand) > 200000 {
		step = 4
	}
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		if s := dotAtLag(ref, cand, lag, step); s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a []float64, b []float64, lag int, step int) float64 {
	ai, bi := 0, 0
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := min(len(a)-ai, len(b)-bi)
	var sum float64
	for i := 0; i < n; i += step {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	if -lag >= len(cand) {
		return nil, nil
	}
	return ref, cand[-lag:]
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// decaySlopeDBPerS fits a line to the envelope in dB from its peak down to
// 60 dB below it.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := math.Inf(-1)
	peakIdx := 0
	for i, v := range env {
		if db := linToDB(v); db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < peak-60 {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func toFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
