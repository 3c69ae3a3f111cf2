package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/algo-sampler/analysis"
	"github.com/cwbudde/algo-sampler/internal/render"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/wavio"
	"github.com/cwbudde/mayfly"
)

type optimizationConfig struct {
	engine       *sampler.Engine
	baseParams   *sampler.Params
	reference    []float64
	defs         []knobDef
	initial      candidate
	groups       map[string]bool
	note         int
	velocity     int
	releaseAfter float64
	seed         int64
	timeBudget   float64
	maxEvals     int
	reportEvery  int
	mayflyPop    int
	roundEvals   int
}

type optimizationResult struct {
	Best    candidate
	Score   float64
	Evals   int
	Rounds  int
	Elapsed time.Duration
}

// evaluate renders the candidate for the reference length and returns the
// envelope distance in dB.
func evaluate(cfg *optimizationConfig, c candidate) (float64, error) {
	e := cfg.engine
	e.SetParams(applyCandidate(cfg.baseParams, cfg.defs, c, cfg.groups))
	e.AllNotesOff()
	e.Process(1)

	opt := render.DefaultOptions()
	opt.Notes = []int{cfg.note}
	opt.Velocity = cfg.velocity
	opt.ReleaseAfter = cfg.releaseAfter
	opt.Duration = float64(len(cfg.reference)) / float64(e.SampleRate())
	stereo, err := render.Note(e, opt)
	if err != nil {
		return math.Inf(1), err
	}
	return analysis.EnvelopeDistanceDB(cfg.reference, wavio.StereoToMono64(stereo)), nil
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))

	best := cfg.initial
	bestScore, err := evaluate(cfg, best)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Initial score=%.3f dB\n", bestScore)

	evals := 1
	round := 0
	for evals < cfg.maxEvals && time.Now().Before(deadline) {
		round++
		budget := min(cfg.roundEvals, cfg.maxEvals-evals)
		mc := mayfly.NewDefaultConfig()
		mc.ProblemSize = len(cfg.defs)
		mc.LowerBound = 0
		mc.UpperBound = 1
		mc.NPop = cfg.mayflyPop
		mc.NPopF = cfg.mayflyPop
		mc.NC = 2 * cfg.mayflyPop
		mc.NM = max(1, int(math.Round(0.05*float64(cfg.mayflyPop))))
		mc.MaxIterations = max(1, budget/(2*cfg.mayflyPop))
		mc.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
		mc.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= cfg.maxEvals || time.Now().After(deadline) {
				return math.Inf(1)
			}
			evals++
			cand := fromNormalized(pos, cfg.defs)
			score, err := evaluate(cfg, cand)
			if err != nil {
				return math.Inf(1)
			}
			if score < bestScore {
				bestScore = score
				best = cand
			}
			if cfg.reportEvery > 0 && evals%cfg.reportEvery == 0 {
				fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.3f dB\n", evals, cfg.maxEvals, time.Since(start).Seconds(), bestScore)
			}
			return score
		}
		if _, err := runMayfly(mc); err != nil {
			fmt.Printf("mayfly round %d failed: %v\n", round, err)
			break
		}
	}

	return &optimizationResult{
		Best:    best,
		Score:   bestScore,
		Evals:   evals,
		Rounds:  round,
		Elapsed: time.Since(start),
	}, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
