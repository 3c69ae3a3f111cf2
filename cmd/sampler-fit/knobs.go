package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-sampler/sampler"
)

type knobDef struct {
	Name string
	ID   sampler.ParamID
	Min  float64
	Max  float64
	Log  bool
}

type candidate struct {
	Vals []float64
}

var knobGroups = map[string][]knobDef{
	"amp": {
		{Name: "attackDuration", ID: sampler.ParamAttackDuration, Min: 0.0005, Max: 2, Log: true},
		{Name: "holdDuration", ID: sampler.ParamHoldDuration, Min: 0, Max: 1},
		{Name: "decayDuration", ID: sampler.ParamDecayDuration, Min: 0.005, Max: 8, Log: true},
		{Name: "sustainLevel", ID: sampler.ParamSustainLevel, Min: 0, Max: 1},
		{Name: "releaseDuration", ID: sampler.ParamReleaseDuration, Min: 0.005, Max: 8, Log: true},
	},
	"gain": {
		{Name: "overallGain", ID: sampler.ParamOverallGain, Min: -40, Max: 12},
	},
	"filter": {
		{Name: "filterCutoff", ID: sampler.ParamFilterCutoff, Min: 40, Max: 18000, Log: true},
		{Name: "filterResonance", ID: sampler.ParamFilterResonance, Min: 0, Max: 12},
	},
}

// parseOptimizeGroups parses a comma-separated list of knob groups.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := knobGroups[s]; !ok {
			return nil, fmt.Errorf("unknown optimize group %q (valid: amp, gain, filter)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

// initCandidate collects the active knobs in a fixed group order and seeds
// them from base.
func initCandidate(base *sampler.Params, groups map[string]bool) ([]knobDef, candidate) {
	var defs []knobDef
	var vals []float64
	for _, g := range []string{"amp", "gain", "filter"} {
		if !groups[g] {
			continue
		}
		for _, d := range knobGroups[g] {
			v, _ := base.Get(d.ID)
			defs = append(defs, d)
			vals = append(vals, clamp(v, d.Min, d.Max))
		}
	}
	return defs, candidate{Vals: vals}
}

// fromNormalized maps optimizer coordinates in [0,1] to knob values.
func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		u := clamp(pos[i], 0, 1)
		if d.Log {
			vals[i] = d.Min * math.Pow(d.Max/d.Min, u)
		} else {
			vals[i] = d.Min + u*(d.Max-d.Min)
		}
	}
	return candidate{Vals: vals}
}

// applyCandidate writes knob values into a copy of base.
func applyCandidate(base *sampler.Params, defs []knobDef, c candidate, groups map[string]bool) *sampler.Params {
	p := base.Clone()
	for i, d := range defs {
		p.Set(d.ID, c.Vals[i])
	}
	if groups["filter"] {
		p.FilterEnable = true
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
