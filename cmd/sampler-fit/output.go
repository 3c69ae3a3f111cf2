package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-sampler/preset"
)

// fittedFile extends the preset schema with a fit summary that the preset
// loader ignores.
type fittedFile struct {
	preset.File
	FitScoreDB float64 `json:"fit_score_db"`
	FitEvals   int     `json:"fit_evals"`
}

// buildPreset carries the fitted knobs as identifier-keyed params. The
// instrument and IR paths are made relative to the output directory when
// possible.
func buildPreset(outPath string, base *preset.Preset, defs []knobDef, result *optimizationResult, groups map[string]bool) fittedFile {
	f := fittedFile{FitScoreDB: result.Score, FitEvals: result.Evals}
	f.Params = make(map[string]float64, len(defs))
	for i, d := range defs {
		f.Params[d.Name] = result.Best.Vals[i]
	}
	if groups["filter"] {
		enable := true
		f.Filter = &preset.FilterSetting{Enable: &enable}
	}
	outDir := filepath.Dir(outPath)
	f.Instrument = relTo(outDir, base.Instrument)
	f.IRWavPath = relTo(outDir, base.IRWavPath)
	return f
}

func writePreset(outPath string, base *preset.Preset, defs []knobDef, result *optimizationResult, groups map[string]bool) error {
	f := buildPreset(outPath, base, defs, result, groups)
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, append(b, '\n'), 0o644)
}

func relTo(dir, path string) string {
	if path == "" {
		return ""
	}
	absDir, err1 := filepath.Abs(dir)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return path
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return absPath
	}
	return rel
}
