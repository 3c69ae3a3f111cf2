package sampler

import (
	"math"
	"testing"
)

func TestDefaultParamsMatchDescriptors(t *testing.T) {
	p := NewDefaultParams()
	for _, d := range Descriptors() {
		got, ok := p.Get(d.ID)
		if !ok {
			t.Fatalf("%s: no getter", d.Identifier)
		}
		if math.Abs(got-d.Default) > 1e-6 {
			t.Fatalf("%s: default %f, descriptor says %f", d.Identifier, got, d.Default)
		}
		if d.Default < d.Min || d.Default > d.Max {
			t.Fatalf("%s: default outside range", d.Identifier)
		}
	}
	if p.MasterVolume != 1 || p.SustainLevel != 1 || p.FilterCutoff != 1000 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if !p.FilterEnvelopeCoupling.ReleaseOnNoteOff || p.FilterEnvelopeCoupling.RetriggerOnLegato {
		t.Fatalf("unexpected coupling default: %+v", p.FilterEnvelopeCoupling)
	}
}

func TestDescriptorTableIsIndexedByID(t *testing.T) {
	seen := map[string]bool{}
	for i, d := range Descriptors() {
		if int(d.ID) != i {
			t.Fatalf("descriptor %s at index %d has id %d", d.Identifier, i, d.ID)
		}
		if seen[d.Identifier] {
			t.Fatalf("duplicate identifier %s", d.Identifier)
		}
		seen[d.Identifier] = true
		if got, ok := LookupParam(d.Identifier); !ok || got.ID != d.ID {
			t.Fatalf("lookup %s failed", d.Identifier)
		}
	}
}

func TestClampForcesRanges(t *testing.T) {
	p := NewDefaultParams()
	p.OverallGainDB = 40
	p.Pan = -3
	p.LFORate = 0
	p.AttackDuration = -1
	p.PitchEnvelopeSemitones = 99
	p.Clamp()
	if p.OverallGainDB != 12 || p.Pan != -1 || p.LFORate != 0.1 || p.AttackDuration != 0 || p.PitchEnvelopeSemitones != 12 {
		t.Fatalf("clamp failed: %+v", p)
	}
}

func TestSetBooleanParameters(t *testing.T) {
	p := NewDefaultParams()
	p.Set(ParamMonophonic, 1)
	p.Set(ParamLegato, 0.7)
	p.Set(ParamFilterEnvelopeLegatoRetrigger, 1)
	if !p.IsMonophonic || !p.IsLegato || !p.FilterEnvelopeCoupling.RetriggerOnLegato {
		t.Fatalf("boolean parameters not set: %+v", p)
	}
	p.Set(ParamMonophonic, 0.2)
	if p.IsMonophonic {
		t.Fatalf("0.2 should read as off")
	}
}

func TestSetParamsIsCopyOnWrite(t *testing.T) {
	e := NewEngine(testSampleRate, 4, nil)
	before := e.params.Load()
	p := e.Params()
	p.MasterVolume = 5
	e.SetParams(p)
	if before.MasterVolume != 1 {
		t.Fatalf("published snapshot was mutated")
	}
	if got := e.params.Load(); got == before || got.MasterVolume != 1 {
		t.Fatalf("expected new clamped snapshot, got %+v", got)
	}
	if p.MasterVolume != 5 {
		t.Fatalf("caller's params should not be clamped in place")
	}
}
