package params

import (
	"testing"

	"rotlab/domain/core"
)

func TestCanonical_Validates(t *testing.T) {
	p := Canonical()
	if err := p.Validate(); err != nil {
		t.Fatalf("canonical params should validate, got %v", err)
	}
	if p.N != 512 || p.Replicates != 120 || p.Seed != 42 {
		t.Errorf("unexpected canonical core values: n=%d replicates=%d seed=%d", p.N, p.Replicates, p.Seed)
	}
	if len(p.NoiseSigmas) != 3 || len(p.BitflipPs) != 4 {
		t.Errorf("unexpected corruption levels: %v / %v", p.NoiseSigmas, p.BitflipPs)
	}
}

func TestValidate_RejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "odd n", mutate: func(p *Params) { p.N = 511 }},
		{name: "zero n", mutate: func(p *Params) { p.N = 0 }},
		{name: "zero replicates", mutate: func(p *Params) { p.Replicates = 0 }},
		{name: "band above half", mutate: func(p *Params) { p.Band = 0.6 }},
		{name: "negative band", mutate: func(p *Params) { p.Band = -0.1 }},
		{name: "lambda above one", mutate: func(p *Params) { p.LambdaThresh = 1.5 }},
		{name: "negative mean bound", mutate: func(p *Params) { p.MeanAbsMax = -0.1 }},
		{name: "sign changes max below min", mutate: func(p *Params) { p.SignChangesMax = 1 }},
		{name: "zero spectrum exponent", mutate: func(p *Params) { p.PSpectrum = 0 }},
		{name: "zero attempts", mutate: func(p *Params) { p.MaxAttempts = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Canonical()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_BandWithNoActiveBins(t *testing.T) {
	p := Canonical()
	p.N = 16
	p.Band = 0.05 // 0.05 * 8 < 1: no usable spectral bin

	err := p.Validate()
	if err != core.ErrBandTooSmall {
		t.Errorf("expected ErrBandTooSmall, got %v", err)
	}
}

func TestHash_Deterministic(t *testing.T) {
	a := Canonical().Hash()
	b := Canonical().Hash()
	if a != b {
		t.Errorf("identical params hashed differently: %s vs %s", a, b)
	}

	p := Canonical()
	p.Seed = 43
	if p.Hash() == a {
		t.Error("seed change did not change the params hash")
	}
}
