package synth

import (
	"math"
	"math/rand"

	"rotlab/domain/core"
	"rotlab/domain/params"
	"rotlab/domain/signal"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Synthesizer generates coherent, palindromized, low-pass base sequences by
// spectral construction and rejection sampling. One synthesizer is built per
// run and reused across replicates; the FFT plans are allocated once.
type Synthesizer struct {
	p       params.Params
	halfFFT *fourier.FFT // length n/2, inverse transform of the half spectrum
	fullFFT *fourier.FFT // length n, forward transform for the lambda gate
	active  []int        // half-spectrum bin indices with 0 < f <= band
}

// NewSynthesizer builds a synthesizer for the given parameter set.
func NewSynthesizer(p params.Params) (*Synthesizer, error) {
	m := p.N / 2
	active := make([]int, 0, m/2)
	for k := 1; k <= m/2; k++ {
		if float64(k)/float64(m) <= p.Band {
			active = append(active, k)
		}
	}
	if len(active) == 0 {
		return nil, core.ErrBandTooSmall
	}
	return &Synthesizer{
		p:       p,
		halfFFT: fourier.NewFFT(m),
		fullFFT: fourier.NewFFT(p.N),
		active:  active,
	}, nil
}

// Generate produces one accepted sequence, drawing fresh spectra from rng
// until all three gates pass. The number of draws consumed is data-dependent;
// callers must not reorder calls between replicates. Fails with
// AcceptanceExhaustion once MaxAttempts candidates were rejected.
func (s *Synthesizer) Generate(rng *rand.Rand, replicate int) (signal.Sequence, signal.Diagnostics, error) {
	m := s.p.N / 2

	for attempt := 0; attempt < s.p.MaxAttempts; attempt++ {
		spec := make([]complex128, m/2+1)
		// Power ~ 1/f^p, so amplitude ~ 1/f^(p/2); the integer bin index
		// stands in for f.
		for _, k := range s.active {
			f := float64(k)
			amp := 1.0 / math.Pow(f, s.p.PSpectrum/2.0)
			phase := rng.Float64() * 2.0 * math.Pi
			spec[k] = complex(amp*math.Cos(phase), amp*math.Sin(phase))
		}

		// The Nyquist bin of a real spectrum must be purely real.
		if m%2 == 0 {
			spec[m/2] = complex(real(spec[m/2]), 0)
		}

		h := s.halfFFT.Sequence(nil, spec)
		x := signal.UnitRMS(signal.Mirror(h))

		diag := signal.Diagnostics{
			Lambda:          s.lowFreqRatio(x),
			Mean:            signal.Mean(x),
			SignChangesHalf: signal.SignChangesHalf(x),
		}
		if s.accept(diag) {
			return signal.Sequence(x), diag, nil
		}
	}

	return nil, signal.Diagnostics{}, core.NewAcceptanceExhaustedError(replicate, s.p.MaxAttempts)
}

// accept evaluates the three pre-registered gates on a normalized candidate.
func (s *Synthesizer) accept(d signal.Diagnostics) bool {
	if d.Lambda < s.p.LambdaThresh {
		return false
	}
	if math.Abs(d.Mean) > s.p.MeanAbsMax {
		return false
	}
	return d.SignChangesHalf >= s.p.SignChangesMin && d.SignChangesHalf <= s.p.SignChangesMax
}

// lowFreqRatio is the fraction of spectral power at frequencies <= band.
func (s *Synthesizer) lowFreqRatio(x []float64) float64 {
	coeffs := s.fullFFT.Coefficients(nil, x)
	var num, den float64
	for i, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		den += p
		if s.fullFFT.Freq(i) <= s.p.Band {
			num += p
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
