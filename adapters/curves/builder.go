package curves

import (
	"fmt"
	"math/rand"

	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/signal"
)

// Builder computes rotation-correlation curves over the fixed grid. All
// computations leave their inputs untouched; randomness for corruptions and
// negative controls comes only from the stream handed in per call.
type Builder struct {
	n    int
	grid curve.Grid
}

// NewBuilder creates a curve builder for sequences of length n
func NewBuilder(n int) *Builder {
	return &Builder{n: n, grid: curve.NewGrid(n)}
}

// Grid exposes the rotation grid in probe order
func (b *Builder) Grid() curve.Grid {
	return b.grid
}

// Build computes the full curve for one condition of one replicate,
// dispatching on the condition kind.
func (b *Builder) Build(cond curve.Condition, replicate int, x signal.Sequence, xb signal.BinarySequence, rng *rand.Rand) ([]curve.Point, error) {
	switch cond.Kind {
	case curve.KindIdentityReal:
		return b.identity(cond.Name, replicate, x), nil
	case curve.KindAdditiveNoise:
		return b.noise(cond.Name, replicate, x, cond.Level, rng), nil
	case curve.KindIdentityBin:
		return b.identity(cond.Name, replicate, xb), nil
	case curve.KindBitflip:
		return b.bitflip(cond.Name, replicate, xb, cond.Level, rng), nil
	case curve.KindRandomControl:
		return b.identity(cond.Name, replicate, b.drawRandomBin(rng)), nil
	case curve.KindMirrorControl:
		return b.identity(cond.Name, replicate, b.drawMirrorBin(rng)), nil
	default:
		return nil, fmt.Errorf("%w: %q (kind %q)", core.ErrUnknownCondition, cond.Name, cond.Kind)
	}
}

// identity correlates a sequence against its own rotations
func (b *Builder) identity(name core.ConditionName, replicate int, x []float64) []curve.Point {
	points := make([]curve.Point, 0, len(b.grid.Small)+len(b.grid.Out))
	for _, k := range b.grid.All() {
		xk := signal.Rotate(x, k)
		c := signal.CorrMean(x, xk)
		points = append(points, curve.NewPoint(name, replicate, b.n, k, c))
	}
	return points
}

// noise perturbs each rotation with i.i.d. Gaussian noise and re-normalizes
// to unit RMS before correlating. The re-normalization makes E at k=0
// strictly positive, which downstream fitting treats as a nonzero baseline.
func (b *Builder) noise(name core.ConditionName, replicate int, x signal.Sequence, sigma float64, rng *rand.Rand) []curve.Point {
	points := make([]curve.Point, 0, len(b.grid.Small)+len(b.grid.Out))
	for _, k := range b.grid.All() {
		xk := signal.Rotate(x, k)
		for i := range xk {
			xk[i] += rng.NormFloat64() * sigma
		}
		xk = signal.UnitRMS(xk)
		c := signal.CorrMean(x, xk)
		points = append(points, curve.NewPoint(name, replicate, b.n, k, c))
	}
	return points
}

// bitflip independently flips each rotated sign with the stated probability
func (b *Builder) bitflip(name core.ConditionName, replicate int, xb signal.BinarySequence, p float64, rng *rand.Rand) []curve.Point {
	points := make([]curve.Point, 0, len(b.grid.Small)+len(b.grid.Out))
	for _, k := range b.grid.All() {
		xk := signal.Rotate(xb, k)
		for i := range xk {
			if rng.Float64() < p {
				xk[i] = -xk[i]
			}
		}
		c := signal.CorrMean(xb, xk)
		points = append(points, curve.NewPoint(name, replicate, b.n, k, c))
	}
	return points
}

// drawRandomBin draws a fresh i.i.d. +-1 sequence of length n
func (b *Builder) drawRandomBin(rng *rand.Rand) signal.BinarySequence {
	xrand := make(signal.BinarySequence, b.n)
	for i := range xrand {
		if rng.Float64() < 0.5 {
			xrand[i] = -1.0
		} else {
			xrand[i] = 1.0
		}
	}
	return xrand
}

// drawMirrorBin draws a fresh i.i.d. +-1 half and mirrors it: palindromic
// by construction but with no spectral coherence.
func (b *Builder) drawMirrorBin(rng *rand.Rand) signal.BinarySequence {
	half := make([]float64, b.n/2)
	for i := range half {
		if rng.Float64() < 0.5 {
			half[i] = -1.0
		} else {
			half[i] = 1.0
		}
	}
	return signal.BinarySequence(signal.Mirror(half))
}
