package curve

import (
	"fmt"
	"math"

	"rotlab/domain/core"
)

// Condition names. Levelled conditions are formatted through their
// constructors so the names written to tables are stable.
const (
	CoherentSoft     core.ConditionName = "coherent_soft"
	CoherentBinClean core.ConditionName = "coherent_bin_clean"
	RandomBin        core.ConditionName = "random_bin"
	PalindromeBin    core.ConditionName = "palindrome_bin_no_coherence"
)

// ConditionKind classifies how a condition transforms the base sequence.
type ConditionKind string

const (
	KindIdentityReal  ConditionKind = "identity_real"
	KindAdditiveNoise ConditionKind = "additive_noise"
	KindIdentityBin   ConditionKind = "identity_bin"
	KindBitflip       ConditionKind = "bitflip"
	KindRandomControl ConditionKind = "random_control"
	KindMirrorControl ConditionKind = "mirror_control"
)

// Condition is a named, stateless transformation applied to a base sequence
// or its binarization, parameterized by a level value where applicable.
type Condition struct {
	Name  core.ConditionName `json:"condition"`
	Kind  ConditionKind      `json:"kind"`
	Level float64            `json:"level,omitempty"` // sigma or flip probability
}

// NoiseCondition names an additive-noise condition at the given sigma.
func NoiseCondition(sigma float64) Condition {
	return Condition{
		Name:  core.ConditionName(fmt.Sprintf("coherent_soft_noise_sigma%.2f", sigma)),
		Kind:  KindAdditiveNoise,
		Level: sigma,
	}
}

// BitflipCondition names a bit-flip corruption condition at the given
// flip probability.
func BitflipCondition(p float64) Condition {
	return Condition{
		Name:  core.ConditionName(fmt.Sprintf("coherent_bin_bitflip_p%.2f", p)),
		Kind:  KindBitflip,
		Level: p,
	}
}

// Roster returns the full condition family in engine order. The order is
// load-bearing: it fixes the sequence of draws taken from the shared RNG
// stream within each replicate.
func Roster(noiseSigmas, bitflipPs []float64) []Condition {
	conds := []Condition{{Name: CoherentSoft, Kind: KindIdentityReal}}
	for _, sigma := range noiseSigmas {
		conds = append(conds, NoiseCondition(sigma))
	}
	conds = append(conds, Condition{Name: CoherentBinClean, Kind: KindIdentityBin})
	for _, p := range bitflipPs {
		conds = append(conds, BitflipCondition(p))
	}
	conds = append(conds,
		Condition{Name: RandomBin, Kind: KindRandomControl},
		Condition{Name: PalindromeBin, Kind: KindMirrorControl},
	)
	return conds
}

// Point is one rotation-curve sample for a (condition, replicate) pair.
type Point struct {
	Condition core.ConditionName `json:"condition"`
	Replicate int                `json:"replicate"`
	N         int                `json:"n"`
	K         int                `json:"k"`
	Theta     float64            `json:"theta"`
	Theta2    float64            `json:"theta2"`
	C         float64            `json:"C"` // mean pointwise correlation
	E         float64            `json:"E"` // decoherence proxy, 2 - 2C
}

// NewPoint derives theta and energy from k, n and the measured correlation.
func NewPoint(cond core.ConditionName, replicate, n, k int, c float64) Point {
	theta := 2.0 * math.Pi * float64(k) / float64(n)
	return Point{
		Condition: cond,
		Replicate: replicate,
		N:         n,
		K:         k,
		Theta:     theta,
		Theta2:    theta * theta,
		C:         c,
		E:         2.0 - 2.0*c,
	}
}

// Grid is the fixed family of rotation offsets probed per condition.
type Grid struct {
	Small []int // small-angle subgrid, k <= n/16
	Out   []int // out-of-regime probes
}

// NewGrid builds the canonical grid for a sequence of length n: the dense
// small-angle subgrid plus the single out-of-regime point n/8.
func NewGrid(n int) Grid {
	return Grid{
		Small: []int{0, 1, 2, 3, 4, 5, 6, 8, 10, 12, 16, 20, 24, 28, 32},
		Out:   []int{n / 8},
	}
}

// All returns the full rotation grid in probe order.
func (g Grid) All() []int {
	all := make([]int, 0, len(g.Small)+len(g.Out))
	all = append(all, g.Small...)
	all = append(all, g.Out...)
	return all
}

// IsSmall reports whether k belongs to the small-angle subgrid.
func (g Grid) IsSmall(k int) bool {
	for _, s := range g.Small {
		if s == k {
			return true
		}
	}
	return false
}
