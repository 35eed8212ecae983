package signal

import (
	"math"
)

// Sequence is a real-valued series of length n. Accepted sequences are
// zero-mean, unit-RMS and palindromic by construction.
type Sequence []float64

// BinarySequence holds entries in {-1, +1}.
type BinarySequence []float64

// Diagnostics is the realized gate triple for an accepted sequence.
type Diagnostics struct {
	Lambda          float64 `json:"lambda"`            // low-frequency energy ratio
	Mean            float64 `json:"mean"`              // post-normalization mean
	SignChangesHalf int     `json:"sign_changes_half"` // sign changes in the first half
}

// Binarize maps a sequence to signs, with zero mapped to +1.
func Binarize(x Sequence) BinarySequence {
	xb := make(BinarySequence, len(x))
	for i, v := range x {
		if v >= 0 {
			xb[i] = 1.0
		} else {
			xb[i] = -1.0
		}
	}
	return xb
}

// UnitRMS returns a zero-mean copy of x scaled to unit root-mean-square
// energy. A zero-energy input is returned zero-mean but unscaled.
func UnitRMS(x []float64) []float64 {
	out := make([]float64, len(x))
	mean := Mean(x)
	var sq float64
	for i, v := range x {
		out[i] = v - mean
		sq += out[i] * out[i]
	}
	rms := math.Sqrt(sq / float64(len(x)))
	if rms == 0 {
		return out
	}
	for i := range out {
		out[i] /= rms
	}
	return out
}

// Mean returns the arithmetic mean of x.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// RMS returns the root-mean-square energy of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sq float64
	for _, v := range x {
		sq += v * v
	}
	return math.Sqrt(sq / float64(len(x)))
}

// SignChangesHalf counts sign transitions within the first half of x,
// treating zero as positive.
func SignChangesHalf(x []float64) int {
	half := x[:len(x)/2]
	changes := 0
	for i := 1; i < len(half); i++ {
		if signOf(half[i]) != signOf(half[i-1]) {
			changes++
		}
	}
	return changes
}

func signOf(v float64) float64 {
	if v >= 0 {
		return 1.0
	}
	return -1.0
}

// IsPalindromic reports whether the first half of x mirrored equals the
// second half within tol.
func IsPalindromic(x []float64, tol float64) bool {
	n := len(x)
	for i := 0; i < n/2; i++ {
		if math.Abs(x[i]-x[n-1-i]) > tol {
			return false
		}
	}
	return true
}

// Mirror concatenates half with its reverse into a palindrome of twice the
// length.
func Mirror(half []float64) []float64 {
	n := len(half)
	out := make([]float64, 2*n)
	copy(out, half)
	for i := 0; i < n; i++ {
		out[2*n-1-i] = half[i]
	}
	return out
}

// Rotate cyclically shifts x left by k positions: out[i] = x[(i+k) mod n].
// Negative k rotates right.
func Rotate(x []float64, k int) []float64 {
	n := len(x)
	out := make([]float64, n)
	k = ((k % n) + n) % n
	for i := 0; i < n; i++ {
		out[i] = x[(i+k)%n]
	}
	return out
}

// CorrMean is the mean pointwise product between two equal-length series.
func CorrMean(ref, other []float64) float64 {
	var sum float64
	for i := range ref {
		sum += ref[i] * other[i]
	}
	return sum / float64(len(ref))
}
