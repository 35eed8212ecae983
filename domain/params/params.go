package params

import (
	"encoding/json"

	"rotlab/domain/core"
)

// Params is the immutable configuration for one experiment run.
// All fields are fixed before the pipeline starts and never mutated.
type Params struct {
	N              int     `json:"n"`                // sequence length, must be even
	Replicates     int     `json:"replicates"`       // independent base sequences per run
	Seed           int64   `json:"seed"`             // shared RNG stream seed
	Band           float64 `json:"band"`             // normalized low-pass cutoff
	LambdaThresh   float64 `json:"lambda_threshold"` // minimum low-frequency energy ratio
	MeanAbsMax     float64 `json:"mean_abs_max"`     // maximum |mean| of an accepted sequence
	SignChangesMin int     `json:"sign_changes_min"` // minimum sign changes in the first half
	SignChangesMax int     `json:"sign_changes_max"` // maximum sign changes in the first half
	PSpectrum      float64 `json:"p_spectrum"`       // spectral exponent; power ~ 1/f^p
	MaxAttempts    int     `json:"max_attempts"`     // rejection-sampling bound per replicate

	NoiseSigmas []float64 `json:"noise_sigmas"` // additive-noise condition levels
	BitflipPs   []float64 `json:"bitflip_ps"`   // bit-flip corruption condition levels
}

// Canonical returns the pre-registered parameter set.
func Canonical() Params {
	return Params{
		N:              512,
		Replicates:     120,
		Seed:           42,
		Band:           0.08,
		LambdaThresh:   0.75,
		MeanAbsMax:     0.10,
		SignChangesMin: 2,
		SignChangesMax: 200,
		PSpectrum:      2.70,
		MaxAttempts:    10000,
		NoiseSigmas:    []float64{0.05, 0.10, 0.30},
		BitflipPs:      []float64{0.01, 0.02, 0.05, 0.10},
	}
}

// Validate checks the parameter set before a run starts.
func (p Params) Validate() error {
	if p.N <= 0 || p.N%2 != 0 {
		return core.NewConfigurationError("n", "must be a positive even integer")
	}
	if p.Replicates <= 0 {
		return core.NewConfigurationError("replicates", "must be positive")
	}
	if p.Band <= 0 || p.Band > 0.5 {
		return core.NewConfigurationError("band", "must be in (0, 0.5]")
	}
	if p.LambdaThresh < 0 || p.LambdaThresh > 1 {
		return core.NewConfigurationError("lambda_threshold", "must be in [0, 1]")
	}
	if p.MeanAbsMax < 0 {
		return core.NewConfigurationError("mean_abs_max", "must be non-negative")
	}
	if p.SignChangesMin < 0 || p.SignChangesMax < p.SignChangesMin {
		return core.NewConfigurationError("sign_changes", "need 0 <= min <= max")
	}
	if p.PSpectrum <= 0 {
		return core.NewConfigurationError("p_spectrum", "must be positive")
	}
	if p.MaxAttempts <= 0 {
		return core.NewConfigurationError("max_attempts", "must be positive")
	}
	// The half-length spectrum must contain at least one active bin.
	if int(p.Band*float64(p.N/2)) < 1 {
		return core.ErrBandTooSmall
	}
	return nil
}

// Hash fingerprints the parameter set for run manifests.
func (p Params) Hash() core.ParamsHash {
	data, _ := json.Marshal(p)
	return core.NewParamsHash(data)
}

// Tolerances configures the verdict's reference-matching bands and the
// negative-control suspicion ceilings. Conservative, student-proof values.
type Tolerances struct {
	R2MeanAbs         float64 `json:"R2_mean_abs"`          // absolute
	R2StdAbs          float64 `json:"R2_std_abs"`           // absolute
	BetaOriginMeanRel float64 `json:"beta_origin_mean_rel"` // relative
	R2OriginMeanAbs   float64 `json:"R2_origin_mean_abs"`   // absolute; origin fits are noisier

	NegControlR2MeanMax       float64 `json:"R2_mean_max"`        // control above this is suspiciously good
	NegControlR2OriginMeanMax float64 `json:"R2_origin_mean_max"`
}

// DefaultTolerances returns the pre-registered tolerance configuration.
func DefaultTolerances() Tolerances {
	return Tolerances{
		R2MeanAbs:                 0.05,
		R2StdAbs:                  0.03,
		BetaOriginMeanRel:         0.12,
		R2OriginMeanAbs:           0.20,
		NegControlR2MeanMax:       0.20,
		NegControlR2OriginMeanMax: 0.20,
	}
}
