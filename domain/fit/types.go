package fit

import (
	"bytes"
	"math"
	"strconv"

	"rotlab/domain/core"
)

// Record holds the per-replicate regression results for one condition.
// Records are constructed once by the fitter and never mutated; undefined
// quantities (degenerate fits) are carried as NaN, not errors.
type Record struct {
	Condition core.ConditionName `json:"condition"`
	Replicate int                `json:"replicate"`

	BetaOrigin float64 `json:"beta_origin"` // slope of E = beta * theta^2
	R2Origin   float64 `json:"r2_origin"`

	Slope     float64 `json:"slope"` // OLS E = intercept + slope * theta^2
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`

	E0 float64 `json:"E0"` // curve value at k = 0

	BetaOriginDelta float64 `json:"beta_origin_delta"` // origin fit of E - E0 over k > 0
	R2OriginDelta   float64 `json:"r2_origin_delta"`
}

// FieldStat is a sample mean/std pair aggregated across replicates.
// Std uses the N-1 denominator and is NaN below two replicates.
type FieldStat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// MarshalJSON renders NaN statistics as null; undefined values are data,
// not encoding failures.
func (s FieldStat) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"mean":`)
	writeJSONFloat(&b, s.Mean)
	b.WriteString(`,"std":`)
	writeJSONFloat(&b, s.Std)
	b.WriteString(`}`)
	return b.Bytes(), nil
}

func writeJSONFloat(b *bytes.Buffer, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		b.WriteString("null")
		return
	}
	b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

// ConditionSummary reduces all Records of one condition.
type ConditionSummary struct {
	Condition  core.ConditionName `json:"condition"`
	Replicates int                `json:"replicates"`

	BetaOrigin      FieldStat `json:"beta_origin"`
	R2Origin        FieldStat `json:"r2_origin"`
	Slope           FieldStat `json:"slope"`
	Intercept       FieldStat `json:"intercept"`
	R2              FieldStat `json:"r2"`
	E0              FieldStat `json:"E0"`
	BetaOriginDelta FieldStat `json:"beta_origin_delta"`
	R2OriginDelta   FieldStat `json:"r2_origin_delta"`
}

// CurveBinSummary aggregates raw curve points for one (condition, k) cell.
type CurveBinSummary struct {
	Condition core.ConditionName `json:"condition"`
	K         int                `json:"k"`
	Theta     float64            `json:"theta"`
	Theta2    float64            `json:"theta2"`
	CMean     float64            `json:"C_mean"`
	CStd      float64            `json:"C_std"`
	EMean     float64            `json:"E_mean"`
	EStd      float64            `json:"E_std"`
	Rows      int                `json:"n_rows"`
}

// CoherenceRow records the realized gate diagnostics for one replicate's
// accepted base sequence.
type CoherenceRow struct {
	Replicate       int     `json:"replicate"`
	Lambda          float64 `json:"lambda"`
	Mean            float64 `json:"mean"`
	SignChangesHalf int     `json:"sign_changes_half"`
}
