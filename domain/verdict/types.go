package verdict

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"rotlab/domain/core"
	"rotlab/domain/fit"
	"rotlab/domain/params"
)

// Status is the verdict token for a run
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// CheckKind distinguishes how a check's tolerance is interpreted
type CheckKind string

const (
	// KindAbsolute passes when |measured - reference| <= tolerance
	KindAbsolute CheckKind = "absolute"
	// KindRelative passes when |measured - reference| / |reference| <= tolerance;
	// with a zero reference it degenerates to |measured| <= tolerance
	KindRelative CheckKind = "relative"
	// KindCeiling passes when measured <= tolerance (negative controls)
	KindCeiling CheckKind = "ceiling"
)

// Check is one named boolean criterion with the values that decided it
type Check struct {
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	Kind      CheckKind `json:"kind"`
	Measured  float64   `json:"measured"`
	Reference float64   `json:"reference,omitempty"`
	Tolerance float64   `json:"tolerance"`
}

// MarshalJSON renders NaN measurements as null so a degenerate fit still
// produces a parseable verdict file.
func (c Check) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, `{"name":%q,"ok":%t,"kind":%q,"measured":`, c.Name, c.OK, c.Kind)
	writeJSONFloat(&b, c.Measured)
	if c.Kind != KindCeiling {
		b.WriteString(`,"reference":`)
		writeJSONFloat(&b, c.Reference)
	}
	b.WriteString(`,"tolerance":`)
	writeJSONFloat(&b, c.Tolerance)
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

// ReferenceEntry is the expected clean-condition summary snapshot
type ReferenceEntry struct {
	R2Mean         float64 `json:"R2_mean"`
	R2Std          float64 `json:"R2_std"`
	BetaOriginMean float64 `json:"beta_origin_mean"`
	R2OriginMean   float64 `json:"R2_origin_mean"`
}

// Baseline is the externally supplied read-only reference, keyed by
// condition name. Only the clean condition is consulted.
type Baseline map[core.ConditionName]ReferenceEntry

// Clean returns the clean-condition entry, if present.
func (b Baseline) Clean() (ReferenceEntry, bool) {
	entry, ok := b[coreCleanCondition]
	return entry, ok
}

// coreCleanCondition is the condition the baseline must carry.
const coreCleanCondition = core.ConditionName("coherent_bin_clean")

// Details is the full auditable verdict record, immutable once computed
type Details struct {
	Verdict    Status                                      `json:"verdict"`
	Checks     []Check                                     `json:"checks"`
	Tolerances params.Tolerances                           `json:"tolerances"`
	Measured   map[core.ConditionName]fit.ConditionSummary `json:"measured"`
	Reference  Baseline                                    `json:"reference"`
}

// Passed reports whether the overall verdict is PASS
func (d Details) Passed() bool {
	return d.Verdict == StatusPass
}

// CheckByName retrieves a single itemized check for auditing.
func (d Details) CheckByName(name string) (Check, bool) {
	for _, c := range d.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}
