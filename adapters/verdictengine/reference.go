package verdictengine

import (
	"encoding/json"
	"fmt"
	"os"

	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/verdict"
)

// LoadBaseline reads a reference baseline file keyed by condition name.
func LoadBaseline(path string) (verdict.Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference baseline: %w", err)
	}
	var baseline verdict.Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, core.NewConfigurationError("reference baseline", err.Error())
	}
	if _, ok := baseline.Clean(); !ok {
		return nil, core.NewMissingConditionError(core.ErrMissingReferenceCondition, curve.CoherentBinClean.String())
	}
	return baseline, nil
}

// FreezeBaseline snapshots a measured clean-condition summary into a
// baseline. Release managers run this once and commit the resulting file;
// later runs verify against it.
func FreezeBaseline(summaries []fit.ConditionSummary) (verdict.Baseline, error) {
	clean, err := findCondition(summaries, curve.CoherentBinClean)
	if err != nil {
		return nil, err
	}
	return verdict.Baseline{
		curve.CoherentBinClean: verdict.ReferenceEntry{
			R2Mean:         clean.R2.Mean,
			R2Std:          clean.R2.Std,
			BetaOriginMean: clean.BetaOrigin.Mean,
			R2OriginMean:   clean.R2Origin.Mean,
		},
	}, nil
}

// WriteBaseline writes a baseline file with stable formatting.
func WriteBaseline(path string, baseline verdict.Baseline) error {
	data, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
