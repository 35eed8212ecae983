package verdictengine

import (
	"math"

	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/params"
	"rotlab/domain/verdict"
)

// Engine combines reference-matching for the clean condition with the
// falsification guardrail that both negative controls must fail. Every
// criterion stays individually auditable in the returned details.
type Engine struct {
	tol params.Tolerances
}

// NewEngine creates a verdict engine with the given tolerance configuration
func NewEngine(tol params.Tolerances) *Engine {
	return &Engine{tol: tol}
}

// Evaluate produces the combined verdict for a run's fit summaries against
// the reference baseline. The overall verdict is the AND of all eight checks;
// a NaN measurement fails its check rather than erroring.
func (e *Engine) Evaluate(summaries []fit.ConditionSummary, baseline verdict.Baseline) (*verdict.Details, error) {
	clean, err := findCondition(summaries, curve.CoherentBinClean)
	if err != nil {
		return nil, err
	}
	random, err := findCondition(summaries, curve.RandomBin)
	if err != nil {
		return nil, err
	}
	palindrome, err := findCondition(summaries, curve.PalindromeBin)
	if err != nil {
		return nil, err
	}

	ref, ok := baseline.Clean()
	if !ok {
		return nil, core.NewMissingConditionError(core.ErrMissingReferenceCondition, curve.CoherentBinClean.String())
	}

	checks := []verdict.Check{
		// A) Reference-matching (verification)
		absoluteCheck("clean.R2_mean", clean.R2.Mean, ref.R2Mean, e.tol.R2MeanAbs),
		absoluteCheck("clean.R2_std", clean.R2.Std, ref.R2Std, e.tol.R2StdAbs),
		relativeCheck("clean.beta_origin_mean", clean.BetaOrigin.Mean, ref.BetaOriginMean, e.tol.BetaOriginMeanRel),
		absoluteCheck("clean.R2_origin_mean", clean.R2Origin.Mean, ref.R2OriginMean, e.tol.R2OriginMeanAbs),

		// B) Negative controls must fail (falsification guardrail)
		ceilingCheck("random.R2_mean_fail", random.R2.Mean, e.tol.NegControlR2MeanMax),
		ceilingCheck("random.R2_origin_mean_fail", random.R2Origin.Mean, e.tol.NegControlR2OriginMeanMax),
		ceilingCheck("palindrome.R2_mean_fail", palindrome.R2.Mean, e.tol.NegControlR2MeanMax),
		ceilingCheck("palindrome.R2_origin_mean_fail", palindrome.R2Origin.Mean, e.tol.NegControlR2OriginMeanMax),
	}

	status := verdict.StatusPass
	for _, c := range checks {
		if !c.OK {
			status = verdict.StatusFail
			break
		}
	}

	measured := map[core.ConditionName]fit.ConditionSummary{
		curve.CoherentBinClean: clean,
		curve.RandomBin:        random,
		curve.PalindromeBin:    palindrome,
	}

	return &verdict.Details{
		Verdict:    status,
		Checks:     checks,
		Tolerances: e.tol,
		Measured:   measured,
		Reference:  verdict.Baseline{curve.CoherentBinClean: ref},
	}, nil
}

func findCondition(summaries []fit.ConditionSummary, name core.ConditionName) (fit.ConditionSummary, error) {
	for _, s := range summaries {
		if s.Condition == name {
			return s, nil
		}
	}
	return fit.ConditionSummary{}, core.NewMissingConditionError(core.ErrMissingMeasuredCondition, name.String())
}

func absoluteCheck(name string, measured, reference, tol float64) verdict.Check {
	return verdict.Check{
		Name:      name,
		OK:        math.Abs(measured-reference) <= tol,
		Kind:      verdict.KindAbsolute,
		Measured:  measured,
		Reference: reference,
		Tolerance: tol,
	}
}

// relativeCheck degenerates to an absolute check against the tolerance value
// itself when the reference is exactly zero.
func relativeCheck(name string, measured, reference, tol float64) verdict.Check {
	var ok bool
	if reference == 0 {
		ok = math.Abs(measured) <= tol
	} else {
		ok = math.Abs(measured-reference)/math.Abs(reference) <= tol
	}
	return verdict.Check{
		Name:      name,
		OK:        ok,
		Kind:      verdict.KindRelative,
		Measured:  measured,
		Reference: reference,
		Tolerance: tol,
	}
}

func ceilingCheck(name string, measured, ceiling float64) verdict.Check {
	return verdict.Check{
		Name:      name,
		OK:        measured <= ceiling,
		Kind:      verdict.KindCeiling,
		Measured:  measured,
		Tolerance: ceiling,
	}
}
