package ports

import (
	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/verdict"
)

// PackWriter writes the artifact pack for one run. Implementations must be
// byte-stable for identical inputs; the integrity checker hashes what they
// produce.
type PackWriter interface {
	WriteRawCurves(points []curve.Point) error
	WriteCoherenceMetrics(rows []fit.CoherenceRow) error
	WriteFitRecords(records []fit.Record) error
	WriteCurveSummaries(summaries []fit.CurveBinSummary) error
	WriteFitSummaries(summaries []fit.ConditionSummary) error
	WriteVerdict(details verdict.Details) error
}
