package aggregate

import (
	"math"
	"sort"

	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/fit"

	"github.com/montanaflynn/stats"
)

// Aggregator reduces per-replicate records to per-condition statistics.
// It is a pure reduction over read-only inputs: NaN fields propagate into
// the summaries, and permuting the input order leaves the output unchanged.
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// SummarizeFits groups fit records by condition and reduces every numeric
// field to a sample mean/std pair. Output is sorted by condition name.
func (a *Aggregator) SummarizeFits(records []fit.Record) []fit.ConditionSummary {
	grouped := make(map[core.ConditionName][]fit.Record)
	for _, rec := range records {
		grouped[rec.Condition] = append(grouped[rec.Condition], rec)
	}

	names := make([]core.ConditionName, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	summaries := make([]fit.ConditionSummary, 0, len(names))
	for _, name := range names {
		recs := grouped[name]
		summaries = append(summaries, fit.ConditionSummary{
			Condition:       name,
			Replicates:      len(recs),
			BetaOrigin:      fieldStat(recs, func(r fit.Record) float64 { return r.BetaOrigin }),
			R2Origin:        fieldStat(recs, func(r fit.Record) float64 { return r.R2Origin }),
			Slope:           fieldStat(recs, func(r fit.Record) float64 { return r.Slope }),
			Intercept:       fieldStat(recs, func(r fit.Record) float64 { return r.Intercept }),
			R2:              fieldStat(recs, func(r fit.Record) float64 { return r.R2 }),
			E0:              fieldStat(recs, func(r fit.Record) float64 { return r.E0 }),
			BetaOriginDelta: fieldStat(recs, func(r fit.Record) float64 { return r.BetaOriginDelta }),
			R2OriginDelta:   fieldStat(recs, func(r fit.Record) float64 { return r.R2OriginDelta }),
		})
	}
	return summaries
}

// SummarizeCurves aggregates raw curve points per (condition, k) cell.
// Output is sorted by condition name, then k.
func (a *Aggregator) SummarizeCurves(points []curve.Point) []fit.CurveBinSummary {
	type cellKey struct {
		cond core.ConditionName
		k    int
	}
	grouped := make(map[cellKey][]curve.Point)
	for _, pt := range points {
		key := cellKey{cond: pt.Condition, k: pt.K}
		grouped[key] = append(grouped[key], pt)
	}

	keys := make([]cellKey, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cond != keys[j].cond {
			return keys[i].cond < keys[j].cond
		}
		return keys[i].k < keys[j].k
	})

	summaries := make([]fit.CurveBinSummary, 0, len(keys))
	for _, key := range keys {
		pts := grouped[key]
		cs := make([]float64, len(pts))
		es := make([]float64, len(pts))
		for i, pt := range pts {
			cs[i] = pt.C
			es[i] = pt.E
		}
		summaries = append(summaries, fit.CurveBinSummary{
			Condition: key.cond,
			K:         key.k,
			Theta:     pts[0].Theta,
			Theta2:    pts[0].Theta2,
			CMean:     sampleMean(cs),
			CStd:      sampleStd(cs),
			EMean:     sampleMean(es),
			EStd:      sampleStd(es),
			Rows:      len(pts),
		})
	}
	return summaries
}

func fieldStat(recs []fit.Record, get func(fit.Record) float64) fit.FieldStat {
	values := make([]float64, len(recs))
	for i, rec := range recs {
		values[i] = get(rec)
	}
	return fit.FieldStat{Mean: sampleMean(values), Std: sampleStd(values)}
}

func sampleMean(values []float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return mean
}

// sampleStd is the N-1 denominator standard deviation; fewer than two
// observations yield NaN, never an error.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	std, err := stats.StandardDeviationSample(values)
	if err != nil {
		return math.NaN()
	}
	return std
}
