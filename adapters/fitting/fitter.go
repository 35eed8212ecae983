package fitting

import (
	"math"

	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/fit"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fitter produces one fit.Record per (condition, replicate) from that
// replicate's curve restricted to the small-angle subgrid. Degenerate
// regressions yield NaN fields, never errors.
type Fitter struct {
	grid curve.Grid
}

// NewFitter creates a replicate fitter over the given rotation grid
func NewFitter(grid curve.Grid) *Fitter {
	return &Fitter{grid: grid}
}

// FitReplicate fits the three models to one replicate's points. Points
// outside the small-angle subgrid are ignored; the k=0 point supplies E0.
func (f *Fitter) FitReplicate(cond core.ConditionName, replicate int, points []curve.Point) fit.Record {
	var xs, ys []float64
	var xsPos, ysPos []float64
	e0 := math.NaN()

	for _, pt := range points {
		if !f.grid.IsSmall(pt.K) {
			continue
		}
		xs = append(xs, pt.Theta2)
		ys = append(ys, pt.E)
		if pt.K == 0 {
			e0 = pt.E
		} else {
			xsPos = append(xsPos, pt.Theta2)
			ysPos = append(ysPos, pt.E)
		}
	}

	betaOrigin, r2Origin := FitThroughOrigin(xs, ys)
	slope, intercept, r2 := FitWithIntercept(xs, ys)

	// Baseline-corrected origin fit over k > 0 with E0 subtracted.
	ysDelta := make([]float64, len(ysPos))
	for i, y := range ysPos {
		ysDelta[i] = y - e0
	}
	betaDelta, r2Delta := FitThroughOrigin(xsPos, ysDelta)

	return fit.Record{
		Condition:       cond,
		Replicate:       replicate,
		BetaOrigin:      betaOrigin,
		R2Origin:        r2Origin,
		Slope:           slope,
		Intercept:       intercept,
		R2:              r2,
		E0:              e0,
		BetaOriginDelta: betaDelta,
		R2OriginDelta:   r2Delta,
	}
}

// FitThroughOrigin fits y = beta*x with no intercept term. The reported R2
// keeps the mean-based total sum of squares even though the model has no
// intercept; this matches the pre-registered acceptance region and must not
// be "corrected" to the sum-of-y-squares convention.
func FitThroughOrigin(x, y []float64) (beta, r2 float64) {
	denom := floats.Dot(x, x)
	if denom == 0 {
		beta = math.NaN()
	} else {
		beta = floats.Dot(x, y) / denom
	}
	yhat := make([]float64, len(x))
	for i, xv := range x {
		yhat[i] = beta * xv
	}
	return beta, R2Score(y, yhat)
}

// FitWithIntercept is ordinary least squares y = a + b*x.
func FitWithIntercept(x, y []float64) (slope, intercept, r2 float64) {
	if len(x) < 2 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	yhat := make([]float64, len(x))
	for i, xv := range x {
		yhat[i] = intercept + slope*xv
	}
	return slope, intercept, R2Score(y, yhat)
}

// R2Score is the coefficient of determination 1 - SS_res/SS_tot with SS_tot
// taken about the sample mean of y. A constant target gives NaN.
func R2Score(y, yhat []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		r := y[i] - yhat[i]
		ssRes += r * r
		d := y[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1.0 - ssRes/ssTot
}
