package app

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"rotlab/adapters/aggregate"
	"rotlab/adapters/curves"
	"rotlab/adapters/fitting"
	"rotlab/adapters/synth"
	"rotlab/domain/core"
	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/params"
	"rotlab/domain/signal"
	"rotlab/internal/errors"
	"rotlab/internal/logging"
	"rotlab/ports"

	"golang.org/x/sync/errgroup"
)

// ExecutionMode selects how replicates consume randomness.
type ExecutionMode string

const (
	// ModeSequential runs replicates in order against the single shared
	// stream; this reproduces the canonical draw order.
	ModeSequential ExecutionMode = "sequential"
	// ModeParallel runs replicates concurrently, each on its own
	// seed-derived sub-stream. Outputs are deterministic for a fixed seed
	// but differ from sequential-mode outputs by construction.
	ModeParallel ExecutionMode = "parallel"
)

// ExperimentResult is the complete in-memory output of one run.
type ExperimentResult struct {
	Params         params.Params
	Mode           ExecutionMode
	RawPoints      []curve.Point
	Coherence      []fit.CoherenceRow
	FitRecords     []fit.Record
	CurveSummaries []fit.CurveBinSummary
	FitSummaries   []fit.ConditionSummary
}

// ExperimentService runs the synthesis -> curves -> fits -> summaries
// pipeline. The service owns no randomness itself; it draws everything from
// the RNG port so runs are reproducible from the seed alone.
type ExperimentService struct {
	params  params.Params
	rng     ports.RNGPort
	builder *curves.Builder
	fitter  *fitting.Fitter
	agg     *aggregate.Aggregator
	logger  *logging.Logger
	workers int
}

// NewExperimentService wires the pipeline for one parameter set.
func NewExperimentService(p params.Params, rngPort ports.RNGPort, logger *logging.Logger) (*ExperimentService, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	builder := curves.NewBuilder(p.N)
	return &ExperimentService{
		params:  p,
		rng:     rngPort,
		builder: builder,
		fitter:  fitting.NewFitter(builder.Grid()),
		agg:     aggregate.NewAggregator(),
		logger:  logger,
		workers: 1,
	}, nil
}

// SetWorkers enables parallel replicate generation with the given worker
// count. Anything below two keeps the sequential shared-stream mode.
func (s *ExperimentService) SetWorkers(workers int) {
	s.workers = workers
}

// Mode reports the execution mode the service will use.
func (s *ExperimentService) Mode() ExecutionMode {
	if s.workers > 1 {
		return ModeParallel
	}
	return ModeSequential
}

type replicateOutput struct {
	points    []curve.Point
	coherence fit.CoherenceRow
}

// Run executes the full pipeline and aggregates its outputs.
func (s *ExperimentService) Run(ctx context.Context) (*ExperimentResult, error) {
	start := time.Now()
	roster := curve.Roster(s.params.NoiseSigmas, s.params.BitflipPs)

	var outputs []replicateOutput
	var err error
	if s.workers > 1 {
		outputs, err = s.runParallel(ctx, roster)
	} else {
		outputs, err = s.runSequential(ctx, roster)
	}
	if err != nil {
		return nil, err
	}

	result := &ExperimentResult{Params: s.params, Mode: s.Mode()}
	for _, out := range outputs {
		result.RawPoints = append(result.RawPoints, out.points...)
		result.Coherence = append(result.Coherence, out.coherence)
	}

	result.FitRecords = s.fitAll(result.RawPoints)
	result.CurveSummaries = s.agg.SummarizeCurves(result.RawPoints)
	result.FitSummaries = s.agg.SummarizeFits(result.FitRecords)

	s.logger.Info("[Pipeline] %d replicates x %d conditions done in %.2fs (%s mode)",
		s.params.Replicates, len(roster), time.Since(start).Seconds(), s.Mode())
	return result, nil
}

// runSequential advances one shared stream through every replicate in order.
func (s *ExperimentService) runSequential(ctx context.Context, roster []curve.Condition) ([]replicateOutput, error) {
	synthesizer, err := synth.NewSynthesizer(s.params)
	if err != nil {
		return nil, err
	}
	stream := s.rng.SharedStream(s.params.Seed)

	outputs := make([]replicateOutput, 0, s.params.Replicates)
	for rep := 0; rep < s.params.Replicates; rep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.runReplicate(synthesizer, roster, rep, stream)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
		if (rep+1)%20 == 0 {
			s.logger.Debug("[Pipeline] replicate %d/%d complete", rep+1, s.params.Replicates)
		}
	}
	return outputs, nil
}

// runParallel assigns every replicate an independently seeded sub-stream so
// draws cannot leak across replicates regardless of scheduling.
func (s *ExperimentService) runParallel(ctx context.Context, roster []curve.Condition) ([]replicateOutput, error) {
	outputs := make([]replicateOutput, s.params.Replicates)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for rep := 0; rep < s.params.Replicates; rep++ {
		rep := rep
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each worker needs its own synthesizer: FFT plans hold
			// scratch state and are not safe for concurrent use.
			synthesizer, err := synth.NewSynthesizer(s.params)
			if err != nil {
				return err
			}
			out, err := s.runReplicate(synthesizer, roster, rep, s.rng.ReplicateStream(s.params.Seed, rep))
			if err != nil {
				return err
			}
			outputs[rep] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// runReplicate generates one base sequence and builds every condition's
// curve from it, in roster order.
func (s *ExperimentService) runReplicate(synthesizer *synth.Synthesizer, roster []curve.Condition, rep int, stream *rand.Rand) (replicateOutput, error) {
	x, diag, err := synthesizer.Generate(stream, rep)
	if err != nil {
		return replicateOutput{}, err
	}
	xb := signal.Binarize(x)

	out := replicateOutput{
		coherence: fit.CoherenceRow{
			Replicate:       rep,
			Lambda:          diag.Lambda,
			Mean:            diag.Mean,
			SignChangesHalf: diag.SignChangesHalf,
		},
	}
	for _, cond := range roster {
		points, err := s.builder.Build(cond, rep, x, xb, stream)
		if err != nil {
			return replicateOutput{}, errors.Wrapf(err, "build curve for %s", cond.Name)
		}
		out.points = append(out.points, points...)
	}
	return out, nil
}

// fitAll fits every (condition, replicate) curve, ordered by condition name
// then replicate so downstream tables are stable.
func (s *ExperimentService) fitAll(points []curve.Point) []fit.Record {
	type groupKey struct {
		cond core.ConditionName
		rep  int
	}
	grouped := make(map[groupKey][]curve.Point)
	conds := make(map[core.ConditionName]bool)
	for _, pt := range points {
		key := groupKey{cond: pt.Condition, rep: pt.Replicate}
		grouped[key] = append(grouped[key], pt)
		conds[pt.Condition] = true
	}

	names := make([]core.ConditionName, 0, len(conds))
	for name := range conds {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	records := make([]fit.Record, 0, len(grouped))
	for _, name := range names {
		for rep := 0; rep < s.params.Replicates; rep++ {
			pts, ok := grouped[groupKey{cond: name, rep: rep}]
			if !ok {
				continue
			}
			records = append(records, s.fitter.FitReplicate(name, rep, pts))
		}
	}
	return records
}
