package aggregate

import (
	"math"
	"testing"

	"rotlab/domain/curve"
	"rotlab/domain/fit"
)

func TestSummarizeFits_MeanAndSampleStd(t *testing.T) {
	agg := NewAggregator()
	records := []fit.Record{
		{Condition: "coherent_bin_clean", Replicate: 0, R2: 0.90},
		{Condition: "coherent_bin_clean", Replicate: 1, R2: 0.94},
		{Condition: "coherent_bin_clean", Replicate: 2, R2: 0.92},
	}

	summaries := agg.SummarizeFits(records)
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	s := summaries[0]
	if s.Replicates != 3 {
		t.Errorf("replicates = %d, want 3", s.Replicates)
	}
	if math.Abs(s.R2.Mean-0.92) > 1e-12 {
		t.Errorf("mean = %v, want 0.92", s.R2.Mean)
	}
	// Sample (N-1) std of {0.90, 0.94, 0.92} is 0.02.
	if math.Abs(s.R2.Std-0.02) > 1e-12 {
		t.Errorf("std = %v, want 0.02", s.R2.Std)
	}
}

func TestSummarizeFits_SingleReplicateStdIsNaN(t *testing.T) {
	agg := NewAggregator()
	summaries := agg.SummarizeFits([]fit.Record{
		{Condition: "random_bin", Replicate: 0, R2: 0.1},
	})

	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].R2.Mean != 0.1 {
		t.Errorf("mean = %v, want 0.1", summaries[0].R2.Mean)
	}
	if !math.IsNaN(summaries[0].R2.Std) {
		t.Errorf("std = %v, want NaN for a single replicate", summaries[0].R2.Std)
	}
}

func TestSummarizeFits_NaNFieldsPropagate(t *testing.T) {
	agg := NewAggregator()
	summaries := agg.SummarizeFits([]fit.Record{
		{Condition: "random_bin", Replicate: 0, R2Origin: math.NaN()},
		{Condition: "random_bin", Replicate: 1, R2Origin: 0.5},
	})

	if !math.IsNaN(summaries[0].R2Origin.Mean) {
		t.Errorf("mean over a NaN field = %v, want NaN", summaries[0].R2Origin.Mean)
	}
}

func TestSummarizeFits_OrderIndependent(t *testing.T) {
	agg := NewAggregator()
	forward := []fit.Record{
		{Condition: "b", Replicate: 0, R2: 0.1},
		{Condition: "a", Replicate: 0, R2: 0.2},
		{Condition: "a", Replicate: 1, R2: 0.4},
	}
	reversed := []fit.Record{forward[2], forward[1], forward[0]}

	s1 := agg.SummarizeFits(forward)
	s2 := agg.SummarizeFits(reversed)
	if len(s1) != 2 || len(s2) != 2 {
		t.Fatalf("got %d / %d summaries, want 2 each", len(s1), len(s2))
	}
	if s1[0].Condition != "a" || s2[0].Condition != "a" {
		t.Errorf("summaries not sorted by condition: %s / %s", s1[0].Condition, s2[0].Condition)
	}
	if s1[0].R2.Mean != s2[0].R2.Mean || s1[0].R2.Std != s2[0].R2.Std {
		t.Errorf("input order changed the aggregate: %+v vs %+v", s1[0].R2, s2[0].R2)
	}
}

func TestSummarizeCurves_GroupsPerConditionAndK(t *testing.T) {
	agg := NewAggregator()
	const n = 512
	var points []curve.Point
	for rep := 0; rep < 2; rep++ {
		points = append(points,
			curve.NewPoint("coherent_soft", rep, n, 0, 1.0),
			curve.NewPoint("coherent_soft", rep, n, 4, 0.8),
		)
	}

	summaries := agg.SummarizeCurves(points)
	if len(summaries) != 2 {
		t.Fatalf("got %d cells, want 2", len(summaries))
	}
	for _, s := range summaries {
		if s.Rows != 2 {
			t.Errorf("k=%d: rows = %d, want 2", s.K, s.Rows)
		}
	}
	if summaries[0].K != 0 || summaries[1].K != 4 {
		t.Errorf("cells not sorted by k: %d, %d", summaries[0].K, summaries[1].K)
	}
	if summaries[1].CMean != 0.8 {
		t.Errorf("C mean = %v, want 0.8", summaries[1].CMean)
	}
	if math.Abs(summaries[1].EMean-0.4) > 1e-12 {
		t.Errorf("E mean = %v, want 0.4", summaries[1].EMean)
	}
}
