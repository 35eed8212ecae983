package fit

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFieldStat_MarshalJSON_NaNBecomesNull(t *testing.T) {
	s := FieldStat{Mean: 0.5, Std: math.NaN()}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"mean":0.5,"std":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestFieldStat_MarshalJSON_FiniteValuesRoundTrip(t *testing.T) {
	s := FieldStat{Mean: -1.25, Std: 0.03}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back map[string]float64
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back["mean"] != -1.25 || back["std"] != 0.03 {
		t.Errorf("round trip mismatch: %v", back)
	}
}

func TestConditionSummary_MarshalJSON_EmbedsNulls(t *testing.T) {
	summary := ConditionSummary{
		Condition:  "random_bin",
		Replicates: 1,
		R2:         FieldStat{Mean: 0.1, Std: math.NaN()},
	}
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"r2":{"mean":0.1,"std":null}`) {
		t.Errorf("expected NaN std rendered as null, got: %s", data)
	}
}
