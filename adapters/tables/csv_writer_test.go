package tables

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/params"
	"rotlab/domain/verdict"
)

func readPackFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestWriteRawCurves_Layout(t *testing.T) {
	root := t.TempDir()
	w := NewCSVPack(root)

	points := []curve.Point{
		curve.NewPoint("coherent_soft", 0, 512, 0, 1.0),
		curve.NewPoint("coherent_soft", 0, 512, 4, 0.9),
	}
	if err := w.WriteRawCurves(points); err != nil {
		t.Fatalf("WriteRawCurves failed: %v", err)
	}

	content := readPackFile(t, root, RawCurvesFile)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "condition,replicate,n,k,theta,theta2,C,E" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "coherent_soft,0,512,0,") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

func TestWriteFitSummaries_NaNLiteral(t *testing.T) {
	root := t.TempDir()
	w := NewCSVPack(root)

	summaries := []fit.ConditionSummary{{
		Condition:  "random_bin",
		Replicates: 1,
		R2:         fit.FieldStat{Mean: 0.1, Std: math.NaN()},
	}}
	if err := w.WriteFitSummaries(summaries); err != nil {
		t.Fatalf("WriteFitSummaries failed: %v", err)
	}

	content := readPackFile(t, root, FitSummaryFile)
	if !strings.Contains(content, "NaN") {
		t.Errorf("NaN std should serialize as the literal NaN:\n%s", content)
	}
	if !strings.Contains(content, "R2_mean,R2_std") {
		t.Errorf("fit summary header must carry the contract column names:\n%s", content)
	}

	// The paper-ready copy must be byte-identical to the canonical table.
	paper := readPackFile(t, root, PaperFitSummaryFile)
	if paper != content {
		t.Error("paper_ready fit summary differs from results copy")
	}
}

func TestWriteVerdict_TokenAndDetails(t *testing.T) {
	root := t.TempDir()
	w := NewCSVPack(root)

	details := verdict.Details{
		Verdict:    verdict.StatusPass,
		Tolerances: params.DefaultTolerances(),
		Checks: []verdict.Check{
			{Name: "clean.R2_mean", OK: true, Kind: verdict.KindAbsolute, Measured: 0.93, Reference: 0.93, Tolerance: 0.05},
		},
	}
	if err := w.WriteVerdict(details); err != nil {
		t.Fatalf("WriteVerdict failed: %v", err)
	}

	token := readPackFile(t, root, VerdictTokenFile)
	if token != "PASS\n" {
		t.Errorf("token file = %q, want \"PASS\\n\"", token)
	}
	detailsJSON := readPackFile(t, root, VerdictJSONFile)
	if !strings.Contains(detailsJSON, `"verdict": "PASS"`) {
		t.Errorf("details JSON missing verdict field:\n%s", detailsJSON)
	}
	if !strings.Contains(detailsJSON, "clean.R2_mean") {
		t.Errorf("details JSON missing check name:\n%s", detailsJSON)
	}
}

func TestWriteVerdict_NaNMeasurementEncodes(t *testing.T) {
	root := t.TempDir()
	w := NewCSVPack(root)

	details := verdict.Details{
		Verdict: verdict.StatusFail,
		Checks: []verdict.Check{
			{Name: "clean.R2_mean", OK: false, Kind: verdict.KindAbsolute, Measured: math.NaN(), Reference: 0.93, Tolerance: 0.05},
		},
	}
	if err := w.WriteVerdict(details); err != nil {
		t.Fatalf("WriteVerdict with NaN measurement failed: %v", err)
	}
	detailsJSON := readPackFile(t, root, VerdictJSONFile)
	if !strings.Contains(detailsJSON, `"measured": null`) {
		t.Errorf("NaN measurement should encode as null:\n%s", detailsJSON)
	}
}
