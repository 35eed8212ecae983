package tables

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"rotlab/domain/curve"
	"rotlab/domain/fit"
	"rotlab/domain/verdict"
	"rotlab/ports"
)

// Artifact file names within the output root.
const (
	RawCurvesFile    = "data/raw_all_conditions.csv"
	CoherenceFile    = "data/coherence_metrics_per_replicate.csv"
	FitRecordsFile   = "data/fit_per_replicate.csv"
	CurveSummaryFile = "results/summary_by_condition_and_k.csv"
	FitSummaryFile   = "results/fit_summary_by_condition.csv"
	VerdictTokenFile = "paper_ready/verdict.txt"
	VerdictJSONFile  = "paper_ready/verdict_details.json"

	// Paper-ready copies of the canonical tables; the replication checker
	// keys on these paths.
	PaperCurveSummaryFile = "paper_ready/tables/summary_by_condition_and_k.csv"
	PaperFitSummaryFile   = "paper_ready/tables/fit_summary_by_condition.csv"
)

// CSVPack writes the run's tables as CSV plus the verdict artifacts.
// Output bytes depend only on the inputs, so identical runs hash identically.
type CSVPack struct {
	root string
}

// NewCSVPack creates a pack writer rooted at the given output directory
func NewCSVPack(root string) *CSVPack {
	return &CSVPack{root: root}
}

var _ ports.PackWriter = (*CSVPack)(nil)

// WriteRawCurves writes every curve point of every condition and replicate
func (w *CSVPack) WriteRawCurves(points []curve.Point) error {
	header := []string{"condition", "replicate", "n", "k", "theta", "theta2", "C", "E"}
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		rows = append(rows, []string{
			pt.Condition.String(),
			strconv.Itoa(pt.Replicate),
			strconv.Itoa(pt.N),
			strconv.Itoa(pt.K),
			formatFloat(pt.Theta),
			formatFloat(pt.Theta2),
			formatFloat(pt.C),
			formatFloat(pt.E),
		})
	}
	return w.writeCSV(RawCurvesFile, header, rows)
}

// WriteCoherenceMetrics writes the realized gate diagnostics per replicate
func (w *CSVPack) WriteCoherenceMetrics(rowsIn []fit.CoherenceRow) error {
	header := []string{"replicate", "lambda", "mean", "sign_changes_half"}
	rows := make([][]string, 0, len(rowsIn))
	for _, r := range rowsIn {
		rows = append(rows, []string{
			strconv.Itoa(r.Replicate),
			formatFloat(r.Lambda),
			formatFloat(r.Mean),
			strconv.Itoa(r.SignChangesHalf),
		})
	}
	return w.writeCSV(CoherenceFile, header, rows)
}

// WriteFitRecords writes per-replicate fit parameters for every condition
func (w *CSVPack) WriteFitRecords(records []fit.Record) error {
	header := []string{
		"condition", "replicate",
		"beta_origin", "r2_origin",
		"slope", "intercept", "r2",
		"E0", "beta_origin_delta", "r2_origin_delta",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Condition.String(),
			strconv.Itoa(r.Replicate),
			formatFloat(r.BetaOrigin),
			formatFloat(r.R2Origin),
			formatFloat(r.Slope),
			formatFloat(r.Intercept),
			formatFloat(r.R2),
			formatFloat(r.E0),
			formatFloat(r.BetaOriginDelta),
			formatFloat(r.R2OriginDelta),
		})
	}
	return w.writeCSV(FitRecordsFile, header, rows)
}

// WriteCurveSummaries writes the per-(condition, k) aggregate curve table
func (w *CSVPack) WriteCurveSummaries(summaries []fit.CurveBinSummary) error {
	header := []string{"condition", "k", "theta", "theta2", "C_mean", "C_std", "E_mean", "E_std", "n_rows"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Condition.String(),
			strconv.Itoa(s.K),
			formatFloat(s.Theta),
			formatFloat(s.Theta2),
			formatFloat(s.CMean),
			formatFloat(s.CStd),
			formatFloat(s.EMean),
			formatFloat(s.EStd),
			strconv.Itoa(s.Rows),
		})
	}
	if err := w.writeCSV(CurveSummaryFile, header, rows); err != nil {
		return err
	}
	return w.writeCSV(PaperCurveSummaryFile, header, rows)
}

// WriteFitSummaries writes the per-condition fit summary table. The column
// names here are the contract the verdict reference and the replication
// checker key on.
func (w *CSVPack) WriteFitSummaries(summaries []fit.ConditionSummary) error {
	header := []string{
		"condition", "n_replicates",
		"beta_origin_mean", "beta_origin_std",
		"R2_origin_mean", "R2_origin_std",
		"slope_mean", "slope_std",
		"intercept_mean", "intercept_std",
		"R2_mean", "R2_std",
		"E0_mean", "E0_std",
		"beta_origin_delta_mean", "beta_origin_delta_std",
		"R2_origin_delta_mean", "R2_origin_delta_std",
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Condition.String(),
			strconv.Itoa(s.Replicates),
			formatFloat(s.BetaOrigin.Mean), formatFloat(s.BetaOrigin.Std),
			formatFloat(s.R2Origin.Mean), formatFloat(s.R2Origin.Std),
			formatFloat(s.Slope.Mean), formatFloat(s.Slope.Std),
			formatFloat(s.Intercept.Mean), formatFloat(s.Intercept.Std),
			formatFloat(s.R2.Mean), formatFloat(s.R2.Std),
			formatFloat(s.E0.Mean), formatFloat(s.E0.Std),
			formatFloat(s.BetaOriginDelta.Mean), formatFloat(s.BetaOriginDelta.Std),
			formatFloat(s.R2OriginDelta.Mean), formatFloat(s.R2OriginDelta.Std),
		})
	}
	if err := w.writeCSV(FitSummaryFile, header, rows); err != nil {
		return err
	}
	return w.writeCSV(PaperFitSummaryFile, header, rows)
}

// WriteVerdict writes both the bare token file and the itemized details.
// The token file carries exactly the verdict string plus a newline so thin
// collaborators can read it without a JSON parser.
func (w *CSVPack) WriteVerdict(details verdict.Details) error {
	tokenPath := filepath.Join(w.root, VerdictTokenFile)
	if err := os.MkdirAll(filepath.Dir(tokenPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tokenPath, []byte(string(details.Verdict)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write verdict token: %w", err)
	}

	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return fmt.Errorf("encode verdict details: %w", err)
	}
	return os.WriteFile(filepath.Join(w.root, VerdictJSONFile), append(data, '\n'), 0o644)
}

func (w *CSVPack) writeCSV(rel string, header []string, rows [][]string) error {
	path := filepath.Join(w.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// formatFloat renders a float with shortest round-trip precision; undefined
// values appear as the literal NaN, matching the summary semantics.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
