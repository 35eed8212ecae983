package tables

import (
	"fmt"
	"os"
	"path/filepath"

	"rotlab/domain/fit"

	"github.com/xuri/excelize/v2"
)

// SummaryWorkbookFile is the xlsx mirror of the summary tables, written so
// downstream readers without a CSV toolchain can open the results directly.
const SummaryWorkbookFile = "paper_ready/tables/summary_tables.xlsx"

// ExcelExporter writes the two summary tables into one workbook.
type ExcelExporter struct {
	root string
}

// NewExcelExporter creates an exporter rooted at the output directory
func NewExcelExporter(root string) *ExcelExporter {
	return &ExcelExporter{root: root}
}

// Export writes fit and curve summaries as separate sheets.
func (e *ExcelExporter) Export(fitSummaries []fit.ConditionSummary, curveSummaries []fit.CurveBinSummary) error {
	wb := excelize.NewFile()
	defer wb.Close()

	const fitSheet = "fit_summary_by_condition"
	const curveSheet = "summary_by_condition_and_k"

	// The default sheet becomes the fit summary; the curve summary is added.
	if err := wb.SetSheetName(wb.GetSheetName(0), fitSheet); err != nil {
		return err
	}
	if _, err := wb.NewSheet(curveSheet); err != nil {
		return err
	}

	fitHeader := []interface{}{
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
	if err := wb.SetSheetRow(fitSheet, "A1", &fitHeader); err != nil {
		return err
	}
	for i, s := range fitSummaries {
		row := []interface{}{
			s.Condition.String(), s.Replicates,
			cellValue(s.BetaOrigin.Mean), cellValue(s.BetaOrigin.Std),
			cellValue(s.R2Origin.Mean), cellValue(s.R2Origin.Std),
			cellValue(s.Slope.Mean), cellValue(s.Slope.Std),
			cellValue(s.Intercept.Mean), cellValue(s.Intercept.Std),
			cellValue(s.R2.Mean), cellValue(s.R2.Std),
			cellValue(s.E0.Mean), cellValue(s.E0.Std),
			cellValue(s.BetaOriginDelta.Mean), cellValue(s.BetaOriginDelta.Std),
			cellValue(s.R2OriginDelta.Mean), cellValue(s.R2OriginDelta.Std),
		}
		if err := wb.SetSheetRow(fitSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	curveHeader := []interface{}{"condition", "k", "theta", "theta2", "C_mean", "C_std", "E_mean", "E_std", "n_rows"}
	if err := wb.SetSheetRow(curveSheet, "A1", &curveHeader); err != nil {
		return err
	}
	for i, s := range curveSummaries {
		row := []interface{}{
			s.Condition.String(), s.K,
			cellValue(s.Theta), cellValue(s.Theta2),
			cellValue(s.CMean), cellValue(s.CStd),
			cellValue(s.EMean), cellValue(s.EStd),
			s.Rows,
		}
		if err := wb.SetSheetRow(curveSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	path := filepath.Join(e.root, SummaryWorkbookFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return wb.SaveAs(path)
}

// cellValue maps NaN onto the literal string the CSV tables use; excelize
// rejects NaN numeric cells.
func cellValue(v float64) interface{} {
	if v != v {
		return "NaN"
	}
	return v
}
