package refcheck

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Outcome is the replication-comparison token printed by the checker CLI.
type Outcome string

const (
	OutcomePass          Outcome = "OFFICIAL_REPLICATION_PASS"
	OutcomeFail          Outcome = "OFFICIAL_REPLICATION_FAIL"
	OutcomeNotComparable Outcome = "NOT_COMPARABLE"
)

// requiredFiles must all exist before a pack is comparable at all.
var requiredFiles = []string{
	"verdict_details.json",
	"run_manifest.json",
	"hashes.txt",
	"tables/fit_summary_by_condition.csv",
}

// expectedConditions must appear in the fit summary for the comparison to
// mean anything.
var expectedConditions = []string{
	"coherent_bin_clean",
	"random_bin",
	"palindrome_bin_no_coherence",
}

// Result is the checker outcome plus a human-readable reason when the pack
// is not comparable.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Status  string  `json:"status,omitempty"` // raw verdict token found, if any
}

// Check inspects a finished pack directory and classifies it. It never
// recomputes statistics; it only locates the verdict token and verifies the
// pack is structurally complete.
func Check(packDir string) Result {
	info, err := os.Stat(packDir)
	if err != nil || !info.IsDir() {
		return Result{Outcome: OutcomeNotComparable, Reason: "pack directory not found"}
	}

	var missing []string
	for _, rel := range requiredFiles {
		if _, err := os.Stat(filepath.Join(packDir, rel)); err != nil {
			missing = append(missing, rel)
		}
	}
	if len(missing) > 0 {
		return Result{
			Outcome: OutcomeNotComparable,
			Reason:  fmt.Sprintf("missing required files: %s", strings.Join(missing, ", ")),
		}
	}

	data, err := os.ReadFile(filepath.Join(packDir, "verdict_details.json"))
	if err != nil {
		return Result{Outcome: OutcomeNotComparable, Reason: fmt.Sprintf("cannot read verdict_details.json: %v", err)}
	}
	var details map[string]interface{}
	if err := json.Unmarshal(data, &details); err != nil {
		return Result{Outcome: OutcomeNotComparable, Reason: fmt.Sprintf("cannot parse verdict_details.json: %v", err)}
	}

	status := extractStatus(details)
	if status == "" {
		return Result{Outcome: OutcomeNotComparable, Reason: "no status/verdict field in verdict_details.json"}
	}

	csvText, err := os.ReadFile(filepath.Join(packDir, "tables/fit_summary_by_condition.csv"))
	if err != nil {
		return Result{Outcome: OutcomeNotComparable, Reason: fmt.Sprintf("cannot read fit summary: %v", err)}
	}
	for _, cond := range expectedConditions {
		if !strings.Contains(string(csvText), cond) {
			return Result{
				Outcome: OutcomeNotComparable,
				Reason:  fmt.Sprintf("missing condition in fit_summary_by_condition.csv: %s", cond),
			}
		}
	}

	upper := strings.ToUpper(status)
	switch {
	case strings.Contains(upper, "PASS"):
		return Result{Outcome: OutcomePass, Status: status}
	case strings.Contains(upper, "FAIL"):
		return Result{Outcome: OutcomeFail, Status: status}
	default:
		return Result{
			Outcome: OutcomeNotComparable,
			Reason:  fmt.Sprintf("unrecognized verdict token %q", status),
			Status:  status,
		}
	}
}

// extractStatus accepts the handful of field names replication packs have
// used for the verdict token.
func extractStatus(details map[string]interface{}) string {
	for _, key := range []string{"status", "verdict", "overall", "result"} {
		if v, ok := details[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
