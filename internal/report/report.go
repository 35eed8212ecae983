package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rotlab/domain/core"
	"rotlab/domain/params"
	"rotlab/domain/verdict"
)

// KitVersion identifies the replication kit release recorded in manifests.
const KitVersion = "1.0"

// RunManifest is the truth source describing one completed run; it is
// written before hashing so the manifest itself is covered by the pack
// integrity check.
type RunManifest struct {
	RunID       core.RunID     `json:"run_id"`
	KitVersion  string         `json:"kit_version"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Timestamp   string         `json:"timestamp_utc"`
	Engine      string         `json:"engine"`
	Mode        string         `json:"mode"`
	Params      params.Params  `json:"params"`
	Verdict     verdict.Status `json:"verdict"`
	Scope       string         `json:"scope"`
}

// NewRunManifest builds a manifest for a finished run. The fingerprint
// covers everything that determines the outputs: parameters, seed and mode.
func NewRunManifest(p params.Params, mode string, status verdict.Status) RunManifest {
	fingerprint := core.ComputeFieldsHash(map[string]interface{}{
		"params_hash": p.Hash().String(),
		"seed":        p.Seed,
		"mode":        mode,
		"kit_version": KitVersion,
	})
	return RunManifest{
		RunID:       core.RunID(core.NewID()),
		KitVersion:  KitVersion,
		Fingerprint: fingerprint,
		Timestamp:   core.Now().UTCString(),
		Engine:      "rotlab digital rotation replication engine",
		Mode:        mode,
		Params:      p,
		Verdict:     status,
		Scope:       "Digital instantiation replication/robustness suite; not direct physical confirmation.",
	}
}

// WriteRunManifest writes run_manifest.json into the pack directory.
func WriteRunManifest(packDir string, m RunManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(packDir, "run_manifest.json"), append(data, '\n'), 0o644)
}

// ReadRunManifest loads and validates run_manifest.json from a pack.
func ReadRunManifest(packDir string) (RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(packDir, "run_manifest.json"))
	if err != nil {
		return RunManifest{}, err
	}
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return RunManifest{}, fmt.Errorf("parse run manifest: %w", err)
	}
	if _, err := core.ParseRunID(m.RunID.String()); err != nil {
		return RunManifest{}, fmt.Errorf("run manifest: %w", err)
	}
	if m.Fingerprint.IsEmpty() {
		return RunManifest{}, fmt.Errorf("run manifest: fingerprint is empty")
	}
	return m, nil
}

// CompareRuns checks that two run manifests describe the same deterministic
// computation. Different seeds are not comparable; the same seed and mode
// with diverging fingerprints means the engine did not reproduce.
func CompareRuns(local, official RunManifest) error {
	if local.Params.Seed != official.Params.Seed {
		return fmt.Errorf("%w: local seed %d, official seed %d",
			core.ErrSeedMismatch, local.Params.Seed, official.Params.Seed)
	}
	if local.Params.Hash() != official.Params.Hash() {
		return core.NewConfigurationError("params", "local and official runs used different parameters")
	}
	if local.Mode != official.Mode {
		return core.NewConfigurationError("mode",
			fmt.Sprintf("local ran %s, official ran %s", local.Mode, official.Mode))
	}
	if !local.Fingerprint.Equals(official.Fingerprint) {
		return fmt.Errorf("%w: fingerprint %s does not reproduce official %s",
			core.ErrNonDeterministic, local.Fingerprint, official.Fingerprint)
	}
	return nil
}

// WriteMethodsResults writes the human-readable methods and results notes
// plus the citation block alongside the tables.
func WriteMethodsResults(packDir string, p params.Params, details verdict.Details) error {
	methods := fmt.Sprintf(`Methods: This replication runs the digital rotation experiment engine
and packages outputs for verification.
Core parameters: n=%d; replicates=%d; seed=%d; band=%.2f; lambda_threshold=%.2f.
Quality gate: lambda_threshold=%.2f, mean_abs_max=%.2f, sign_changes in [%d,%d].
Verdict rule: combined (A) reference-matching for coherent_bin_clean + (B) negative controls must fail.
`, p.N, p.Replicates, p.Seed, p.Band, p.LambdaThresh, p.LambdaThresh, p.MeanAbsMax, p.SignChangesMin, p.SignChangesMax)

	var failed []string
	for _, c := range details.Checks {
		if !c.OK {
			failed = append(failed, c.Name)
		}
	}
	results := fmt.Sprintf(`Results: Canonical tables were generated and are available in this pack.
Verdict: %s.
`, details.Verdict)
	if len(failed) > 0 {
		results += fmt.Sprintf("Failed checks: %s.\n", strings.Join(failed, ", "))
	}
	results += "See verdict_details.json for measured values, tolerances, and control checks.\n"

	citation := `Citation:
rotlab: deterministic digital rotation replication kit, version ` + KitVersion + `.
Cite the replication pack (run_manifest.json fingerprint) alongside the kit version.
`

	if err := os.WriteFile(filepath.Join(packDir, "methods_ready.md"), []byte(methods), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(packDir, "results_ready.md"), []byte(results), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(packDir, "citation_block.txt"), []byte(citation), 0o644)
}
