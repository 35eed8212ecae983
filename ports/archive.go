package ports

import (
	"context"

	"rotlab/domain/core"
	"rotlab/domain/fit"
	"rotlab/domain/verdict"
)

// RunArchive persists completed runs for later comparison across machines.
// The pipeline has no hard dependency on it; the driver wires an archive
// only when one is configured.
type RunArchive interface {
	// EnsureSchema creates the archive tables if they do not exist
	EnsureSchema(ctx context.Context) error

	// SaveRun stores the run manifest row and returns nothing; summaries and
	// the verdict are stored alongside under the same run ID
	SaveRun(ctx context.Context, rec RunRecord) error
}

// RunRecord is the archived form of one completed run
type RunRecord struct {
	RunID       core.RunID
	Fingerprint core.Hash
	Seed        int64
	ParamsJSON  []byte
	Mode        string // "sequential" or "parallel"
	Verdict     verdict.Status
	CreatedAt   core.Timestamp
	Summaries   []fit.ConditionSummary
}
