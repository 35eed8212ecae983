package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rotlab/domain/core"
	"rotlab/internal/refcheck"
	"rotlab/internal/report"
)

// checkreplication classifies a finished pack against the official
// replication contract and prints exactly one outcome token. With -official
// it additionally requires the local run manifest to reproduce the official
// pack's fingerprint.
func main() {
	dir := flag.String("dir", "rotation_pack", "pack directory to check")
	official := flag.String("official", "", "official pack directory whose run manifest must be reproduced")
	flag.Parse()

	paperDir := filepath.Join(*dir, "paper_ready")

	if *official != "" {
		local, err := report.ReadRunManifest(paperDir)
		if err != nil {
			notComparable(fmt.Sprintf("local run manifest: %v", err))
		}
		officialRun, err := report.ReadRunManifest(filepath.Join(*official, "paper_ready"))
		if err != nil {
			notComparable(fmt.Sprintf("official run manifest: %v", err))
		}
		if err := report.CompareRuns(local, officialRun); err != nil {
			if errors.Is(err, core.ErrNonDeterministic) {
				// Same configuration, diverging fingerprint: the replication failed.
				fmt.Println(refcheck.OutcomeFail)
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			notComparable(err.Error())
		}
	}

	result := refcheck.Check(paperDir)
	fmt.Println(result.Outcome)
	if result.Reason != "" {
		fmt.Fprintln(os.Stderr, result.Reason)
	}

	switch result.Outcome {
	case refcheck.OutcomePass:
		os.Exit(0)
	case refcheck.OutcomeFail:
		os.Exit(1)
	default:
		os.Exit(2)
	}
}

func notComparable(reason string) {
	fmt.Println(refcheck.OutcomeNotComparable)
	fmt.Fprintln(os.Stderr, reason)
	os.Exit(2)
}
