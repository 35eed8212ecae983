package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rotlab/internal/manifest"
)

// verifypack recomputes the hash manifest of a replication pack and reports
// per-file integrity, without touching any statistics.
func main() {
	dir := flag.String("dir", "rotation_pack", "pack directory to verify")
	flag.Parse()

	paperDir := filepath.Join(*dir, "paper_ready")
	reports, ok, err := manifest.Verify(paperDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verifypack: %v\n", err)
		os.Exit(2)
	}

	for _, r := range reports {
		status := "OK"
		if !r.OK {
			status = "FAIL"
		}
		fmt.Printf("%-4s %s\n", status, r.Path)
	}
	if !ok {
		fmt.Println("PACK INTEGRITY: FAIL")
		os.Exit(1)
	}
	fmt.Println("PACK INTEGRITY: OK")
}
