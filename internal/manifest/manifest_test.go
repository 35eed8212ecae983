package manifest

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rotlab/domain/core"
	"rotlab/internal/errors"
)

func writeTestPack(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"verdict.txt":              "PASS\n",
		"tables/fit_summary.csv":   "condition,R2_mean\ncoherent_bin_clean,0.93\n",
		"tables/nested/extra.json": `{"ok":true}`,
		"results_ready.md":         "Results: fine.\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestWriteAndVerify_CleanPack(t *testing.T) {
	root := writeTestPack(t)
	if _, err := Write(root); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := Read(root)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d manifest entries, want 4", len(entries))
	}
	for _, e := range entries {
		if e.Path == HashesFile {
			t.Error("manifest must not hash itself")
		}
		if len(e.SHA256) != 64 {
			t.Errorf("%s: sha256 digest length %d, want 64", e.Path, len(e.SHA256))
		}
		if len(e.MD5) != 32 {
			t.Errorf("%s: md5 digest length %d, want 32", e.Path, len(e.MD5))
		}
	}

	reports, ok, err := Verify(root)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Errorf("clean pack should verify, reports: %+v", reports)
	}
}

func TestVerify_DetectsTamper(t *testing.T) {
	root := writeTestPack(t)
	if _, err := Write(root); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	tampered := filepath.Join(root, "verdict.txt")
	if err := os.WriteFile(tampered, []byte("FAIL\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reports, ok, err := Verify(root)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("tampered pack should not verify")
	}
	found := false
	for _, r := range reports {
		if r.Path == "verdict.txt" {
			found = true
			if r.OK {
				t.Error("tampered file reported OK")
			}
			if !stderrors.Is(r.Err, core.ErrHashMismatch) {
				t.Errorf("tampered file error = %v, want hash mismatch", r.Err)
			}
		} else if !r.OK {
			t.Errorf("untouched file %s reported FAIL", r.Path)
		}
	}
	if !found {
		t.Error("tampered file missing from reports")
	}
}

func TestVerify_ChecksMD5WhenManifestCarriesIt(t *testing.T) {
	root := writeTestPack(t)
	if _, err := Write(root); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Corrupt only the MD5 column of one entry; the SHA-256 stays valid.
	manifestPath := filepath.Join(root, HashesFile)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		if fields[0] == "verdict.txt" {
			fields[2] = strings.Repeat("0", 32)
			lines[i] = strings.Join(fields, "  ")
		}
	}
	if err := os.WriteFile(manifestPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reports, ok, err := Verify(root)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("md5 mismatch should fail verification")
	}
	for _, r := range reports {
		if r.Path == "verdict.txt" && r.OK {
			t.Error("entry with corrupted md5 reported OK")
		}
	}
}

func TestVerify_AcceptsSHAOnlyManifests(t *testing.T) {
	root := writeTestPack(t)
	if _, err := Write(root); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Rewrite the manifest without the MD5 column, as older kits wrote it.
	entries, err := Read(root)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Path + "  " + e.SHA256 + "\n")
	}
	if err := os.WriteFile(filepath.Join(root, HashesFile), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := Verify(root)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("sha-only manifest of a clean pack should verify")
	}
}

func TestVerify_DetectsMissingFile(t *testing.T) {
	root := writeTestPack(t)
	if _, err := Write(root); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "results_ready.md")); err != nil {
		t.Fatal(err)
	}

	reports, ok, err := Verify(root)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("pack with a missing file should not verify")
	}
	for _, r := range reports {
		if r.Path != "results_ready.md" {
			continue
		}
		var appErr *errors.AppError
		if !stderrors.As(r.Err, &appErr) || appErr.Code != errors.CodePackIncomplete {
			t.Errorf("missing file error = %v, want code %s", r.Err, errors.CodePackIncomplete)
		}
	}
}

func TestWrite_DeterministicOrder(t *testing.T) {
	root := writeTestPack(t)
	firstHash, err := Write(root)
	if err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(root, HashesFile))
	if err != nil {
		t.Fatal(err)
	}
	secondHash, err := Write(root)
	if err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(root, HashesFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("rewriting an unchanged pack changed the manifest")
	}
	if !core.Hash(firstHash).Equals(core.Hash(secondHash)) {
		t.Errorf("pack hash not stable: %s vs %s", firstHash, secondHash)
	}
	if core.Hash(firstHash).IsEmpty() {
		t.Error("pack hash must not be empty")
	}
}
