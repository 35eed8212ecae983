package ui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeViewerPack(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"paper_ready/verdict.txt":          "PASS\n",
		"paper_ready/verdict_details.json": `{"verdict":"PASS","checks":[]}`,
		"paper_ready/run_manifest.json":    `{"run_id":"r1","seed":42}`,
		"paper_ready/hashes.txt":           "verdict_details.json  deadbeef\n",
		"paper_ready/methods_ready.md":     "Methods: generated for the viewer test.\n",
		"paper_ready/tables/fit_summary_by_condition.csv": "condition,R2_mean\n" +
			"coherent_bin_clean,0.93\nrandom_bin,0.05\npalindrome_bin_no_coherence,0.06\n",
		"results/summary_by_condition_and_k.csv": "condition,k\ncoherent_soft,0\n",
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

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestIndex_ShowsVerdictAndReplication(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "PASS") {
		t.Errorf("index missing verdict token:\n%s", body)
	}
	if !strings.Contains(body, "OFFICIAL_REPLICATION_PASS") {
		t.Errorf("index missing replication outcome:\n%s", body)
	}
}

func TestAPIVerdict_ServesJSON(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	rec := get(t, s, "/api/verdict")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"verdict":"PASS"`) {
		t.Errorf("unexpected verdict body: %s", rec.Body.String())
	}
}

func TestAPIReplication_ReportsOutcome(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	rec := get(t, s, "/api/replication")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OFFICIAL_REPLICATION_PASS") {
		t.Errorf("unexpected replication body: %s", rec.Body.String())
	}
}

func TestTables_ServedFromPaperReadyWithResultsFallback(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	rec := get(t, s, "/tables/fit_summary_by_condition.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("paper_ready table status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "coherent_bin_clean") {
		t.Errorf("unexpected table body: %s", rec.Body.String())
	}

	rec = get(t, s, "/tables/summary_by_condition_and_k.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("results fallback status = %d, want 200", rec.Code)
	}
}

func TestTables_RejectsNonCSVAndTraversal(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	for _, path := range []string{"/tables/verdict.txt", "/tables/..%2fhashes.csv"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestReport_RendersMarkdown(t *testing.T) {
	s := NewServer(writeViewerPack(t))

	rec := get(t, s, "/report/methods_ready.md")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>") {
		t.Errorf("markdown not rendered to HTML:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "viewer test") {
		t.Errorf("rendered report missing content:\n%s", rec.Body.String())
	}
}

func TestReport_MissingFile(t *testing.T) {
	s := NewServer(writeViewerPack(t))
	if rec := get(t, s, "/report/absent.md"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
