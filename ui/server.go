package ui

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"rotlab/internal/refcheck"
)

// Server serves a read-only view of a replication pack: the verdict,
// the canonical tables, and the generated methods/results notes.
type Server struct {
	router  chi.Router
	packDir string
}

// NewServer creates a new viewer over the given pack directory.
func NewServer(packDir string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		packDir: packDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Logger)

	s.router.Get("/", s.handleIndex)
	s.router.Get("/api/verdict", s.handleVerdict)
	s.router.Get("/api/manifest", s.handleManifest)
	s.router.Get("/api/replication", s.handleReplication)
	s.router.Get("/tables/{name}", s.handleTable)
	s.router.Get("/report/{name}", s.handleReport)
}

// Start starts the viewer on the given address and blocks.
func (s *Server) Start(addr string) error {
	log.Printf("[Viewer] Serving pack %s on http://%s", s.packDir, addr)
	return http.ListenAndServe(addr, s.router)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Rotation Replication Pack</title></head>
<body>
<h1>Rotation Replication Pack</h1>
<p>Verdict token: <strong>{{.Verdict}}</strong></p>
<p>Replication status: <strong>{{.Replication}}</strong></p>
<ul>
<li><a href="/api/verdict">verdict_details.json</a></li>
<li><a href="/api/manifest">run_manifest.json</a></li>
<li><a href="/tables/fit_summary_by_condition.csv">fit_summary_by_condition.csv</a></li>
<li><a href="/tables/summary_by_condition_and_k.csv">summary_by_condition_and_k.csv</a></li>
<li><a href="/report/methods_ready.md">methods</a></li>
<li><a href="/report/results_ready.md">results</a></li>
</ul>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	token, err := os.ReadFile(filepath.Join(s.packDir, "paper_ready", "verdict.txt"))
	verdictText := "UNKNOWN"
	if err == nil {
		verdictText = strings.TrimSpace(string(token))
	}
	result := refcheck.Check(filepath.Join(s.packDir, "paper_ready"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]string{
		"Verdict":     verdictText,
		"Replication": string(result.Outcome),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("[Viewer] Template error: %v", err)
	}
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	s.serveJSONFile(w, filepath.Join(s.packDir, "paper_ready", "verdict_details.json"))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.serveJSONFile(w, filepath.Join(s.packDir, "paper_ready", "run_manifest.json"))
}

// handleReplication runs the official-replication comparison against the
// served pack and reports the outcome token.
func (s *Server) handleReplication(w http.ResponseWriter, r *http.Request) {
	result := refcheck.Check(filepath.Join(s.packDir, "paper_ready"))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("[Viewer] Encode error: %v", err)
	}
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !strings.HasSuffix(name, ".csv") || strings.Contains(name, "/") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.packDir, "paper_ready", "tables", name)
	data, err := os.ReadFile(path)
	if err != nil {
		// The canonical tables also live under results/.
		data, err = os.ReadFile(filepath.Join(s.packDir, "results", name))
		if err != nil {
			http.NotFound(w, r)
			return
		}
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write(data)
}

// handleReport renders a markdown report file from paper_ready as HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !strings.HasSuffix(name, ".md") || strings.Contains(name, "/") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	src, err := os.ReadFile(filepath.Join(s.packDir, "paper_ready", name))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML(src, p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><body>\n%s\n</body></html>\n", rendered)
}

func (s *Server) serveJSONFile(w http.ResponseWriter, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
