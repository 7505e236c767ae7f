package site

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ziadkadry99/riskpanes/internal/content"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/panes"
	"github.com/ziadkadry99/riskpanes/internal/progress"
	"github.com/ziadkadry99/riskpanes/internal/storage"
	"github.com/ziadkadry99/riskpanes/web"
)

func newExporter(t *testing.T, out string) *Exporter {
	t.Helper()
	return newExporterWithData(t, out, web.Data())
}

func newExporterWithData(t *testing.T, out string, data fs.FS) *Exporter {
	t.Helper()
	lib, err := content.Load(web.Content())
	if err != nil {
		t.Fatalf("loading content: %v", err)
	}
	fetcher := fetch.FSFetcher{FS: data}
	reg := pane.NewRegistry()
	if err := panes.RegisterAll(reg, panes.Deps{Fetcher: fetcher, Slots: storage.NewMemory(), Content: lib}); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	return &Exporter{
		Pages:     &pages.Builder{Registry: reg, Shells: web.Shells()},
		Fetcher:   fetcher,
		Static:    web.Static(),
		Data:      data,
		OutputDir: out,
	}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func TestExport(t *testing.T) {
	out := t.TempDir()
	var buf strings.Builder
	e := newExporter(t, out)
	e.Reporter = &progress.CIReporter{Description: "Exporting", Out: &buf}

	n, err := e.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 5 {
		t.Errorf("pages = %d, want 5", n)
	}

	for _, name := range []string{
		"index.html",
		"riskPage.html",
		"riskPage-backups.html",
		"riskPage-emailAccounts.html",
		"riskPage-security.html",
		"static/styles.css",
		"static/app.js",
		"data/riskTables.json",
		"data/riskSummaryMessages.json",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	home := readFile(t, filepath.Join(out, "index.html"))
	if !strings.Contains(home, `href="riskPage-security.html"`) {
		t.Errorf("home links were not rewritten:\n%s", home)
	}
	if strings.Contains(home, "riskPage.html?service=") {
		t.Error("home still links to the query form of the risk page")
	}

	security := readFile(t, filepath.Join(out, "riskPage-security.html"))
	for _, want := range []string{"Security Risk Table", "Risk Summary", `data-control-id="mfa"`} {
		if !strings.Contains(security, want) {
			t.Errorf("security page missing %q", want)
		}
	}

	bare := readFile(t, filepath.Join(out, "riskPage.html"))
	if !strings.Contains(bare, "Missing required URL parameter") {
		t.Error("bare risk page should show the missing parameter message")
	}

	log := buf.String()
	if !strings.Contains(log, "Exporting: 5 items") || !strings.Contains(log, "[5/5] riskPage-security.html") {
		t.Errorf("unexpected progress output:\n%s", log)
	}
}

func TestExportFetchError(t *testing.T) {
	e := newExporter(t, t.TempDir())
	e.Fetcher = fetch.FSFetcher{FS: web.Static()}
	if _, err := e.Export(context.Background()); err == nil {
		t.Fatal("expected an error when the tables cannot be loaded")
	}
}

func TestRiskPageFile(t *testing.T) {
	if got := RiskPageFile("emailAccounts"); got != "riskPage-emailAccounts.html" {
		t.Errorf("RiskPageFile = %q", got)
	}
}

func TestExportSkipsUnsafeCategoryKeys(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site")
	data := fstest.MapFS{
		"data/riskTables.json": {Data: []byte(`{
			"ok": [{"id": "a", "danger": 10}],
			"../escape": [{"id": "a", "danger": 10}],
			"nested/key": [{"id": "a", "danger": 10}],
			"..": []
		}`)},
		"data/riskSummaryMessages.json": {Data: []byte(`[{"min":0,"max":100,"title":"Any"}]`)},
	}

	n, err := newExporterWithData(t, out, data).Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 3 {
		t.Errorf("pages = %d, want 3 (home, bare risk page, ok)", n)
	}
	if _, err := os.Stat(filepath.Join(out, "riskPage-ok.html")); err != nil {
		t.Errorf("missing riskPage-ok.html: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.html")); err == nil {
		t.Error("a category key escaped the output directory")
	}
	if _, err := os.Stat(filepath.Join(out, "riskPage-nested")); err == nil {
		t.Error("a category key created a subdirectory")
	}
}

func TestExportable(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"security", true},
		{"email-accounts_2", true},
		{"", false},
		{"..", false},
		{"../x", false},
		{"a/b", false},
		{`a\b`, false},
		{"c:x", false},
	}
	for _, tt := range tests {
		if got := exportable(tt.key); got != tt.want {
			t.Errorf("exportable(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
