// Package site exports the risk analysis pages as a static site with one
// pre-rendered risk page per category, and serves the result.
package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/progress"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

// Exporter writes the static site into OutputDir.
type Exporter struct {
	Pages     *pages.Builder
	Fetcher   fetch.Fetcher
	Static    fs.FS // copied to static/
	Data      fs.FS // site root whose data/ directory is copied; may be nil
	OutputDir string
	Reporter  progress.Reporter
}

// RiskPageFile returns the exported file name of a category's risk page.
func RiskPageFile(category string) string {
	return "riskPage-" + category + ".html"
}

// exportable reports whether category can be used in a file name inside
// the output directory.
func exportable(category string) bool {
	if category == "" || strings.ContainsAny(category, `/\:`) || strings.Contains(category, "..") {
		return false
	}
	return filepath.IsLocal(RiskPageFile(category))
}

// Export renders every page and copies the assets. It returns the number of
// pages written.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	var tables risk.Tables
	if err := e.Fetcher.FetchJSON(ctx, risk.DefaultTablesURL, &tables); err != nil {
		return 0, fmt.Errorf("listing categories: %w", err)
	}
	var categories []string
	for _, k := range tables.Keys() {
		if !exportable(k) {
			slog.Warn("skipping category with an unusable file name", "category", k)
			continue
		}
		categories = append(categories, k)
	}

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output dir: %w", err)
	}

	reporter := e.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	total := len(categories) + 2
	reporter.Start(total)
	defer reporter.Finish()

	n := 0
	write := func(name string, build func() (*pages.Page, error)) error {
		p, err := build()
		if err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
		defer p.Close()
		p.Edit(rewriteRiskLinks)
		if err := writeFile(filepath.Join(e.OutputDir, name), p.Render); err != nil {
			return err
		}
		n++
		reporter.Update(n, name)
		return nil
	}

	if err := write("index.html", func() (*pages.Page, error) { return e.Pages.Home(ctx) }); err != nil {
		return n, err
	}
	if err := write(pages.RiskShell, func() (*pages.Page, error) { return e.Pages.Risk(ctx, url.Values{}) }); err != nil {
		return n, err
	}
	for _, c := range categories {
		q := url.Values{"service": {c}}
		if err := write(RiskPageFile(c), func() (*pages.Page, error) { return e.Pages.Risk(ctx, q) }); err != nil {
			return n, err
		}
	}

	if e.Static != nil {
		if err := copyFS(e.Static, ".", filepath.Join(e.OutputDir, "static")); err != nil {
			return n, fmt.Errorf("copying static files: %w", err)
		}
	}
	if e.Data != nil {
		if err := copyFS(e.Data, "data", filepath.Join(e.OutputDir, "data")); err != nil {
			return n, fmt.Errorf("copying data files: %w", err)
		}
	}
	return n, nil
}

// rewriteRiskLinks points riskPage.html?service=X links at the exported
// riskPage-X.html files.
func rewriteRiskLinks(doc *dom.Document) {
	links := dom.FindAll(doc.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && dom.HasAttr(n, "href")
	})
	for _, a := range links {
		href, _ := dom.Attr(a, "href")
		u, err := url.Parse(href)
		if err != nil || u.IsAbs() || u.Path != pages.RiskShell {
			continue
		}
		if service := pages.ServiceKey(u.Query()); exportable(service) {
			dom.SetAttr(a, "href", RiskPageFile(service))
		}
	}
}

func writeFile(name string, render func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// copyFS copies the tree rooted at root inside fsys to dst.
func copyFS(fsys fs.FS, root, dst string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := p
		if root != "." {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		}
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

