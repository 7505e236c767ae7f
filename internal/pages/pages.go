// Package pages builds the two pages of the site on top of the pane
// runtime: the home page, which lets the runtime find its panes, and the
// per-topic risk page, which assembles its panes explicitly from the
// ?service= parameter.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/panes"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

// Shell file names inside Builder.Shells.
const (
	HomeShell = "index.html"
	RiskShell = "riskPage.html"
)

const missingParamHTML = "<p>Missing required URL parameter: <code>?service=</code></p>"

// Host element ids on the risk page.
const (
	IntroHostID   = "introHost"
	TableHostID   = "tableHost"
	SummaryHostID = "summaryHost"
)

// ChangeRecorder is told about every toggle made on a risk page.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, pageID string, ev risk.ChangeEvent)
}

// Builder creates pages from the shell documents in Shells using the panes
// registered in Registry.
type Builder struct {
	Registry   *pane.Registry
	Shells     fs.FS
	StorageKey string
	Recorder   ChangeRecorder // optional
}

// ErrPageClosed is returned by operations on a page that was torn down.
var ErrPageClosed = errors.New("page closed")

// Page is one rendered page and the runtime that owns its panes. Its
// methods serialise access to the document, including the teardown that
// runs when the page's context ends.
type Page struct {
	Doc     *dom.Document
	Runtime *pane.Runtime
	Service string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Home builds the home page. Its panes are found by auto-bootstrap.
func (b *Builder) Home(ctx context.Context) (*Page, error) {
	doc, err := b.shell(HomeShell)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	rt := pane.NewRuntime(b.Registry, doc, pane.Options{})
	p := &Page{Doc: doc, Runtime: rt, cancel: cancel}
	p.mu.Lock()
	defer p.mu.Unlock()

	rt.Lifecycle.Add(rt.DestroyAll)
	rt.Lifecycle.DestroyOnDone(ctx, &p.mu)
	rt.AutoBootstrap(ctx)
	return p, nil
}

// Risk builds the risk page for the ?service= value in query.
func (b *Builder) Risk(ctx context.Context, query url.Values) (*Page, error) {
	doc, err := b.shell(RiskShell)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)

	lifecycle := pane.NewLifecycle()
	shell, err := BuildAppShell(doc, ShellOptions{PageTitle: defaultTitle, ActiveNavKey: navBack})
	if err != nil {
		cancel()
		return nil, err
	}
	events := pane.NewEventBus()
	state := pane.NewStateStore(events, pane.Entry{Key: "page", Value: "risk"})
	rt := pane.NewRuntime(b.Registry, doc, pane.Options{Events: events, State: state, Lifecycle: lifecycle})

	service := ServiceKey(query)
	p := &Page{Doc: doc, Runtime: rt, Service: service, cancel: cancel}
	p.mu.Lock()
	defer p.mu.Unlock()

	lifecycle.Add(func() { events.Clear() })
	lifecycle.Add(state.Clear)
	lifecycle.DestroyOnDone(ctx, &p.mu)

	if b.Recorder != nil {
		off, err := events.On(risk.ChangedEvent, func(ev pane.Event) {
			if change, ok := ev.Detail.(risk.ChangeEvent); ok {
				b.Recorder.RecordChange(ctx, rt.ID, change)
			}
		})
		if err != nil {
			p.destroy()
			return nil, err
		}
		lifecycle.Add(off)
	}

	if service == "" {
		intro := host("div", IntroHostID, "intro-text")
		if err := dom.SetInnerHTML(intro, missingParamHTML); err != nil {
			p.destroy()
			return nil, err
		}
		dom.Append(shell.ContentHost, intro, host("div", TableHostID, ""), host("div", SummaryHostID, ""))
		dom.SetText(shell.Heading, defaultTitle)
		doc.SetTitle(defaultTitle)
		return p, nil
	}

	display := TitleCase(service)
	dom.SetText(shell.Heading, display+" Risk Analysis")
	doc.SetTitle(display + " Risk Analysis")

	intro := paneHost(IntroHostID, "intro-text", panes.NameIntro,
		"intro-key", service)
	table := paneHost(TableHostID, "", panes.NameRiskTable,
		"risk-key", service,
		"title", display+" Risk Table",
		"storage-key", b.StorageKey)
	summary := paneHost(SummaryHostID, "", panes.NameRiskSummary,
		"risk-key", service,
		"storage-key", b.StorageKey)
	dom.Append(shell.ContentHost, intro, table, summary)

	rt.Bootstrap(ctx, shell.ContentHost)
	lifecycle.Add(rt.DestroyAll)
	return p, nil
}

func (b *Builder) shell(name string) (*dom.Document, error) {
	if b.Shells == nil {
		return dom.New(), nil
	}
	f, err := b.Shells.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening shell %s: %w", name, err)
	}
	defer f.Close()
	return dom.Parse(f)
}

func host(tag, id, class string) *html.Node {
	n := dom.El(tag, class, "")
	dom.SetAttr(n, "id", id)
	return n
}

// paneHost creates a pane host; data holds data-* name/value pairs and empty
// values are skipped.
func paneHost(id, class, name string, data ...string) *html.Node {
	n := host("div", id, class)
	dom.SetAttr(n, pane.AttrPane, name)
	for i := 0; i+1 < len(data); i += 2 {
		if data[i+1] != "" {
			dom.SetData(n, data[i], data[i+1])
		}
	}
	return n
}

// Toggle sets a control of the page's table as a click on its radio would.
func (p *Page) Toggle(id string, value risk.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Runtime.Lifecycle.IsDestroyed() {
		return ErrPageClosed
	}
	if p.Service == "" {
		return fmt.Errorf("%w: page has no service", panes.ErrNoSuchControl)
	}
	if inst, ok := p.Runtime.Instance(panes.NameRiskTable); ok {
		if t, ok := inst.(*panes.RiskTable); ok {
			return t.Toggle(id, value)
		}
	}
	return panes.ToggleControl(p.Doc, p.Doc.Root, p.Service, id, value)
}

// Summary returns the summary pane's current result.
func (p *Page) Summary() (risk.Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	inst, ok := p.Runtime.Instance(panes.NameRiskSummary)
	if !ok {
		return risk.Summary{}, false
	}
	s, ok := inst.(*panes.RiskSummary)
	if !ok {
		return risk.Summary{}, false
	}
	return s.Snapshot(), true
}

// Fragment renders the element with the given id, or "" when absent.
func (p *Page) Fragment(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.Doc.GetElementByID(id)
	if n == nil {
		return ""
	}
	return dom.OuterHTML(n)
}

// Render writes the page document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Doc.Render(w)
}

// Edit runs fn with exclusive access to the document.
func (p *Page) Edit(fn func(doc *dom.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.Doc)
}

// Close tears the page down. It is safe to call more than once.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroy()
}

func (p *Page) destroy() {
	p.Runtime.Lifecycle.Destroy()
	if p.cancel != nil {
		p.cancel()
	}
}

// ServiceKey returns the trimmed ?service= value.
func ServiceKey(query url.Values) string {
	return strings.TrimSpace(query.Get("service"))
}

var titleWord = regexp.MustCompile(`(^|\s|[-_])\w`)

// TitleCase upper-cases the first word character of s and every word
// character following whitespace, '-' or '_'. Everything else is kept.
func TitleCase(s string) string {
	return titleWord.ReplaceAllStringFunc(s, strings.ToUpper)
}
