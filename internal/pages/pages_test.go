package pages

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ziadkadry99/riskpanes/internal/content"
	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/panes"
	"github.com/ziadkadry99/riskpanes/internal/risk"
	"github.com/ziadkadry99/riskpanes/internal/storage"
	"github.com/ziadkadry99/riskpanes/web"
)

type countingFetcher struct {
	inner fetch.Fetcher
	calls int
}

func (c *countingFetcher) FetchJSON(ctx context.Context, url string, v any) error {
	c.calls++
	return c.inner.FetchJSON(ctx, url, v)
}

type fixture struct {
	builder *Builder
	fetcher *countingFetcher
	slots   *storage.Memory
}

func setupBuilder(t *testing.T) *fixture {
	t.Helper()
	lib, err := content.Load(web.Content())
	if err != nil {
		t.Fatalf("loading content: %v", err)
	}
	f := &fixture{
		fetcher: &countingFetcher{inner: fetch.FSFetcher{FS: web.Data()}},
		slots:   storage.NewMemory(),
	}
	reg := pane.NewRegistry()
	if err := panes.RegisterAll(reg, panes.Deps{Fetcher: f.fetcher, Slots: f.slots, Content: lib}); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	f.builder = &Builder{Registry: reg, Shells: web.Shells()}
	return f
}

func query(service string) url.Values {
	return url.Values{"service": {service}}
}

func text(t *testing.T, p *Page, id string) string {
	t.Helper()
	n := p.Doc.GetElementByID(id)
	if n == nil {
		t.Fatalf("no #%s", id)
	}
	return dom.TextContent(n)
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"security":       "Security",
		"emailAccounts":  "EmailAccounts",
		"email-accounts": "Email-Accounts",
		"set_up":         "Set_Up",
		"two words":      "Two Words",
		"wifi 2go":       "Wifi 2go",
		"":               "",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestServiceKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"service=security", "security"},
		{"service=%20backups%20", "backups"},
		{"service=", ""},
		{"other=x", ""},
		{"service=Security", "Security"},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.raw)
		if got := ServiceKey(q); got != tt.want {
			t.Errorf("ServiceKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRiskPageMissingService(t *testing.T) {
	f := setupBuilder(t)
	p, err := f.builder.Risk(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	defer p.Close()

	if f.fetcher.calls != 0 {
		t.Errorf("missing service should not fetch, got %d calls", f.fetcher.calls)
	}
	if got := text(t, p, "pageTitle"); got != "Risk Analysis" {
		t.Errorf("heading = %q", got)
	}
	if p.Doc.Title() != "Risk Analysis" {
		t.Errorf("title = %q", p.Doc.Title())
	}
	intro := p.Doc.GetElementByID(IntroHostID)
	if got := dom.InnerHTML(intro); got != "<p>Missing required URL parameter: <code>?service=</code></p>" {
		t.Errorf("intro = %q", got)
	}
	if !dom.HasClass(intro, "intro-text") {
		t.Error("intro host should carry intro-text")
	}
	for _, id := range []string{TableHostID, SummaryHostID} {
		if n := p.Doc.GetElementByID(id); n == nil || n.FirstChild != nil {
			t.Errorf("#%s should exist and be empty", id)
		}
	}
	if err := p.Toggle("mfa", risk.StatusEnabled); !errors.Is(err, panes.ErrNoSuchControl) {
		t.Errorf("Toggle err = %v", err)
	}
}

func TestRiskPage(t *testing.T) {
	f := setupBuilder(t)
	p, err := f.builder.Risk(context.Background(), query("security"))
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	defer p.Close()

	if got := text(t, p, "pageTitle"); got != "Security Risk Analysis" {
		t.Errorf("heading = %q", got)
	}
	if p.Doc.Title() != "Security Risk Analysis" {
		t.Errorf("title = %q", p.Doc.Title())
	}
	table := p.Doc.GetElementByID(TableHostID)
	if got := dom.TextContent(dom.FirstByClass(table, "rt-title")); got != "Security Risk Table" {
		t.Errorf("table title = %q", got)
	}
	if !strings.Contains(text(t, p, IntroHostID), "analyze security risks") {
		t.Errorf("intro = %q", text(t, p, IntroHostID))
	}
	nav := dom.FirstByClass(p.Doc.Root, "nav-links")
	if nav == nil || dom.TextContent(nav) != "Back to Main Menu" {
		t.Error("risk page should link back to the main menu")
	}
	if got := p.Runtime.Instances(); len(got) != 3 {
		t.Errorf("instances = %v", got)
	}
	if v, _ := p.Runtime.State.Get("page"); v != "risk" {
		t.Errorf("state page = %v", v)
	}

	// Defaults: mfa, password manager, disk encryption are off: 30+20+15.
	sum, ok := p.Summary()
	if !ok || sum.Total != 65 || sum.Title != "High" {
		t.Errorf("summary = %+v, %v", sum, ok)
	}

	if err := p.Toggle("mfa", risk.StatusEnabled); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	sum, _ = p.Summary()
	if sum.Total != 35 || sum.Title != "Moderate" {
		t.Errorf("summary after toggle = %+v", sum)
	}
	if !strings.Contains(p.Fragment(SummaryHostID), "35%") {
		t.Errorf("summary fragment = %s", p.Fragment(SummaryHostID))
	}

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `data-panes-no-auto`) {
		t.Error("risk page should opt out of auto bootstrap")
	}
}

func TestRiskPageStatePersistsAcrossPages(t *testing.T) {
	f := setupBuilder(t)
	first, err := f.builder.Risk(context.Background(), query("backups"))
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Toggle("offsite", risk.StatusEnabled); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := f.builder.Risk(context.Background(), query("backups"))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	sum, _ := second.Summary()
	// versioning 25 + restore_test 25 remain.
	if sum.Total != 50 {
		t.Errorf("total = %d, want 50", sum.Total)
	}
}

type recordedChange struct {
	page string
	ev   risk.ChangeEvent
}

type fakeRecorder struct {
	changes []recordedChange
}

func (r *fakeRecorder) RecordChange(_ context.Context, pageID string, ev risk.ChangeEvent) {
	r.changes = append(r.changes, recordedChange{page: pageID, ev: ev})
}

func TestRiskPageRecordsChanges(t *testing.T) {
	f := setupBuilder(t)
	rec := &fakeRecorder{}
	f.builder.Recorder = rec

	p, err := f.builder.Risk(context.Background(), query("security"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Toggle("mfa", risk.StatusEnabled); err != nil {
		t.Fatal(err)
	}
	if err := p.Toggle("firewall", risk.StatusDisabled); err != nil {
		t.Fatal(err)
	}
	p.Close()

	want := []risk.ChangeEvent{
		{Category: "security", ID: "mfa", Value: risk.StatusEnabled},
		{Category: "security", ID: "firewall", Value: risk.StatusDisabled},
	}
	if len(rec.changes) != len(want) {
		t.Fatalf("recorded %d changes, want %d", len(rec.changes), len(want))
	}
	for i, w := range want {
		if rec.changes[i].ev != w {
			t.Errorf("change %d = %+v, want %+v", i, rec.changes[i].ev, w)
		}
		if rec.changes[i].page != p.Runtime.ID {
			t.Errorf("change %d page = %q, want %q", i, rec.changes[i].page, p.Runtime.ID)
		}
	}

	// The subscription goes away with the page.
	p.Runtime.Events.Emit(risk.ChangedEvent, want[0])
	if len(rec.changes) != len(want) {
		t.Error("recorder still subscribed after Close")
	}
}

func TestRiskPageUnknownService(t *testing.T) {
	f := setupBuilder(t)
	p, err := f.builder.Risk(context.Background(), query("nope"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if got := text(t, p, TableHostID); !strings.Contains(got, `No rows found for "nope"`) {
		t.Errorf("table = %q", got)
	}
}

func TestPageClose(t *testing.T) {
	f := setupBuilder(t)
	p, err := f.builder.Risk(context.Background(), query("security"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Doc.TotalListeners() == 0 {
		t.Fatal("expected radio listeners")
	}
	p.Close()
	p.Close()

	if !p.Runtime.Lifecycle.IsDestroyed() {
		t.Error("lifecycle should be destroyed")
	}
	if p.Doc.TotalListeners() != 0 {
		t.Errorf("listeners = %d", p.Doc.TotalListeners())
	}
	if p.Runtime.Events.Count(risk.ChangedEvent) != 0 {
		t.Error("bus should be cleared")
	}
	if len(p.Runtime.State.Keys()) != 0 {
		t.Error("state should be cleared")
	}
}

func TestPageClosesWithContext(t *testing.T) {
	f := setupBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	p, err := f.builder.Risk(ctx, query("security"))
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for !p.Runtime.Lifecycle.IsDestroyed() {
		if time.Now().After(deadline) {
			t.Fatal("page not torn down after its context ended")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPageContextEndsDuringToggles(t *testing.T) {
	f := setupBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	p, err := f.builder.Risk(ctx, query("security"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	go cancel()

	values := []risk.Status{risk.StatusEnabled, risk.StatusDisabled}
	deadline := time.Now().Add(2 * time.Second)
	for i := 0; ; i++ {
		err := p.Toggle("mfa", values[i%2])
		if errors.Is(err, ErrPageClosed) {
			break
		}
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		_ = p.Fragment(SummaryHostID)
		if time.Now().After(deadline) {
			t.Fatal("page not torn down after its context ended")
		}
	}

	if p.Doc.TotalListeners() != 0 {
		t.Errorf("listeners = %d after teardown", p.Doc.TotalListeners())
	}
}

func TestHomePage(t *testing.T) {
	f := setupBuilder(t)
	p, err := f.builder.Home(context.Background())
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	defer p.Close()

	cards := dom.QueryClass(p.Doc.Root, "risk-card")
	if len(cards) != 3 {
		t.Fatalf("got %d cards", len(cards))
	}
	link, _ := dom.Attr(dom.QueryTag(cards[0], "a")[0], "href")
	if link != "riskPage.html?service=security" {
		t.Errorf("first card link = %q", link)
	}
	intro := dom.FirstByClass(p.Doc.Root, "intro-text")
	if !strings.Contains(dom.TextContent(intro), "Pick a risk analysis tool") {
		t.Errorf("intro = %q", dom.TextContent(intro))
	}
	if f.fetcher.calls != 0 {
		t.Errorf("home page should not fetch data, got %d", f.fetcher.calls)
	}
	if got := p.Runtime.Instances(); len(got) != 2 {
		t.Errorf("instances = %v", got)
	}
}

func TestBuildAppShell(t *testing.T) {
	doc := dom.New()
	shell, err := BuildAppShell(doc, ShellOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if dom.TextContent(shell.Heading) != "Risk Analysis" {
		t.Errorf("heading = %q", dom.TextContent(shell.Heading))
	}
	if shell.Nav != nil {
		t.Error("no nav without an active key")
	}
	if id, _ := dom.Attr(shell.Main, "id"); id != "root" || !dom.HasClass(shell.Main, "split") {
		t.Errorf("main = %s", dom.OuterHTML(shell.Main))
	}
	if dom.FirstByClass(shell.Header, "theme-toggle") == nil {
		t.Error("missing theme toggle")
	}

	shell, _ = BuildAppShell(doc, ShellOptions{PageTitle: "X", ActiveNavKey: "home"})
	a := dom.QueryTag(shell.Nav, "a")[0]
	if v, _ := dom.Attr(a, "aria-current"); v != "page" {
		t.Error("home nav link should be current")
	}
	if len(dom.QueryClass(doc.Root, "app")) != 1 {
		t.Error("rebuilding should replace the previous shell")
	}

	empty, _ := dom.ParseString("<html><body></body></html>")
	if _, err := BuildAppShell(empty, ShellOptions{}); !errors.Is(err, ErrMissingApp) {
		t.Errorf("err = %v", err)
	}
}

func TestMissingShell(t *testing.T) {
	b := &Builder{Registry: pane.NewRegistry(), Shells: fstest.MapFS{}}
	if _, err := b.Home(context.Background()); err == nil {
		t.Error("expected an error for a missing shell")
	}
	if _, err := b.Risk(context.Background(), query("x")); err == nil {
		t.Error("expected an error for a missing shell")
	}
}
