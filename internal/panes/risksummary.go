package panes

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/risk"
	"github.com/ziadkadry99/riskpanes/internal/storage"
)

var summaryColumns = []string{"Message", "Risk Level", "Total Danger"}

// RiskSummaryConfig configures a risk summary pane.
type RiskSummaryConfig struct {
	RiskKey     string
	DataURL     string
	MessagesURL string
	StorageKey  string
}

// RiskSummaryConfigFrom reads the host's data attributes and applies
// defaults.
func RiskSummaryConfigFrom(host *html.Node) RiskSummaryConfig {
	return RiskSummaryConfig{
		RiskKey:     strings.TrimSpace(firstNonEmpty(dom.Data(host, "risk-key"), dom.Data(host, "category"))),
		DataURL:     firstNonEmpty(dom.Data(host, "data-url"), risk.DefaultTablesURL),
		MessagesURL: firstNonEmpty(dom.Data(host, "messages-url"), risk.DefaultMessagesURL),
		StorageKey:  firstNonEmpty(dom.Data(host, "storage-key"), risk.DefaultStorageKey),
	}
}

// RiskSummary is a live risk summary pane. Rows and message ranges are
// fetched once; every change in its category re-reads the slot.
type RiskSummary struct {
	cfg    RiskSummaryConfig
	host   *html.Node
	slots  storage.Slots
	rows   []risk.Control
	ranges []risk.MessageRange
	last   risk.Summary
	loaded bool
	off    func()
}

// RiskSummaryFactory builds risk summary panes.
func RiskSummaryFactory(f fetch.Fetcher, slots storage.Slots) pane.Factory {
	return func(ctx context.Context, host *html.Node, api pane.API) (pane.Instance, error) {
		return NewRiskSummary(ctx, host, api, RiskSummaryConfigFrom(host), f, slots), nil
	}
}

// NewRiskSummary renders a summary into host and subscribes it to
// risk:changed.
func NewRiskSummary(ctx context.Context, host *html.Node, api pane.API, cfg RiskSummaryConfig, f fetch.Fetcher, slots storage.Slots) *RiskSummary {
	s := &RiskSummary{cfg: cfg, host: host, slots: slots, last: risk.Summary{Category: cfg.RiskKey}}
	if cfg.RiskKey == "" {
		renderMessage(host, "Missing data-risk-key.", "rs-error", true)
		return s
	}

	if api.Events != nil {
		off, err := api.Events.On(risk.ChangedEvent, s.onChanged)
		if err == nil {
			s.off = off
			if api.Lifecycle != nil {
				api.Lifecycle.Add(off)
			}
		}
	}

	if err := s.load(ctx, f); err != nil {
		renderMessage(host, err.Error(), "rs-error", true)
		return s
	}
	s.rebuild(ctx)
	return s
}

func (s *RiskSummary) load(ctx context.Context, f fetch.Fetcher) error {
	if f == nil {
		return errNoFetcher
	}
	var tables risk.Tables
	if err := f.FetchJSON(ctx, s.cfg.DataURL, &tables); err != nil {
		return err
	}
	rows, err := tables.Rows(s.cfg.RiskKey)
	if err != nil {
		return err
	}
	var ranges []risk.MessageRange
	if err := f.FetchJSON(ctx, s.cfg.MessagesURL, &ranges); err != nil {
		return err
	}
	s.rows = rows
	s.ranges = ranges
	s.loaded = true
	return nil
}

func (s *RiskSummary) onChanged(ev pane.Event) {
	change, ok := ev.Detail.(risk.ChangeEvent)
	if !ok || change.Category != s.cfg.RiskKey {
		return
	}
	if !s.loaded {
		return
	}
	s.rebuild(context.Background())
}

func (s *RiskSummary) rebuild(ctx context.Context) {
	res := storage.LoadState(ctx, s.slots, s.cfg.StorageKey)
	if !res.OK() {
		slog.Debug("summary using empty risk state", "slot", s.cfg.StorageKey, "status", res.Status)
	}
	cat := res.Value[s.cfg.RiskKey]
	s.last = risk.Summarize(s.cfg.RiskKey, s.rows, s.ranges, cat)
	s.render()
}

func (s *RiskSummary) render() {
	dom.Clear(s.host)
	renderTitle(s.host, "Risk Summary", "rt-title")

	headRow := dom.El("tr", "", "")
	for _, name := range summaryColumns {
		dom.Append(headRow, dom.El("th", "", name))
	}
	bodyRow := dom.Append(dom.El("tr", "", ""),
		dom.El("td", "rs-message", s.last.Message),
		dom.El("td", "rs-level", s.last.Title),
		dom.El("td", "rs-total", risk.FormatPercent(s.last.Total)),
	)
	table := dom.Append(dom.El("table", "rt-table", ""),
		dom.Append(dom.El("thead", "", ""), headRow),
		dom.Append(dom.El("tbody", "", ""), bodyRow),
	)
	dom.Append(s.host, table)
}

// Snapshot returns the last computed summary.
func (s *RiskSummary) Snapshot() risk.Summary {
	return s.last
}

// Destroy unsubscribes from the bus. Calling it again does nothing.
func (s *RiskSummary) Destroy() {
	if s.off != nil {
		s.off()
	}
}
