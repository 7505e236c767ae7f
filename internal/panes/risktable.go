package panes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/risk"
	"github.com/ziadkadry99/riskpanes/internal/storage"
)

const (
	defaultTableTitle = "Risk Table"
	strikeClass       = "rt-strike"
)

var tableColumns = []string{"Control", "Status", "Pros", "Cons", "Danger %"}

// ErrNoSuchControl is returned by ToggleControl when no radio matches.
var ErrNoSuchControl = errors.New("no such control")

// RiskTableConfig configures a risk table pane.
type RiskTableConfig struct {
	RiskKey    string
	Title      string
	DataURL    string
	StorageKey string
}

// RiskTableConfigFrom reads the host's data attributes and applies defaults.
func RiskTableConfigFrom(host *html.Node) RiskTableConfig {
	return RiskTableConfig{
		RiskKey:    strings.TrimSpace(firstNonEmpty(dom.Data(host, "risk-key"), dom.Data(host, "category"))),
		Title:      firstNonEmpty(dom.Data(host, "title"), defaultTableTitle),
		DataURL:    firstNonEmpty(dom.Data(host, "data-url"), risk.DefaultTablesURL),
		StorageKey: firstNonEmpty(dom.Data(host, "storage-key"), risk.DefaultStorageKey),
	}
}

// RiskTable is a live risk table pane.
type RiskTable struct {
	cfg     RiskTableConfig
	doc     *dom.Document
	host    *html.Node
	events  *pane.EventBus
	slots   storage.Slots
	state   risk.Selection
	cat     risk.CategoryState
	removes []func()
}

// RiskTableFactory builds risk table panes that read rows through f and keep
// their selection in slots.
func RiskTableFactory(f fetch.Fetcher, slots storage.Slots) pane.Factory {
	return func(ctx context.Context, host *html.Node, api pane.API) (pane.Instance, error) {
		return NewRiskTable(ctx, host, api, RiskTableConfigFrom(host), f, slots), nil
	}
}

// NewRiskTable renders a risk table into host. Configuration and data errors
// are shown inside the host; the pane is returned either way.
func NewRiskTable(ctx context.Context, host *html.Node, api pane.API, cfg RiskTableConfig, f fetch.Fetcher, slots storage.Slots) *RiskTable {
	t := &RiskTable{cfg: cfg, doc: api.Doc, host: host, events: api.Events, slots: slots}

	dom.Clear(host)
	renderTitle(host, cfg.Title, "rt-title")
	if cfg.RiskKey == "" {
		renderMessage(host, `Missing data-risk-key (e.g. data-risk-key="security").`, "rt-error", false)
		return t
	}

	loaded := storage.LoadState(ctx, slots, cfg.StorageKey)
	if !loaded.OK() {
		slog.Debug("using empty risk state", "slot", cfg.StorageKey, "status", loaded.Status, "error", loaded.Err)
	}
	t.state = loaded.Value
	t.cat = t.state.Category(cfg.RiskKey)

	if f == nil {
		renderMessage(host, errNoFetcher.Error(), "rt-error", false)
		return t
	}
	var tables risk.Tables
	if err := f.FetchJSON(ctx, cfg.DataURL, &tables); err != nil {
		renderMessage(host, err.Error(), "rt-error", false)
		return t
	}
	rows, err := tables.Rows(cfg.RiskKey)
	if err != nil {
		renderMessage(host, err.Error(), "rt-error", false)
		return t
	}
	if len(rows) == 0 {
		renderMessage(host, fmt.Sprintf("No rows found for %q in %s.", cfg.RiskKey, cfg.DataURL), "rt-error", false)
		return t
	}
	t.renderTable(rows)
	return t
}

func (t *RiskTable) renderTable(rows []risk.Control) {
	table := dom.El("table", "rt-table", "")
	headRow := dom.El("tr", "", "")
	for _, name := range tableColumns {
		dom.Append(headRow, dom.El("th", "", name))
	}
	dom.Append(table, dom.Append(dom.El("thead", "", ""), headRow))

	body := dom.El("tbody", "", "")
	for _, row := range rows {
		dom.Append(body, t.renderRow(row))
	}
	dom.Append(table, body)
	dom.Append(t.host, table)
}

func (t *RiskTable) renderRow(row risk.Control) *html.Node {
	id := row.EffectiveID()
	status := risk.EffectiveStatus(row, t.cat)

	tr := dom.El("tr", "", "")
	dom.SetData(tr, "control-id", id)
	dom.Append(tr, dom.El("td", "rt-control", row.DisplayLabel()))

	tdStatus := dom.El("td", "rt-status", "")
	tdPros := dom.Append(dom.El("td", "", ""), makeList(row.Pros.Strings()))
	tdCons := dom.Append(dom.El("td", "", ""), makeList(row.Cons.Strings()))
	tdDanger := dom.El("td", "rt-danger", risk.FormatPercent(risk.DangerFor(row, status)))

	group := "rt_" + t.cfg.RiskKey + "_" + id
	for _, opt := range []struct {
		value risk.Status
		label string
	}{
		{risk.StatusEnabled, "Enabled"},
		{risk.StatusDisabled, "Disabled"},
	} {
		dom.Append(tdStatus, t.makeRadio(group, opt.value, opt.label, status, func(next risk.Status) {
			t.cat[id] = string(next)
			if res := storage.SaveState(context.Background(), t.slots, t.cfg.StorageKey, t.state); !res.OK() {
				slog.Debug("risk state not saved", "slot", t.cfg.StorageKey, "status", res.Status, "error", res.Err)
			}
			applyStrike(tdPros, tdCons, next)
			dom.SetText(tdDanger, risk.FormatPercent(risk.DangerFor(row, next)))
			if t.events != nil {
				t.events.Emit(risk.ChangedEvent, risk.ChangeEvent{Category: t.cfg.RiskKey, ID: id, Value: next})
			}
		}))
	}
	applyStrike(tdPros, tdCons, status)

	return dom.Append(tr, tdStatus, tdPros, tdCons, tdDanger)
}

func (t *RiskTable) makeRadio(group string, value risk.Status, text string, current risk.Status, onChange func(risk.Status)) *html.Node {
	input := dom.El("input", "", "")
	dom.SetAttr(input, "type", "radio")
	dom.SetAttr(input, "name", group)
	dom.SetAttr(input, "value", string(value))
	dom.SetChecked(input, current == value)

	if t.doc != nil {
		remove := t.doc.AddEventListener(input, "change", func(dom.Event) {
			if !dom.Checked(input) {
				return
			}
			v, _ := dom.Attr(input, "value")
			onChange(risk.NormalizeStatus(v))
		})
		t.removes = append(t.removes, remove)
	}

	label := dom.El("label", "rt-radio", "")
	return dom.Append(label, input, dom.El("span", "", text))
}

// Destroy detaches every radio listener. Calling it again does nothing.
func (t *RiskTable) Destroy() {
	removes := t.removes
	t.removes = nil
	for _, remove := range removes {
		remove()
	}
}

// Category returns the configured category key.
func (t *RiskTable) Category() string { return t.cfg.RiskKey }

// Toggle selects value for the control id the way a user click would.
func (t *RiskTable) Toggle(id string, value risk.Status) error {
	return ToggleControl(t.doc, t.host, t.cfg.RiskKey, id, value)
}

// ToggleControl checks the radio for category/id/value below root, unchecks
// the rest of its group and dispatches change on it.
func ToggleControl(doc *dom.Document, root *html.Node, category, id string, value risk.Status) error {
	if doc == nil || root == nil {
		return fmt.Errorf("%w: no document", ErrNoSuchControl)
	}
	group := "rt_" + category + "_" + id
	radios := dom.FindAll(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "input" {
			return false
		}
		name, _ := dom.Attr(n, "name")
		return name == group
	})
	var target *html.Node
	for _, r := range radios {
		if v, _ := dom.Attr(r, "value"); v == string(value) {
			target = r
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s/%s=%s", ErrNoSuchControl, category, id, value)
	}
	for _, r := range radios {
		dom.SetChecked(r, r == target)
	}
	doc.Dispatch(target, "change")
	return nil
}

func makeList(items []string) *html.Node {
	ul := dom.El("ul", "rt-list", "")
	for _, text := range items {
		dom.Append(ul, dom.El("li", "", text))
	}
	return ul
}

// applyStrike strikes the pros when the control is off and the cons when it
// is on.
func applyStrike(pros, cons *html.Node, status risk.Status) {
	enabled := status == risk.StatusEnabled
	dom.ToggleClass(pros, strikeClass, !enabled)
	dom.ToggleClass(cons, strikeClass, enabled)
}
