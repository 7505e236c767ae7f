// Package panes implements the panes of the risk analysis pages: the intro
// text, the home page cards, the per-topic risk table and its summary.
package panes

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/content"
	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/storage"
)

// Registered pane names.
const (
	NameIntro       = "intro"
	NameIntroCards  = "intro-cards"
	NameRiskTable   = "risk-table"
	NameRiskSummary = "risk-summary"
)

var errNoFetcher = errors.New("no data fetcher configured")

// ContentSource provides the text of the intro panes.
type ContentSource interface {
	Intro(key string) string
	Cards() ([]content.Card, bool)
}

// Deps are the collaborators shared by every pane of a process.
type Deps struct {
	Fetcher fetch.Fetcher
	Slots   storage.Slots
	Content ContentSource
}

// RegisterAll registers every pane under its name.
func RegisterAll(reg *pane.Registry, deps Deps) error {
	factories := map[string]pane.Factory{
		NameIntro:       IntroFactory(deps.Content),
		NameIntroCards:  IntroCardsFactory(deps.Content),
		NameRiskTable:   RiskTableFactory(deps.Fetcher, deps.Slots),
		NameRiskSummary: RiskSummaryFactory(deps.Fetcher, deps.Slots),
	}
	for name, f := range factories {
		if err := reg.Register(name, f); err != nil {
			return fmt.Errorf("registering %s pane: %w", name, err)
		}
	}
	return nil
}

// renderTitle appends an h2 title to host.
func renderTitle(host *html.Node, text, class string) {
	dom.Append(host, dom.El("h2", class, text))
}

// renderMessage shows a paragraph in host, replacing its content when
// replace is set and appending otherwise.
func renderMessage(host *html.Node, text, class string, replace bool) {
	p := dom.El("p", class, text)
	if replace {
		dom.ReplaceChildren(host, p)
		return
	}
	dom.Append(host, p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
