package panes

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/content"
	"github.com/ziadkadry99/riskpanes/internal/dom"
	"github.com/ziadkadry99/riskpanes/internal/pane"
)

// IntroFactory renders the intro text named by the host's data-intro-key.
func IntroFactory(src ContentSource) pane.Factory {
	return func(_ context.Context, host *html.Node, _ pane.API) (pane.Instance, error) {
		key := firstNonEmpty(dom.Data(host, "intro-key"), content.DefaultIntroKey)
		var text string
		if src != nil {
			text = src.Intro(key)
		}
		if err := dom.SetInnerHTML(host, text); err != nil {
			slog.Debug("intro not rendered", "key", key, "error", err)
			dom.Clear(host)
		}
		return pane.Noop, nil
	}
}

// IntroCardsFactory renders the home page card grid into the host.
func IntroCardsFactory(src ContentSource) pane.Factory {
	return func(_ context.Context, host *html.Node, _ pane.API) (pane.Instance, error) {
		var (
			cards []content.Card
			ok    bool
		)
		if src != nil {
			cards, ok = src.Cards()
		}
		switch {
		case !ok:
			renderMessage(host, "introCards data not loaded.", "", true)
		case len(cards) == 0:
			renderMessage(host, "No cards configured.", "", true)
		default:
			nodes := make([]*html.Node, 0, len(cards))
			for _, c := range cards {
				nodes = append(nodes, cardNode(c))
			}
			dom.ReplaceChildren(host, nodes...)
		}
		return pane.Noop, nil
	}
}

func cardNode(c content.Card) *html.Node {
	a := dom.El("a", "", "")
	dom.SetAttr(a, "href", firstNonEmpty(c.Link, "#"))
	dom.Append(a,
		dom.El("h2", "", firstNonEmpty(c.Title, c.Key)),
		dom.El("p", "", c.Description),
	)
	card := dom.El("div", "risk-card", "")
	return dom.Append(card, a)
}
