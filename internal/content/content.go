// Package content loads the text the intro panes render: one markdown file
// per topic under intro/ and the home page cards from cards.yaml.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// DefaultIntroKey is used when an intro host names no key.
const DefaultIntroKey = "main"

// Card is one entry of the home page card grid.
type Card struct {
	Key         string `yaml:"-"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
}

// Library holds rendered intro HTML keyed by topic and the ordered cards.
type Library struct {
	intros      map[string]string
	cards       []Card
	cardsLoaded bool
}

// Empty returns a library with no intros and no card data.
func Empty() *Library {
	return &Library{intros: make(map[string]string)}
}

// Load reads intro/**/*.md (or .html) and cards.yaml from fsys. Both are
// optional.
func Load(fsys fs.FS) (*Library, error) {
	lib := Empty()
	md := newMarkdown()

	matches, err := doublestar.Glob(fsys, "intro/**/*.{md,html}")
	if err != nil {
		return nil, fmt.Errorf("listing intro files: %w", err)
	}
	for _, name := range matches {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		ext := path.Ext(name)
		key := strings.TrimSuffix(path.Base(name), ext)
		if ext == ".html" {
			lib.intros[key] = string(src)
			continue
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		lib.intros[key] = buf.String()
	}

	data, err := fs.ReadFile(fsys, "cards.yaml")
	switch {
	case err == nil:
		cards, err := ParseCards(data)
		if err != nil {
			return nil, err
		}
		lib.SetCards(cards)
	case !isNotExist(err):
		return nil, fmt.Errorf("reading cards.yaml: %w", err)
	}
	return lib, nil
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// ParseCards decodes a cards document: a mapping of card key to card, kept
// in file order.
func ParseCards(data []byte) ([]Card, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cards: %w", err)
	}
	if len(doc.Content) == 0 {
		return []Card{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing cards: expected a mapping, got %s", kindName(root.Kind))
	}
	cards := make([]Card, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var c Card
		if err := root.Content[i+1].Decode(&c); err != nil {
			return nil, fmt.Errorf("parsing card %q: %w", root.Content[i].Value, err)
		}
		c.Key = root.Content[i].Value
		c.Description = strings.TrimSpace(c.Description)
		cards = append(cards, c)
	}
	return cards, nil
}

// Intro returns the HTML for key, falling back to the main intro when key is
// empty. Unknown keys return "".
func (l *Library) Intro(key string) string {
	if l == nil {
		return ""
	}
	if key == "" {
		key = DefaultIntroKey
	}
	return l.intros[key]
}

// SetIntro stores raw HTML for key.
func (l *Library) SetIntro(key, htmlText string) {
	l.intros[key] = htmlText
}

// Cards returns the cards and whether card data was loaded at all.
func (l *Library) Cards() ([]Card, bool) {
	if l == nil || !l.cardsLoaded {
		return nil, false
	}
	return l.cards, true
}

// SetCards replaces the card list.
func (l *Library) SetCards(cards []Card) {
	l.cards = cards
	l.cardsLoaded = true
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
