package risk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Status is the persisted on/off state of a control.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// ChangedEvent is the bus event emitted when a control is toggled.
const ChangedEvent = "risk:changed"

// Default slot and data locations shared by the table and summary panes.
const (
	DefaultStorageKey  = "riskAnalysisState.v1"
	DefaultTablesURL   = "data/riskTables.json"
	DefaultMessagesURL = "data/riskSummaryMessages.json"
)

// ChangeEvent is the detail payload of a risk:changed event.
type ChangeEvent struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Value    Status `json:"value"`
}

// Text is a JSON scalar read as a string. Numbers and booleans are accepted
// so that hand-edited data files with `"id": 3` still load.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// Number is a JSON value coerced to a float the way JavaScript's Number()
// does: null and "" are 0, unparsable or missing values are NaN so callers
// can apply their own default.
type Number struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{Value: math.NaN()}
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = Number{Value: 0, Set: true}
	case bytes.Equal(data, []byte("true")):
		*n = Number{Value: 1, Set: true}
	case bytes.Equal(data, []byte("false")):
		*n = Number{Value: 0, Set: true}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Number{Value: 0, Set: true}
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number{Value: f, Set: true}
		}
	default:
		if f, err := strconv.ParseFloat(string(data), 64); err == nil {
			*n = Number{Value: f, Set: true}
		}
	}
	return nil
}

// Finite reports whether the number was present and finite.
func (n Number) Finite() bool {
	return n.Set && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

// Control is one checklist row of a category, in data-source order.
type Control struct {
	ID      Text     `json:"id,omitempty"`
	Label   Text     `json:"label,omitempty"`
	Name    Text     `json:"name,omitempty"`
	Default any      `json:"default,omitempty"`
	Pros    TextList `json:"pros,omitempty"`
	Cons    TextList `json:"cons,omitempty"`
	Danger  Number   `json:"danger"`
}

// TextList is a JSON array whose items are read as Text. Anything other
// than an array is an empty list.
type TextList []Text

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var items []Text
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// Strings returns the items as plain strings.
func (l TextList) Strings() []string {
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = string(t)
	}
	return out
}

// Tables maps a category key to its raw rows. Categories are decoded on
// demand so a malformed category only affects the panes that read it. A
// document that is not a JSON object has no categories.
type Tables map[string]json.RawMessage

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tables) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*t = Tables{}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = raw
	return nil
}

// Keys returns the category keys in sorted order.
func (t Tables) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rows decodes the controls of category key. A missing or null category
// has no rows; one that is not an array is an error. Items that are not
// objects read as empty controls.
func (t Tables) Rows(key string) ([]Control, error) {
	raw := bytes.TrimSpace(t[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("category %q is not a list of controls", key)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("category %q: %w", key, err)
	}
	rows := make([]Control, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		if err := json.Unmarshal(item, &rows[i]); err != nil {
			return nil, fmt.Errorf("category %q row %d: %w", key, i, err)
		}
	}
	return rows, nil
}

// MessageRange is one qualitative band of the summary messages file.
type MessageRange struct {
	Min     Number `json:"min"`
	Max     Number `json:"max"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Bounds returns the inclusive range, defaulting missing or non-finite bounds
// to 0 and 100.
func (r MessageRange) Bounds() (lo, hi float64) {
	lo, hi = 0, 100
	if r.Min.Finite() {
		lo = r.Min.Value
	}
	if r.Max.Finite() {
		hi = r.Max.Value
	}
	return lo, hi
}

// CategoryState maps control ids to stored statuses. Values are kept as
// decoded so that anything other than "enabled" normalises to disabled.
type CategoryState map[string]any

// Selection is the persisted slot content: category key to control states.
type Selection map[string]CategoryState

// UnmarshalJSON drops category entries that are not objects instead of
// failing the whole slot.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Selection, len(raw))
	for key, msg := range raw {
		var cat map[string]any
		if err := json.Unmarshal(msg, &cat); err != nil || cat == nil {
			continue
		}
		out[key] = cat
	}
	*s = out
	return nil
}

// Category returns the sub-map for key, creating it when absent.
func (s Selection) Category(key string) CategoryState {
	cat, ok := s[key]
	if !ok || cat == nil {
		cat = CategoryState{}
		s[key] = cat
	}
	return cat
}

// Summary is the aggregated result for one category.
type Summary struct {
	Category string        `json:"category"`
	Total    int           `json:"total"`
	Range    *MessageRange `json:"-"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
}
