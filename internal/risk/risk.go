// Package risk holds the control data model and the pure computations shared
// by the risk table and risk summary panes: status normalisation, danger
// clamping, id resolution, aggregation and message range lookup.
package risk

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeStatus maps any value to enabled or disabled. Only the exact
// string "enabled" is enabled.
func NormalizeStatus(v any) Status {
	switch s := v.(type) {
	case Status:
		if s == StatusEnabled {
			return StatusEnabled
		}
	case string:
		if s == string(StatusEnabled) {
			return StatusEnabled
		}
	}
	return StatusDisabled
}

// DangerPercent returns the control's danger clamped to 0..100 and rounded.
// Non-finite or missing values are 0.
func DangerPercent(c Control) int {
	if !c.Danger.Finite() {
		return 0
	}
	n := c.Danger.Value
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return int(math.Floor(n + 0.5))
}

// Slugify lowercases s and collapses non-alphanumeric runs to "_".
func Slugify(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// EffectiveID returns the explicit id, or the slugified label when empty.
func (c Control) EffectiveID() string {
	if id := strings.TrimSpace(string(c.ID)); id != "" {
		return id
	}
	return Slugify(c.DisplayLabel())
}

// DisplayLabel returns label, then name, then id, then "Unnamed".
func (c Control) DisplayLabel() string {
	for _, v := range []Text{c.Label, c.Name} {
		if v != "" {
			return string(v)
		}
	}
	if id := strings.TrimSpace(string(c.ID)); id != "" {
		return id
	}
	return "Unnamed"
}

// EffectiveStatus resolves a control's status: a persisted override wins,
// otherwise the declared default, normalised either way.
func EffectiveStatus(c Control, cat CategoryState) Status {
	if saved, ok := cat[c.EffectiveID()]; ok && saved != nil {
		return NormalizeStatus(saved)
	}
	return NormalizeStatus(c.Default)
}

// DangerFor returns the danger shown for a control in the given status:
// the declared value when disabled, 0 when enabled.
func DangerFor(c Control, status Status) int {
	if status == StatusEnabled {
		return 0
	}
	return DangerPercent(c)
}

// TotalDisabledDanger sums the danger of every control that is not enabled,
// capped at 100.
func TotalDisabledDanger(rows []Control, cat CategoryState) int {
	total := 0
	for _, row := range rows {
		if EffectiveStatus(row, cat) != StatusEnabled {
			total += DangerPercent(row)
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}

// FindMessage returns the first range containing total, inclusive on both
// ends.
func FindMessage(ranges []MessageRange, total int) (MessageRange, bool) {
	t := float64(total)
	for _, r := range ranges {
		lo, hi := r.Bounds()
		if t >= lo && t <= hi {
			return r, true
		}
	}
	return MessageRange{}, false
}

// Summarize aggregates one category.
func Summarize(category string, rows []Control, ranges []MessageRange, cat CategoryState) Summary {
	s := Summary{Category: category, Total: TotalDisabledDanger(rows, cat)}
	if r, ok := FindMessage(ranges, s.Total); ok {
		s.Range = &r
		s.Title = r.Title
		s.Message = r.Message
	}
	return s
}

// FormatPercent renders n as "N%".
func FormatPercent(n int) string {
	return fmt.Sprintf("%d%%", n)
}
