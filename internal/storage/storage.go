// Package storage persists the per-category control selections in named
// local storage slots. Slot failures never surface as errors to panes:
// every operation returns a Result that callers inspect or ignore.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/riskpanes/internal/risk"
)

// ErrUnavailable is reported when no slot backend is configured.
var ErrUnavailable = errors.New("storage unavailable")

// Slots is a string key/value store in the manner of browser localStorage.
type Slots interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// Status describes how a slot operation went.
type Status int

const (
	// StatusOK means the slot was read or written.
	StatusOK Status = iota
	// StatusMissing means the slot has never been written.
	StatusMissing
	// StatusInvalid means the slot held something that is not a selection.
	StatusInvalid
	// StatusUnavailable means the backend failed; the value is a default.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusInvalid:
		return "invalid"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries a selection and the outcome of the slot operation. Value is
// never nil.
type Result struct {
	Value  risk.Selection
	Status Status
	Err    error
}

// OK reports whether the operation touched real stored data.
func (r Result) OK() bool { return r.Status == StatusOK }

// SafeJSONParse decodes raw into a T, returning fallback on any error.
func SafeJSONParse[T any](raw string, fallback T) T {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback
	}
	return v
}

// LoadState reads the selection stored under key.
func LoadState(ctx context.Context, slots Slots, key string) Result {
	if slots == nil {
		return Result{Value: risk.Selection{}, Status: StatusUnavailable, Err: ErrUnavailable}
	}
	raw, ok, err := slots.GetItem(ctx, key)
	if err != nil {
		return Result{Value: risk.Selection{}, Status: StatusUnavailable, Err: err}
	}
	if !ok || raw == "" {
		return Result{Value: risk.Selection{}, Status: StatusMissing}
	}
	sel := SafeJSONParse[risk.Selection](raw, nil)
	if sel == nil {
		return Result{Value: risk.Selection{}, Status: StatusInvalid}
	}
	return Result{Value: sel, Status: StatusOK}
}

// SaveState writes sel under key.
func SaveState(ctx context.Context, slots Slots, key string, sel risk.Selection) Result {
	if sel == nil {
		sel = risk.Selection{}
	}
	if slots == nil {
		return Result{Value: sel, Status: StatusUnavailable, Err: ErrUnavailable}
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return Result{Value: sel, Status: StatusUnavailable, Err: fmt.Errorf("marshalling state: %w", err)}
	}
	if err := slots.SetItem(ctx, key, string(data)); err != nil {
		return Result{Value: sel, Status: StatusUnavailable, Err: err}
	}
	return Result{Value: sel, Status: StatusOK}
}
