// Package audit keeps a trail of the control toggles made on risk pages so
// a device's selections can be traced back to when they were set.
package audit

import (
	"time"

	"github.com/ziadkadry99/riskpanes/internal/risk"
)

// Entry is a single recorded toggle.
type Entry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	PageID    string      `json:"page_id"`
	Category  string      `json:"category"`
	ControlID string      `json:"control_id"`
	Value     risk.Status `json:"value"`
}

// QueryFilter controls which entries Query returns.
type QueryFilter struct {
	Category  string
	ControlID string
	PageID    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
