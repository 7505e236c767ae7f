package risk

import (
	"encoding/json"
	"testing"
)

func mustTables(t *testing.T, raw string) map[string][]Control {
	t.Helper()
	var tables Tables
	if err := json.Unmarshal([]byte(raw), &tables); err != nil {
		t.Fatalf("unmarshal tables: %v", err)
	}
	out := make(map[string][]Control, len(tables))
	for _, k := range tables.Keys() {
		rows, err := tables.Rows(k)
		if err != nil {
			t.Fatalf("rows %s: %v", k, err)
		}
		out[k] = rows
	}
	return out
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   any
		want Status
	}{
		{"enabled", StatusEnabled},
		{StatusEnabled, StatusEnabled},
		{"disabled", StatusDisabled},
		{"Enabled", StatusDisabled},
		{"on", StatusDisabled},
		{"", StatusDisabled},
		{nil, StatusDisabled},
		{true, StatusDisabled},
		{1.0, StatusDisabled},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDangerPercent(t *testing.T) {
	tables := mustTables(t, `{"c":[
		{"danger": 40},
		{"danger": -5},
		{"danger": 250},
		{"danger": 12.5},
		{"danger": "33"},
		{"danger": "abc"},
		{"danger": null},
		{}
	]}`)
	want := []int{40, 0, 100, 13, 33, 0, 0, 0}
	for i, row := range tables["c"] {
		if got := DangerPercent(row); got != want[i] {
			t.Errorf("row %d: DangerPercent = %d, want %d", i, got, want[i])
		}
	}
}

func TestEffectiveID(t *testing.T) {
	tests := []struct {
		row  Control
		want string
	}{
		{Control{ID: "  mfa "}, "mfa"},
		{Control{Label: "Two-Factor Auth (TOTP)"}, "two_factor_auth_totp"},
		{Control{Name: "  Disk Encryption!"}, "disk_encryption"},
		{Control{}, "unnamed"},
	}
	for _, tt := range tests {
		if got := tt.row.EffectiveID(); got != tt.want {
			t.Errorf("EffectiveID(%+v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestNumericIDIsAccepted(t *testing.T) {
	tables := mustTables(t, `{"c":[{"id": 7, "label": "Seven"}]}`)
	if got := tables["c"][0].EffectiveID(); got != "7" {
		t.Errorf("EffectiveID = %q, want %q", got, "7")
	}
}

func TestEffectiveStatus(t *testing.T) {
	row := Control{ID: "fw", Default: "enabled"}
	tests := []struct {
		name string
		cat  CategoryState
		want Status
	}{
		{"default applies", CategoryState{}, StatusEnabled},
		{"override wins", CategoryState{"fw": "disabled"}, StatusDisabled},
		{"nil override ignored", CategoryState{"fw": nil}, StatusEnabled},
		{"garbage override disables", CategoryState{"fw": "maybe"}, StatusDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveStatus(row, tt.cat); got != tt.want {
				t.Errorf("EffectiveStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTotalDisabledDangerCapsAt100(t *testing.T) {
	rows := mustTables(t, `{"c":[
		{"id":"a","default":"disabled","danger":60},
		{"id":"b","default":"disabled","danger":70},
		{"id":"c","default":"enabled","danger":50}
	]}`)["c"]

	if got := TotalDisabledDanger(rows, CategoryState{}); got != 100 {
		t.Errorf("total = %d, want 100", got)
	}
	if got := TotalDisabledDanger(rows, CategoryState{"b": "enabled"}); got != 60 {
		t.Errorf("total = %d, want 60", got)
	}
	if got := TotalDisabledDanger(rows, CategoryState{"a": "enabled", "b": "enabled"}); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
}

func TestTotalDisabledDangerRoundsPerRow(t *testing.T) {
	rows := mustTables(t, `{"c":[{"label":"A","danger":10.4},{"label":"B","danger":10.4}]}`)["c"]
	if got := TotalDisabledDanger(rows, nil); got != 20 {
		t.Errorf("total = %d, want 20", got)
	}
}

func TestTotalUsesSlugFallback(t *testing.T) {
	rows := mustTables(t, `{"c":[{"label":"Screen Lock","default":"disabled","danger":30}]}`)["c"]
	if got := TotalDisabledDanger(rows, CategoryState{"screen_lock": "enabled"}); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
}

func TestFindMessage(t *testing.T) {
	var ranges []MessageRange
	if err := json.Unmarshal([]byte(`[
		{"min":0,"max":20,"title":"Low","message":"ok"},
		{"min":21,"max":100,"title":"High","message":"act"}
	]`), &ranges); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		total int
		want  string
		found bool
	}{
		{0, "Low", true},
		{20, "Low", true},
		{21, "High", true},
		{100, "High", true},
	}
	for _, tt := range tests {
		got, ok := FindMessage(ranges, tt.total)
		if ok != tt.found || got.Title != tt.want {
			t.Errorf("FindMessage(%d) = (%q, %v), want (%q, %v)", tt.total, got.Title, ok, tt.want, tt.found)
		}
	}
}

func TestFindMessageDefaultsAndGaps(t *testing.T) {
	var ranges []MessageRange
	if err := json.Unmarshal([]byte(`[
		{"min":30,"max":40,"title":"Mid"},
		{"max":"n/a","title":"Open"}
	]`), &ranges); err != nil {
		t.Fatal(err)
	}
	if got, _ := FindMessage(ranges, 35); got.Title != "Mid" {
		t.Errorf("35 -> %q, want Mid", got.Title)
	}
	if got, _ := FindMessage(ranges, 90); got.Title != "Open" {
		t.Errorf("90 -> %q, want Open (defaults 0..100)", got.Title)
	}

	gappy := ranges[:1]
	if _, ok := FindMessage(gappy, 10); ok {
		t.Error("expected no match outside declared range")
	}
}

func TestNullBoundIsZero(t *testing.T) {
	var ranges []MessageRange
	if err := json.Unmarshal([]byte(`[
		{"min":null,"max":null,"title":"Nothing left"},
		{"min":1,"title":"Some"}
	]`), &ranges); err != nil {
		t.Fatal(err)
	}
	if got, _ := FindMessage(ranges, 0); got.Title != "Nothing left" {
		t.Errorf("0 -> %q, want Nothing left", got.Title)
	}
	if got, _ := FindMessage(ranges, 5); got.Title != "Some" {
		t.Errorf("5 -> %q, want Some (null max is 0)", got.Title)
	}
}

func TestTablesDecodeCategoriesIndependently(t *testing.T) {
	var tables Tables
	if err := json.Unmarshal([]byte(`{
		"security": [{"id":"mfa","pros":["a", 2, true],"cons":"not a list","danger":30}, 7],
		"_meta": {"version": 2},
		"backups": [{"id":"offsite","pros":[1,2],"danger":50}],
		"empty": null
	}`), &tables); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := tables.Keys(); len(got) != 4 || got[0] != "_meta" || got[3] != "security" {
		t.Errorf("Keys = %v", got)
	}

	rows, err := tables.Rows("security")
	if err != nil {
		t.Fatalf("security: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("security rows = %d, want 2", len(rows))
	}
	if got := rows[0].Pros.Strings(); len(got) != 3 || got[1] != "2" || got[2] != "true" {
		t.Errorf("pros = %q", got)
	}
	if len(rows[0].Cons) != 0 {
		t.Errorf("cons = %q, want empty", rows[0].Cons)
	}
	if rows[1].DisplayLabel() != "Unnamed" || DangerPercent(rows[1]) != 0 {
		t.Errorf("non-object row = %+v, want an empty control", rows[1])
	}

	if rows, err := tables.Rows("backups"); err != nil || len(rows) != 1 || rows[0].Pros.Strings()[0] != "1" {
		t.Errorf("backups = %+v, %v", rows, err)
	}
	if _, err := tables.Rows("_meta"); err == nil {
		t.Error("expected an error for a category that is not a list")
	}
	for _, key := range []string{"empty", "missing"} {
		if rows, err := tables.Rows(key); err != nil || rows != nil {
			t.Errorf("Rows(%q) = %v, %v; want no rows", key, rows, err)
		}
	}
}

func TestTablesNotAnObject(t *testing.T) {
	var tables Tables
	if err := json.Unmarshal([]byte(`[1,2,3]`), &tables); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("tables = %v, want none", tables)
	}
}

func TestSelectionToleratesBadCategories(t *testing.T) {
	var sel Selection
	if err := json.Unmarshal([]byte(`{"security":{"mfa":"enabled"},"broken":"nope"}`), &sel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sel["security"]["mfa"] != "enabled" {
		t.Errorf("security.mfa = %v", sel["security"]["mfa"])
	}
	if _, ok := sel["broken"]; ok {
		t.Error("non-object category should be dropped")
	}
	cat := sel.Category("broken")
	cat["x"] = "disabled"
	if sel["broken"]["x"] != "disabled" {
		t.Error("Category should create and attach the sub-map")
	}
}

func TestSummarize(t *testing.T) {
	rows := []Control{{ID: "a", Default: "disabled", Danger: Number{Value: 15, Set: true}}}
	ranges := []MessageRange{{Min: Number{Value: 0, Set: true}, Max: Number{Value: 20, Set: true}, Title: "Low", Message: "fine"}}

	s := Summarize("security", rows, ranges, nil)
	if s.Total != 15 || s.Title != "Low" || s.Message != "fine" || s.Range == nil {
		t.Errorf("Summarize = %+v", s)
	}
	if FormatPercent(s.Total) != "15%" {
		t.Errorf("FormatPercent = %q", FormatPercent(s.Total))
	}
}
