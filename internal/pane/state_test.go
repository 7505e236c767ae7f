package pane

import "testing"

func TestStateStoreSeedAndOrder(t *testing.T) {
	s := NewStateStore(nil, Entry{Key: "page", Value: "risk"}, Entry{Key: "b", Value: 2})
	if v, ok := s.Get("page"); !ok || v != "risk" {
		t.Errorf("page = %v, %v", v, ok)
	}
	s.Set("a", 1)
	s.Set("page", "home")
	keys := s.Keys()
	if len(keys) != 3 || keys[0] != "page" || keys[1] != "b" || keys[2] != "a" {
		t.Errorf("keys = %v", keys)
	}
}

func TestStateStoreSetEmitsBothEvents(t *testing.T) {
	bus := NewEventBus()
	s := NewStateStore(bus)

	var generic, scoped []StateChange
	bus.On(EventStateChanged, func(ev Event) { generic = append(generic, ev.Detail.(StateChange)) })
	bus.On(EventStateChanged+":theme", func(ev Event) { scoped = append(scoped, ev.Detail.(StateChange)) })

	if got := s.Set("theme", "dark"); got != "dark" {
		t.Errorf("Set returned %v", got)
	}
	s.Set("other", 1)

	if len(generic) != 2 {
		t.Errorf("generic events = %d, want 2", len(generic))
	}
	if len(scoped) != 1 || scoped[0].Key != "theme" || scoped[0].Value != "dark" {
		t.Errorf("scoped = %+v", scoped)
	}
}

func TestStateStoreClear(t *testing.T) {
	bus := NewEventBus()
	s := NewStateStore(bus, Entry{Key: "a", Value: 1})
	cleared := 0
	bus.On(EventStateCleared, func(Event) { cleared++ })

	s.Clear()
	if s.Has("a") || len(s.Keys()) != 0 {
		t.Error("store should be empty")
	}
	if cleared != 1 {
		t.Errorf("cleared events = %d", cleared)
	}
}
