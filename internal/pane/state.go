package pane

import "sync"

// Shared state event names.
const (
	EventStateChanged = "state:changed"
	EventStateCleared = "state:cleared"
)

// Entry seeds a StateStore.
type Entry struct {
	Key   string
	Value any
}

// StateChange is the detail of state:changed events.
type StateChange struct {
	Key   string
	Value any
}

// StateStore is an ordered key/value map shared by the panes of one page.
// Every Set is announced on the bus.
type StateStore struct {
	mu     sync.Mutex
	keys   []string
	values map[string]any
	events *EventBus
}

// NewStateStore creates a store seeded with entries. events may be nil.
func NewStateStore(events *EventBus, entries ...Entry) *StateStore {
	s := &StateStore{values: make(map[string]any), events: events}
	for _, e := range entries {
		s.put(e.Key, e.Value)
	}
	return s
}

func (s *StateStore) put(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value stored under key.
func (s *StateStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *StateStore) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores value and emits state:changed and state:changed:<key>.
func (s *StateStore) Set(key string, value any) any {
	s.mu.Lock()
	s.put(key, value)
	s.mu.Unlock()

	if s.events != nil {
		change := StateChange{Key: key, Value: value}
		s.events.Emit(EventStateChanged, change)
		s.events.Emit(EventStateChanged+":"+key, change)
	}
	return value
}

// Keys returns the keys in insertion order.
func (s *StateStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// Clear empties the store and emits state:cleared.
func (s *StateStore) Clear() {
	s.mu.Lock()
	s.keys = nil
	s.values = make(map[string]any)
	s.mu.Unlock()

	if s.events != nil {
		s.events.Emit(EventStateCleared, map[string]any{})
	}
}
