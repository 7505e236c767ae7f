package dom

import "golang.org/x/net/html"

// Event is delivered to element listeners.
type Event struct {
	Type   string
	Target *html.Node
}

type listener struct {
	fn func(Event)
}

// AddEventListener attaches fn to n for events of type typ and returns a
// function that detaches it. Detaching twice is harmless.
func (d *Document) AddEventListener(n *html.Node, typ string, fn func(Event)) (remove func()) {
	if d.listeners == nil {
		d.listeners = make(map[*html.Node]map[string][]*listener)
	}
	byType := d.listeners[n]
	if byType == nil {
		byType = make(map[string][]*listener)
		d.listeners[n] = byType
	}
	l := &listener{fn: fn}
	byType[typ] = append(byType[typ], l)

	return func() {
		list := d.listeners[n][typ]
		for i, x := range list {
			if x == l {
				d.listeners[n][typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(d.listeners[n][typ]) == 0 {
			delete(d.listeners[n], typ)
		}
		if len(d.listeners[n]) == 0 {
			delete(d.listeners, n)
		}
	}
}

// Dispatch delivers an event of type typ to the listeners of n. Listeners
// added or removed during dispatch do not affect this delivery.
func (d *Document) Dispatch(n *html.Node, typ string) {
	list := append([]*listener(nil), d.listeners[n][typ]...)
	ev := Event{Type: typ, Target: n}
	for _, l := range list {
		l.fn(ev)
	}
}

// ListenerCount returns the number of listeners attached to n for typ.
func (d *Document) ListenerCount(n *html.Node, typ string) int {
	return len(d.listeners[n][typ])
}

// TotalListeners returns the number of listeners attached anywhere.
func (d *Document) TotalListeners() int {
	total := 0
	for _, byType := range d.listeners {
		for _, list := range byType {
			total += len(list)
		}
	}
	return total
}
