package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// Listener handles a dispatched event.
type Listener func(*Event)

// Event is a synchronous event travelling from its target up to the document
// root.
type Event struct {
	Type    string
	Target  *Element
	Current *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action (for example form submission).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener cancelled the default action.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation keeps the event from reaching ancestors of the current
// node. Remaining listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether propagation was stopped.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// On registers fn for events of the given type on this element.
func (e *Element) On(eventType string, fn Listener) {
	if fn == nil {
		return
	}
	byType, ok := e.doc.listeners[e.node]
	if !ok {
		byType = make(map[string][]Listener)
		e.doc.listeners[e.node] = byType
	}
	byType[eventType] = append(byType[eventType], fn)
}

// ListenerCount returns how many listeners are registered for eventType on
// this element.
func (e *Element) ListenerCount(eventType string) int {
	return len(e.doc.listeners[e.node][eventType])
}

// Dispatch fires an event at the element and bubbles it to the root. A panic
// inside a listener is recovered, reported to the document error hook and
// does not stop the remaining listeners.
func (e *Element) Dispatch(eventType string) *Event {
	ev := &Event{Type: eventType, Target: e}
	for n := e.node; n != nil; n = n.Parent {
		listeners := e.doc.listeners[n][eventType]
		if len(listeners) == 0 {
			continue
		}
		ev.Current = e.doc.wrap(n)
		for _, fn := range append([]Listener(nil), listeners...) {
			e.doc.invoke(fn, ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.Current = nil
	return ev
}

func (d *Document) invoke(fn Listener, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				d.report(fmt.Errorf("dom: %s listener on <%s>: %w", ev.Type, describe(ev.Current.node), err))
				return
			}
			d.report(fmt.Errorf("dom: %s listener on <%s>: %v", ev.Type, describe(ev.Current.node), r))
		}
	}()
	fn(ev)
}

func describe(n *html.Node) string {
	if n.Type == html.DocumentNode {
		return "#document"
	}
	if id := attr(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	return n.Data
}
