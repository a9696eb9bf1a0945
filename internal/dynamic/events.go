package dynamic

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Event is a user interaction on a rendered view.
type Event struct {
	Name    string // event key, e.g. "onClick"
	ViewID  string
	Handler string // handler or action named by the layout
	Value   any
}

// Handler handles an event.
type Handler func(ctx context.Context, ev Event) error

// Notification is broadcast for actions no handler claims.
type Notification struct {
	Action      string `json:"action"`
	ComponentID string `json:"component_id,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// Navigator performs the built-in navigation actions.
type Navigator interface {
	Dismiss()
	Navigate(dest string)
}

// EventRegistry routes events to handlers registered per action, optionally
// scoped to one view id. Unclaimed actions fall back to the default
// handler: "log", "dismiss", "navigate[:dest]", or a broadcast
// Notification.
type EventRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	subs     map[int]chan Notification
	nextSub  int
	nav      Navigator
}

// NewEventRegistry creates a registry. nav may be nil.
func NewEventRegistry(nav Navigator) *EventRegistry {
	return &EventRegistry{
		handlers: make(map[string]Handler),
		subs:     make(map[int]chan Notification),
		nav:      nav,
	}
}

func handlerKey(viewID, action string) string {
	return viewID + "\x00" + action
}

// Register installs h for action. An empty viewID applies to every view.
func (r *EventRegistry) Register(action, viewID string, h Handler) {
	r.mu.Lock()
	r.handlers[handlerKey(viewID, action)] = h
	r.mu.Unlock()
}

// Unregister removes a handler.
func (r *EventRegistry) Unregister(action, viewID string) {
	r.mu.Lock()
	delete(r.handlers, handlerKey(viewID, action))
	r.mu.Unlock()
}

// Dispatch routes ev: a handler for (view, action), then one for the action
// alone, then the default handler.
func (r *EventRegistry) Dispatch(ctx context.Context, ev Event) error {
	r.mu.RLock()
	h, ok := r.handlers[handlerKey(ev.ViewID, ev.Handler)]
	if !ok && ev.ViewID != "" {
		h, ok = r.handlers[handlerKey("", ev.Handler)]
	}
	r.mu.RUnlock()
	if ok {
		return h(ctx, ev)
	}
	r.fallback(ev)
	return nil
}

func (r *EventRegistry) fallback(ev Event) {
	action, arg, _ := strings.Cut(ev.Handler, ":")
	switch action {
	case "log":
		log.Printf("[dynamic] %s on %q: %v", ev.Name, ev.ViewID, ev.Value)
		return
	case "dismiss":
		if r.nav != nil {
			r.nav.Dismiss()
			return
		}
	case "navigate":
		if r.nav != nil {
			if arg == "" {
				arg, _ = ev.Value.(string)
			}
			r.nav.Navigate(arg)
			return
		}
	}
	r.Broadcast(Notification{Action: ev.Handler, ComponentID: ev.ViewID, Value: ev.Value})
}

// Subscribe returns a channel receiving broadcast notifications and a
// function that cancels the subscription.
func (r *EventRegistry) Subscribe(buffer int) (<-chan Notification, func()) {
	ch := make(chan Notification, buffer)
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast delivers n to every subscriber. Subscribers whose buffer is
// full miss the notification.
func (r *EventRegistry) Broadcast(n Notification) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, ch := range r.subs {
		select {
		case ch <- n:
		default:
			log.Printf("[dynamic] subscriber %d is full, dropping %q", id, n.Action)
		}
	}
}
