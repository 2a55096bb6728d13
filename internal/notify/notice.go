// Package notify carries model-level variables to their observers. A Notice
// owns the registry of global variable names; observers attach and receive a
// Notification whenever a registered variable changes.
//
// Accessed only from the simulation loop goroutine — no locks.
package notify

import "fmt"

// Source exposes the variables a Notice can publish.
type Source interface {
	GlobVar(name string) (any, bool)
}

// Notification is one delivery: the changed variables and their new values.
type Notification struct {
	Changed map[string]any
}

// Observer receives notifications. Attach order is delivery order.
type Observer interface {
	Notify(n Notification)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n Notification)

func (f ObserverFunc) Notify(n Notification) { f(n) }

// UnknownVarError reports a variable name the source does not expose.
type UnknownVarError struct {
	Name string
}

func (e *UnknownVarError) Error() string {
	return fmt.Sprintf("glob var %q: source does not expose it", e.Name)
}

// Subscription identifies one attached observer. Hold on to it to Detach.
type Subscription int

type subscriber struct {
	sub Subscription
	o   Observer
}

// Notice tracks registered global variables and the observers watching them.
type Notice struct {
	source    Source
	order     []string
	known     map[string]struct{}
	observers []subscriber
	nextSub   Subscription
}

func NewNotice(source Source) *Notice {
	return &Notice{
		source: source,
		known:  make(map[string]struct{}),
	}
}

// AddGlobVars registers variable names with the notice. Every name must be
// answerable by the source right now; one unknown name fails the whole call
// and registers nothing.
func (n *Notice) AddGlobVars(names ...string) error {
	for _, name := range names {
		if _, ok := n.source.GlobVar(name); !ok {
			return &UnknownVarError{Name: name}
		}
	}
	for _, name := range names {
		if _, seen := n.known[name]; seen {
			continue
		}
		n.known[name] = struct{}{}
		n.order = append(n.order, name)
	}
	return nil
}

// Vars lists the registered variable names in registration order.
func (n *Notice) Vars() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Attach subscribes the observer and immediately pushes the full current
// snapshot, so late joiners never see a blank state. The returned
// Subscription detaches it later.
func (n *Notice) Attach(o Observer) Subscription {
	n.nextSub++
	sub := n.nextSub
	n.observers = append(n.observers, subscriber{sub: sub, o: o})
	o.Notify(n.snapshot(n.order))
	return sub
}

// Detach unsubscribes the observer behind the subscription. Unknown
// subscriptions are ignored.
func (n *Notice) Detach(sub Subscription) {
	for i, s := range n.observers {
		if s.sub == sub {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers the named variables to every observer. With no names it
// delivers the full registered set. Names never registered are skipped.
func (n *Notice) Notify(names ...string) {
	if len(names) == 0 {
		names = n.order
	} else {
		kept := make([]string, 0, len(names))
		for _, name := range names {
			if _, ok := n.known[name]; ok {
				kept = append(kept, name)
			}
		}
		names = kept
	}
	if len(names) == 0 {
		return
	}
	note := n.snapshot(names)
	for _, s := range n.observers {
		s.o.Notify(note)
	}
}

func (n *Notice) snapshot(names []string) Notification {
	changed := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := n.source.GlobVar(name); ok {
			changed[name] = v
		}
	}
	return Notification{Changed: changed}
}
