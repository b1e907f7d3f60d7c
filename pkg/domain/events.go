package domain

import (
	"context"
	"time"
)

// EventType defines the category of a navigation event.
type EventType string

const (
	EventResolve EventType = "resolve"
	EventRecover EventType = "recover"
	EventCommit  EventType = "commit"
	EventDiscard EventType = "discard"
	EventFailure EventType = "failure"
	EventLoad    EventType = "load"
)

// NavigationEvent describes one step of a navigation.
type NavigationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Address   string    `json:"address"`
	Recovered bool      `json:"recovered,omitempty"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability. Any field
// may be nil.
type LifecycleHooks struct {
	OnResolve func(context.Context, *NavigationEvent)
	OnRecover func(context.Context, *NavigationEvent)
	OnCommit  func(context.Context, *NavigationEvent)
	OnDiscard func(context.Context, *NavigationEvent)
	OnFailure func(context.Context, *NavigationEvent)
	OnLoad    func(context.Context, *NavigationEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnResolve: chain(h.OnResolve, other.OnResolve),
		OnRecover: chain(h.OnRecover, other.OnRecover),
		OnCommit:  chain(h.OnCommit, other.OnCommit),
		OnDiscard: chain(h.OnDiscard, other.OnDiscard),
		OnFailure: chain(h.OnFailure, other.OnFailure),
		OnLoad:    chain(h.OnLoad, other.OnLoad),
	}
}

func chain(a, b func(context.Context, *NavigationEvent)) func(context.Context, *NavigationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *NavigationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
