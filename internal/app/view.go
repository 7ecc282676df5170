package app

import (
	"context"
	"sync"

	"github.com/harborlight/crm-calendar/internal/adapter"
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/privacy"
	"github.com/harborlight/crm-calendar/internal/record"
)

// View is one viewer's in-memory aggregated event list. It is recomputed
// whole on any input change; live-update pushes may append single records
// without a full recompute, but only after privacy scoping.
type View struct {
	app      *App
	viewerID string
	mode     privacy.Mode
	ownerID  string
	window   event.Window

	mu     sync.Mutex
	events []event.Event
}

// Recompute rebuilds the list from the stores.
func (v *View) Recompute(ctx context.Context) error {
	events, err := v.app.GetVisibleEvents(ctx, v.viewerID, v.mode, v.ownerID, v.window)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.events = events
	v.mu.Unlock()
	return nil
}

// ApplyPush folds a pushed record into the list if the viewer is allowed to
// see it. The scope is rebuilt per push so a stale toggle never lets an
// event through.
func (v *View) ApplyPush(ctx context.Context, a record.Appointment) error {
	projected := adapter.Appointments([]record.Appointment{a})
	if len(projected) == 0 {
		return nil
	}
	e := projected[0]
	if !v.window.Contains(e) {
		return nil
	}
	scope, err := v.app.BuildScope(ctx, v.viewerID, v.mode, v.ownerID)
	if err != nil {
		return err
	}
	if !privacy.Allowed(e, scope) {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.events {
		if v.events[i].ID == e.ID {
			v.events[i] = e
			return nil
		}
	}
	v.events = append(v.events, e)
	sortEvents(v.events)
	return nil
}

// Events returns a copy of the current list.
func (v *View) Events() []event.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]event.Event, len(v.events))
	copy(out, v.events)
	return out
}

// ViewRegistry tracks the active views so the live-update consumer can fan
// pushed records out to them.
type ViewRegistry struct {
	app *App

	mu    sync.Mutex
	views map[*View]struct{}
}

func newViewRegistry(app *App) *ViewRegistry {
	return &ViewRegistry{app: app, views: make(map[*View]struct{})}
}

func (r *ViewRegistry) Open(viewerID string, mode privacy.Mode, ownerID string, w event.Window) *View {
	v := &View{app: r.app, viewerID: viewerID, mode: mode, ownerID: ownerID, window: w}
	r.mu.Lock()
	r.views[v] = struct{}{}
	r.mu.Unlock()
	return v
}

func (r *ViewRegistry) Close(v *View) {
	r.mu.Lock()
	delete(r.views, v)
	r.mu.Unlock()
}

// Broadcast applies a pushed record to every open view. Errors are ignored
// per view; a view that fails to scope a push just misses it until its next
// recompute.
func (r *ViewRegistry) Broadcast(ctx context.Context, a record.Appointment) {
	r.mu.Lock()
	views := make([]*View, 0, len(r.views))
	for v := range r.views {
		views = append(views, v)
	}
	r.mu.Unlock()

	for _, v := range views {
		_ = v.ApplyPush(ctx, a)
	}
}
