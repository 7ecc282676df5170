package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/harborlight/crm-calendar/internal/adapter"
	"github.com/harborlight/crm-calendar/internal/colors"
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/prefs"
	"github.com/harborlight/crm-calendar/internal/privacy"
	"github.com/harborlight/crm-calendar/internal/provider"
	"github.com/harborlight/crm-calendar/internal/record"
	"github.com/harborlight/crm-calendar/internal/syncer"
)

// App is the calendar engine facade the rest of the CRM talks to.
type App struct {
	Store      record.Store
	Prefs      prefs.Store
	Reconciler *syncer.Reconciler
	Views      *ViewRegistry
}

func New(store record.Store, prefStore prefs.Store, reconciler *syncer.Reconciler) *App {
	a := &App{
		Store:      store,
		Prefs:      prefStore,
		Reconciler: reconciler,
	}
	a.Views = newViewRegistry(a)
	return a
}

// GetVisibleEvents pulls every source, applies privacy scoping for the
// viewer and returns the merged, deterministically ordered event list for
// the window.
func (a *App) GetVisibleEvents(
	ctx context.Context,
	viewerID string,
	mode privacy.Mode,
	ownerID string,
	w event.Window,
) ([]event.Event, error) {
	events, err := a.collect(ctx, w)
	if err != nil {
		return nil, err
	}
	scope, err := a.BuildScope(ctx, viewerID, mode, ownerID)
	if err != nil {
		return nil, err
	}
	visible := privacy.Filter(events, scope)
	sortEvents(visible)
	return visible, nil
}

// CreateAppointment stores a native appointment and, when the owner has a
// provider connection, exports it so the row gains provider linkage. An
// unconnected owner keeps a purely native row.
func (a *App) CreateAppointment(ctx context.Context, appt *record.Appointment) error {
	if appt.OwnerID == "" || appt.EndTime.Before(appt.StartTime) {
		return event.ErrIncorrectEventTime
	}
	if err := a.Store.UpsertAppointment(ctx, appt); err != nil {
		return err
	}
	if a.Reconciler == nil || appt.Mirrored {
		return nil
	}
	err := a.Reconciler.PushAppointment(ctx, appt)
	if errors.Is(err, provider.ErrNotConnected) {
		return nil
	}
	return err
}

// RunSync reconciles one owner, or every connected owner when target is
// "all". Single-owner failures propagate; batch failures are logged per
// owner inside the reconciler.
func (a *App) RunSync(ctx context.Context, target string) (syncer.Result, error) {
	if target == "all" {
		return a.Reconciler.SyncAll(ctx)
	}
	return a.Reconciler.SyncOwner(ctx, target)
}

// OwnerColors resolves diary colors for a set of owners under the viewer's
// overrides.
func (a *App) OwnerColors(ctx context.Context, viewerID string, ownerIDs []string) (map[string]string, error) {
	overrides, err := prefs.GetColorOverrides(ctx, a.Prefs, viewerID)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(ownerIDs))
	for _, id := range ownerIDs {
		result[id] = colors.ForOwner(id, overrides)
	}
	return result, nil
}

// BuildScope assembles the privacy scope for a viewer/mode pair from the
// calendar descriptors and the viewer's persisted toggles.
func (a *App) BuildScope(ctx context.Context, viewerID string, mode privacy.Mode, ownerID string) (privacy.Scope, error) {
	calendars, err := a.Store.ListAllCalendars(ctx)
	if err != nil {
		return privacy.Scope{}, fmt.Errorf("failed to list calendars: %w", err)
	}
	defaults := make(map[string]string)
	for _, c := range calendars {
		if c.IsDefault {
			defaults[c.OwnerID] = c.ExternalCalendarID
		}
	}

	scope := privacy.Scope{
		Viewer:           viewerID,
		Mode:             mode,
		Owner:            ownerID,
		DefaultCalendars: defaults,
	}

	switch mode {
	case privacy.ModeOwn:
		enabled, set, err := prefs.GetStringSet(ctx, a.Prefs, viewerID, prefs.KeyEnabledCalendars)
		if err != nil {
			return privacy.Scope{}, err
		}
		if !set {
			// Every calendar of the viewer is visible until toggled off.
			enabled = make(map[string]struct{})
			for _, c := range calendars {
				if c.OwnerID == viewerID {
					enabled[c.ExternalCalendarID] = struct{}{}
				}
			}
		}
		scope.EnabledCalendars = enabled
	case privacy.ModeAll:
		enabled, set, err := prefs.GetStringSet(ctx, a.Prefs, viewerID, prefs.KeyEnabledOwners)
		if err != nil {
			return privacy.Scope{}, err
		}
		if set {
			scope.EnabledOwners = enabled
		}
	}
	return scope, nil
}

// collect runs every source adapter over the window and merges the results.
// Coaching-session and workshop events are reprojected on each call, never
// stored.
func (a *App) collect(ctx context.Context, w event.Window) ([]event.Event, error) {
	// Coarse bounds for the store; exact membership is decided per event.
	// Bounding the end rather than the start keeps banners that began long
	// before the window but still span into it.
	filter := record.AppointmentFilter{
		EndFrom: w.From,
		To:      w.To.AddDate(0, 0, 2),
	}
	appointments, err := a.Store.ListAppointments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	seekers, err := a.Store.ListSeekers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seekers: %w", err)
	}
	sessions, err := a.Store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaching sessions: %w", err)
	}
	workshops, err := a.Store.ListWorkshops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workshops: %w", err)
	}

	merged := adapter.Appointments(appointments)
	merged = append(merged, adapter.CoachingSessions(seekers, sessions)...)
	merged = append(merged, adapter.Workshops(workshops)...)

	inWindow := merged[:0]
	for _, e := range merged {
		if w.Contains(e) {
			inWindow = append(inWindow, e)
		}
	}
	return inWindow, nil
}

func sortEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
