// Package syncer converges the native mirror with the external provider's
// event set, one owner at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harborlight/crm-calendar/internal/ident"
	"github.com/harborlight/crm-calendar/internal/provider"
	"github.com/harborlight/crm-calendar/internal/record"
	log "github.com/sirupsen/logrus"
)

// ErrSyncInFlight means a sync for the same owner is still running. Requests
// are serialized, never overlapped, to keep upserts and deletes from racing
// against the same mirror rows.
var ErrSyncInFlight = errors.New("sync already running for this owner")

type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

func (r *Result) add(other Result) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deleted += other.Deleted
}

type Reconciler struct {
	store  record.Store
	client provider.Client
	ids    ident.Generator

	// OnMirrorCreated, when set, is called for every mirror row created
	// during reconciliation. The live-update publisher hangs off it.
	OnMirrorCreated func(record.Appointment)

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(store record.Store, client provider.Client, ids ident.Generator) *Reconciler {
	return &Reconciler{
		store:    store,
		client:   client,
		ids:      ids,
		inFlight: make(map[string]struct{}),
	}
}

// SyncOwner runs one reconciliation pass for a single owner. Re-running with
// an unchanged provider set produces no changes. Provider failures propagate
// to the caller; there are no retries here.
func (r *Reconciler) SyncOwner(ctx context.Context, ownerID string) (Result, error) {
	if err := r.acquire(ownerID); err != nil {
		return Result{}, err
	}
	defer r.release(ownerID)

	conn, err := r.store.GetConnection(ctx, ownerID)
	if errors.Is(err, record.ErrNotFound) {
		return Result{}, provider.ErrNotConnected
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load connection for owner %q: %w", ownerID, err)
	}

	listed, err := r.client.ListEvents(ctx, conn, conn.SyncCursor)
	if err != nil {
		return Result{}, err
	}

	linked, err := r.store.ListAppointments(ctx, record.AppointmentFilter{OwnerID: ownerID})
	if err != nil {
		return Result{}, fmt.Errorf("failed to list appointments for owner %q: %w", ownerID, err)
	}
	// The provider reuses one event id for copies of an event across
	// calendars, so linkage is keyed by (event id, calendar id). Rows with
	// linkage but Mirrored=false are native appointments exported to the
	// provider; they stay authoritative here.
	byKey := make(map[mirrorKey]record.Appointment, len(linked))
	for _, m := range linked {
		if m.ExternalEventID == "" {
			continue
		}
		byKey[mirrorKey{m.ExternalEventID, m.ExternalCalendarID}] = m
	}

	var result Result
	seen := make(map[mirrorKey]struct{}, len(listed.Events))
	for _, pe := range listed.Events {
		key := mirrorKey{pe.ID, pe.CalendarID}
		seen[key] = struct{}{}
		local, exists := byKey[key]
		if exists && !local.Mirrored {
			continue
		}
		if pe.Cancelled {
			if exists {
				if err := r.store.RemoveAppointment(ctx, local.ID); err != nil {
					return result, fmt.Errorf("failed to remove mirror %q: %w", local.ID, err)
				}
				result.Deleted++
			}
			continue
		}

		mirror := mirrorFrom(pe, ownerID)
		if exists {
			mirror.ID = local.ID
			if mirrorEqual(mirror, local) {
				continue
			}
			if err := r.store.UpsertAppointment(ctx, &mirror); err != nil {
				return result, fmt.Errorf("failed to update mirror %q: %w", mirror.ID, err)
			}
			result.Updated++
			continue
		}
		mirror.ID = r.ids.NewID()
		if err := r.store.UpsertAppointment(ctx, &mirror); err != nil {
			return result, fmt.Errorf("failed to create mirror for provider event %q: %w", pe.ID, err)
		}
		result.Created++
		if r.OnMirrorCreated != nil {
			r.OnMirrorCreated(mirror)
		}
	}

	// A full listing is authoritative within its horizon: mirrors absent
	// from it are gone on the provider side. A partial listing reports
	// deletions as tombstones instead, handled above.
	if !listed.Partial {
		for key, local := range byKey {
			if _, ok := seen[key]; ok {
				continue
			}
			if !local.Mirrored || !withinHorizon(local, listed) {
				continue
			}
			if err := r.store.RemoveAppointment(ctx, local.ID); err != nil {
				return result, fmt.Errorf("failed to remove mirror %q: %w", local.ID, err)
			}
			result.Deleted++
		}
	}

	if listed.NextCursor != "" && listed.NextCursor != conn.SyncCursor {
		if err := r.store.SaveSyncCursor(ctx, ownerID, listed.NextCursor); err != nil {
			return result, fmt.Errorf("failed to save sync cursor for owner %q: %w", ownerID, err)
		}
	}
	return result, nil
}

// PushAppointment exports a native appointment to the owner's default
// provider calendar and stores the returned linkage on the row. The row
// keeps Mirrored=false; later listings that echo the exported event are
// recognized by the linkage and never mint a mirror.
func (r *Reconciler) PushAppointment(ctx context.Context, a *record.Appointment) error {
	if a.Mirrored || a.ExternalEventID != "" {
		return fmt.Errorf("appointment %q already has provider linkage", a.ID)
	}
	conn, err := r.store.GetConnection(ctx, a.OwnerID)
	if errors.Is(err, record.ErrNotFound) {
		return provider.ErrNotConnected
	}
	if err != nil {
		return fmt.Errorf("failed to load connection for owner %q: %w", a.OwnerID, err)
	}

	calendars, err := r.store.ListCalendars(ctx, a.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list calendars for owner %q: %w", a.OwnerID, err)
	}
	calendarID := ""
	for _, c := range calendars {
		if c.IsDefault {
			calendarID = c.ExternalCalendarID
		}
	}
	if calendarID == "" {
		return fmt.Errorf("owner %q has no default calendar to export to", a.OwnerID)
	}

	eventID, err := r.client.CreateEvent(ctx, conn, provider.EventDraft{
		CalendarID:  calendarID,
		Title:       a.Title,
		Start:       a.StartTime,
		End:         a.EndTime,
		AllDay:      a.AllDay,
		Location:    a.Location,
		Description: a.Description,
	})
	if err != nil {
		return err
	}

	a.ExternalEventID = eventID
	a.ExternalCalendarID = calendarID
	if err := r.store.UpsertAppointment(ctx, a); err != nil {
		return fmt.Errorf("failed to store provider linkage for %q: %w", a.ID, err)
	}
	return nil
}

// SyncAll reconciles every connected owner sequentially. One owner's failure
// is logged and does not abort the batch; the summed counts cover the owners
// that succeeded.
func (r *Reconciler) SyncAll(ctx context.Context) (Result, error) {
	connections, err := r.store.ListConnections(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list connections: %w", err)
	}

	var total Result
	for _, conn := range connections {
		res, err := r.SyncOwner(ctx, conn.OwnerID)
		if errors.Is(err, provider.ErrNotConnected) {
			continue
		}
		if err != nil {
			log.WithField("owner", conn.OwnerID).Errorf("sync failed: %v", err)
			continue
		}
		total.add(res)
	}
	return total, nil
}

func (r *Reconciler) acquire(ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[ownerID]; ok {
		return fmt.Errorf("owner %q: %w", ownerID, ErrSyncInFlight)
	}
	r.inFlight[ownerID] = struct{}{}
	return nil
}

func (r *Reconciler) release(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, ownerID)
}

// mirrorKey identifies one provider calendar entry. The event id alone is
// not unique: copies of an event across calendars share it.
type mirrorKey struct {
	eventID    string
	calendarID string
}

// withinHorizon reports whether a bounded full listing covers the mirror.
func withinHorizon(m record.Appointment, l provider.ListResult) bool {
	if !l.HorizonStart.IsZero() && m.StartTime.Before(l.HorizonStart) {
		return false
	}
	if !l.HorizonEnd.IsZero() && m.StartTime.After(l.HorizonEnd) {
		return false
	}
	return true
}

// mirrorEqual compares mirrors field by field so an unchanged provider set
// reconciles to zero updates. Instants compare with Equal to ignore
// location and monotonic-clock differences from storage round trips.
func mirrorEqual(a, b record.Appointment) bool {
	return a.ID == b.ID &&
		a.OwnerID == b.OwnerID &&
		a.Title == b.Title &&
		a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime) &&
		a.AllDay == b.AllDay &&
		a.Location == b.Location &&
		a.Description == b.Description &&
		a.ExternalCalendarID == b.ExternalCalendarID
}

func mirrorFrom(pe provider.Event, ownerID string) record.Appointment {
	return record.Appointment{
		OwnerID:            ownerID,
		Title:              pe.Title,
		StartTime:          pe.Start,
		EndTime:            pe.End,
		AllDay:             pe.AllDay,
		Location:           pe.Location,
		Description:        pe.Description,
		Mirrored:           true,
		ExternalEventID:    pe.ID,
		ExternalCalendarID: pe.CalendarID,
	}
}
