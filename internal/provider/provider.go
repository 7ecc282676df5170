// Package provider abstracts the external calendar service. The engine only
// depends on event identity, times, title, the all-day flag and a calendar
// tag; everything else about the wire protocol stays behind Client.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborlight/crm-calendar/internal/record"
)

var (
	// ErrNotConnected means the owner has no provider link. Aggregate
	// callers skip it silently; explicit single-owner syncs surface it.
	ErrNotConnected = errors.New("owner has no provider connection")
	// ErrAuthExpired is surfaced distinctly so the caller can prompt for
	// reauthentication instead of retrying.
	ErrAuthExpired = errors.New("provider session expired, reauthentication required")
)

// RequestError wraps a network or HTTP failure from the provider.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider request failed (status %d): %s", e.Status, e.Message)
}

// Event is the provider-side view of one calendar entry. Cancelled marks a
// tombstone in an incremental listing.
type Event struct {
	ID          string
	CalendarID  string
	Title       string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
	Cancelled   bool
}

// ListResult is the provider's event set. Partial is true when the listing
// is a delta relative to the supplied cursor; deletions then arrive as
// Cancelled tombstones instead of by absence.
type ListResult struct {
	Events     []Event
	NextCursor string
	Partial    bool
	// HorizonStart/HorizonEnd bound a full listing by event start. Zero
	// values mean unbounded. A bounded listing says nothing about events
	// outside the horizon, so absence there implies nothing.
	HorizonStart time.Time
	HorizonEnd   time.Time
}

// EventDraft is a native appointment exported to the provider.
type EventDraft struct {
	CalendarID  string
	Title       string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
}

type Client interface {
	// ListEvents returns the owner's current provider event set, or a
	// delta when cursor is non-empty and the provider supports it.
	ListEvents(ctx context.Context, conn record.Connection, cursor string) (ListResult, error)
	// CreateEvent inserts a draft into the given provider calendar and
	// returns the provider's event id.
	CreateEvent(ctx context.Context, conn record.Connection, draft EventDraft) (string, error)
}
