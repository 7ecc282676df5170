package record

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record with same ID exists")
	ErrMissingID   = errors.New("record has no ID")
)

// AppointmentFilter narrows ListAppointments. Zero value lists everything.
type AppointmentFilter struct {
	OwnerID      string
	MirroredOnly bool
	// From/To bound the appointment start, [From:To). EndFrom keeps rows
	// whose end is at or after it, so spanning rows survive a window cut.
	From    time.Time
	To      time.Time
	EndFrom time.Time
}

type Store interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error)
	UpsertAppointment(ctx context.Context, a *Appointment) error
	RemoveAppointment(ctx context.Context, id string) error

	ListSeekers(ctx context.Context) ([]Seeker, error)
	ListSessions(ctx context.Context) ([]CoachingSession, error)
	ListWorkshops(ctx context.Context) ([]Workshop, error)

	ListCalendars(ctx context.Context, ownerID string) ([]Calendar, error)
	ListAllCalendars(ctx context.Context) ([]Calendar, error)
	UpsertCalendar(ctx context.Context, c *Calendar) error

	GetConnection(ctx context.Context, ownerID string) (Connection, error)
	ListConnections(ctx context.Context) ([]Connection, error)
	UpsertConnection(ctx context.Context, c *Connection) error
	SaveSyncCursor(ctx context.Context, ownerID string, cursor string) error
}
