package memorystorage_test

import (
	"context"
	"testing"
	"time"

	"github.com/harborlight/crm-calendar/internal/record"
	memorystorage "github.com/harborlight/crm-calendar/internal/record/memory"
	"github.com/stretchr/testify/require"
)

func TestAppointments(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("upsert and list", func(t *testing.T) {
		s := memorystorage.New()
		a := record.Appointment{
			ID: "a1", OwnerID: "bob", Title: "test",
			StartTime: initDate.Add(1 * time.Hour),
			EndTime:   initDate.Add(2 * time.Hour),
		}
		require.NoError(t, s.UpsertAppointment(ctx, &a))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{})
		require.NoError(t, err)
		require.Equal(t, []record.Appointment{a}, list)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		s := memorystorage.New()
		a := record.Appointment{ID: "a1", OwnerID: "bob", Title: "before", StartTime: initDate, EndTime: initDate}
		require.NoError(t, s.UpsertAppointment(ctx, &a))
		a.Title = "after"
		require.NoError(t, s.UpsertAppointment(ctx, &a))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "after", list[0].Title)
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		s := memorystorage.New()
		err := s.UpsertAppointment(ctx, &record.Appointment{OwnerID: "bob"})
		require.ErrorIs(t, err, record.ErrMissingID)
	})

	t.Run("remove unknown id fails", func(t *testing.T) {
		s := memorystorage.New()
		require.ErrorIs(t, s.RemoveAppointment(ctx, "nope"), record.ErrNotFound)
	})

	t.Run("filters by owner, mirror flag and range", func(t *testing.T) {
		s := memorystorage.New()
		require.NoError(t, s.UpsertAppointment(ctx, &record.Appointment{
			ID: "a1", OwnerID: "bob", StartTime: initDate, EndTime: initDate,
		}))
		require.NoError(t, s.UpsertAppointment(ctx, &record.Appointment{
			ID: "a2", OwnerID: "bob", Mirrored: true, ExternalEventID: "g-1",
			StartTime: initDate.AddDate(0, 0, 1), EndTime: initDate.AddDate(0, 0, 1),
		}))
		require.NoError(t, s.UpsertAppointment(ctx, &record.Appointment{
			ID: "a3", OwnerID: "carol", StartTime: initDate, EndTime: initDate,
		}))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{OwnerID: "bob"})
		require.NoError(t, err)
		require.Len(t, list, 2)

		list, err = s.ListAppointments(ctx, record.AppointmentFilter{OwnerID: "bob", MirroredOnly: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "a2", list[0].ID)

		list, err = s.ListAppointments(ctx, record.AppointmentFilter{
			From: initDate.AddDate(0, 0, 1), To: initDate.AddDate(0, 0, 2),
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "a2", list[0].ID)
	})

	t.Run("end bound keeps spanning rows", func(t *testing.T) {
		s := memorystorage.New()
		require.NoError(t, s.UpsertAppointment(ctx, &record.Appointment{
			ID: "a-span", OwnerID: "bob",
			StartTime: initDate.AddDate(0, -2, 0), EndTime: initDate.AddDate(0, 0, 5),
		}))
		require.NoError(t, s.UpsertAppointment(ctx, &record.Appointment{
			ID: "a-past", OwnerID: "bob",
			StartTime: initDate.AddDate(0, -2, 0), EndTime: initDate.AddDate(0, -1, 0),
		}))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{EndFrom: initDate})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "a-span", list[0].ID)
	})
}

func TestConnections(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing connection", func(t *testing.T) {
		s := memorystorage.New()
		_, err := s.GetConnection(ctx, "bob")
		require.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("cursor round trip", func(t *testing.T) {
		s := memorystorage.New()
		require.NoError(t, s.UpsertConnection(ctx, &record.Connection{OwnerID: "bob", AccessToken: "t"}))
		require.NoError(t, s.SaveSyncCursor(ctx, "bob", "cursor-1"))

		c, err := s.GetConnection(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, "cursor-1", c.SyncCursor)
	})

	t.Run("cursor for unknown owner fails", func(t *testing.T) {
		s := memorystorage.New()
		require.ErrorIs(t, s.SaveSyncCursor(ctx, "ghost", "c"), record.ErrNotFound)
	})
}

func TestCalendars(t *testing.T) {
	ctx := context.Background()
	s := memorystorage.New()
	require.NoError(t, s.UpsertCalendar(ctx, &record.Calendar{
		ID: "c1", OwnerID: "bob", ExternalCalendarID: "bob-default", IsDefault: true,
	}))
	require.NoError(t, s.UpsertCalendar(ctx, &record.Calendar{
		ID: "c2", OwnerID: "carol", ExternalCalendarID: "carol-default", IsDefault: true,
	}))

	list, err := s.ListCalendars(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "c1", list[0].ID)

	all, err := s.ListAllCalendars(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
