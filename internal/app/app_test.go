package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/harborlight/crm-calendar/internal/app"
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/prefs"
	memoryprefs "github.com/harborlight/crm-calendar/internal/prefs/memory"
	"github.com/harborlight/crm-calendar/internal/privacy"
	"github.com/harborlight/crm-calendar/internal/record"
	memorystorage "github.com/harborlight/crm-calendar/internal/record/memory"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*app.App, *memorystorage.Storage) {
	t.Helper()
	ctx := context.Background()
	store := memorystorage.New()

	require.NoError(t, store.UpsertCalendar(ctx, &record.Calendar{
		ID: "cal-bob-default", OwnerID: "bob", ExternalCalendarID: "bob-default", IsDefault: true,
	}))
	require.NoError(t, store.UpsertCalendar(ctx, &record.Calendar{
		ID: "cal-bob-private", OwnerID: "bob", ExternalCalendarID: "bob-private",
	}))

	start := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	require.NoError(t, store.UpsertAppointment(ctx, &record.Appointment{
		ID: "a-local", OwnerID: "bob", Title: "1:1",
		StartTime: start, EndTime: start.Add(time.Hour),
	}))
	require.NoError(t, store.UpsertAppointment(ctx, &record.Appointment{
		ID: "a-default", OwnerID: "bob", Title: "Board",
		StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour),
		Mirrored: true, ExternalEventID: "g-1", ExternalCalendarID: "bob-default",
	}))
	require.NoError(t, store.UpsertAppointment(ctx, &record.Appointment{
		ID: "a-private", OwnerID: "bob", Title: "Dentist",
		StartTime: start.Add(4 * time.Hour), EndTime: start.Add(5 * time.Hour),
		Mirrored: true, ExternalEventID: "g-2", ExternalCalendarID: "bob-private",
	}))

	store.PutSeeker(record.Seeker{ID: "seeker-1", Name: "Jordan Miles", CoachID: "bob"})
	store.PutSession(record.CoachingSession{ID: "s1", SeekerID: "seeker-1", Date: "2026-03-04"})
	store.PutWorkshop(record.Workshop{
		ID: "w1", OwnerID: "carol", Title: "Budgeting basics",
		Start: "2026-03-03", End: "2026-03-05",
	})

	return app.New(store, memoryprefs.New(), nil), store
}

func eventIDs(events []event.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestGetVisibleEvents(t *testing.T) {
	ctx := context.Background()
	window := event.MonthWindow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))

	t.Run("own mode sees every calendar by default", func(t *testing.T) {
		calendar, _ := seed(t)
		events, err := calendar.GetVisibleEvents(ctx, "bob", privacy.ModeOwn, "", window)
		require.NoError(t, err)
		require.Equal(t, []string{"a-local", "a-default", "a-private", "coaching-s1"}, eventIDs(events))
	})

	t.Run("own mode honours calendar toggles", func(t *testing.T) {
		calendar, _ := seed(t)
		require.NoError(t, prefs.SetStringSet(ctx, calendar.Prefs, "bob", prefs.KeyEnabledCalendars, []string{"bob-private"}))
		events, err := calendar.GetVisibleEvents(ctx, "bob", privacy.ModeOwn, "", window)
		require.NoError(t, err)
		require.Equal(t, []string{"a-local", "a-private", "coaching-s1"}, eventIDs(events))
	})

	t.Run("other mode hides non-default calendars", func(t *testing.T) {
		calendar, _ := seed(t)
		events, err := calendar.GetVisibleEvents(ctx, "alice", privacy.ModeOther, "bob", window)
		require.NoError(t, err)
		require.Equal(t, []string{"a-local", "a-default", "coaching-s1"}, eventIDs(events))
	})

	t.Run("all mode merges every owner under default-calendar scoping", func(t *testing.T) {
		calendar, _ := seed(t)
		events, err := calendar.GetVisibleEvents(ctx, "alice", privacy.ModeAll, "", window)
		require.NoError(t, err)
		require.Equal(t, []string{"workshop-w1", "a-local", "a-default", "coaching-s1"}, eventIDs(events))
	})

	t.Run("banner starting long before the window is kept", func(t *testing.T) {
		calendar, store := seed(t)
		require.NoError(t, store.UpsertAppointment(ctx, &record.Appointment{
			ID: "a-banner", OwnerID: "bob", Title: "Sabbatical", AllDay: true,
			StartTime: time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local),
			EndTime:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local),
		}))
		events, err := calendar.GetVisibleEvents(ctx, "bob", privacy.ModeOwn, "", window)
		require.NoError(t, err)
		require.Contains(t, eventIDs(events), "a-banner")
	})

	t.Run("deleting the seeker removes its derived events", func(t *testing.T) {
		calendar, store := seed(t)
		store.PutSession(record.CoachingSession{ID: "s1", SeekerID: "gone", Date: "2026-03-04"})
		events, err := calendar.GetVisibleEvents(ctx, "bob", privacy.ModeOwn, "", window)
		require.NoError(t, err)
		require.NotContains(t, eventIDs(events), "coaching-s1")
	})
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()
	window := event.MonthWindow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.Local)

	t.Run("stored appointment becomes visible", func(t *testing.T) {
		calendar, _ := seed(t)
		require.NoError(t, calendar.CreateAppointment(ctx, &record.Appointment{
			ID: "a-new", OwnerID: "bob", Title: "Intake",
			StartTime: start, EndTime: start.Add(time.Hour),
		}))
		events, err := calendar.GetVisibleEvents(ctx, "bob", privacy.ModeOwn, "", window)
		require.NoError(t, err)
		require.Contains(t, eventIDs(events), "a-new")
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		calendar, _ := seed(t)
		err := calendar.CreateAppointment(ctx, &record.Appointment{
			ID: "a-bad", OwnerID: "bob",
			StartTime: start, EndTime: start.Add(-time.Hour),
		})
		require.ErrorIs(t, err, event.ErrIncorrectEventTime)
	})
}

func TestOwnerColors(t *testing.T) {
	ctx := context.Background()
	calendar, _ := seed(t)

	colors, err := calendar.OwnerColors(ctx, "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	require.NotEmpty(t, colors["bob"])
	require.NotEmpty(t, colors["carol"])

	require.NoError(t, calendar.Prefs.Set(ctx, "alice", prefs.KeyColorOverrides, `{"bob":"#112233"}`))
	colors, err = calendar.OwnerColors(ctx, "alice", []string{"bob"})
	require.NoError(t, err)
	require.Equal(t, "#112233", colors["bob"])
}

func TestViewPush(t *testing.T) {
	ctx := context.Background()
	window := event.MonthWindow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	t.Run("allowed push appends without a recompute", func(t *testing.T) {
		calendar, _ := seed(t)
		view := calendar.Views.Open("alice", privacy.ModeOther, "bob", window)
		defer calendar.Views.Close(view)
		require.NoError(t, view.Recompute(ctx))
		before := len(view.Events())

		calendar.Views.Broadcast(ctx, record.Appointment{
			ID: "a-pushed", OwnerID: "bob", Title: "New",
			StartTime: start, EndTime: start.Add(time.Hour),
			Mirrored: true, ExternalEventID: "g-9", ExternalCalendarID: "bob-default",
		})
		require.Len(t, view.Events(), before+1)
	})

	t.Run("push is privacy-scoped before display", func(t *testing.T) {
		calendar, _ := seed(t)
		view := calendar.Views.Open("alice", privacy.ModeOther, "bob", window)
		defer calendar.Views.Close(view)
		require.NoError(t, view.Recompute(ctx))
		before := len(view.Events())

		calendar.Views.Broadcast(ctx, record.Appointment{
			ID: "a-secret", OwnerID: "bob", Title: "Private",
			StartTime: start, EndTime: start.Add(time.Hour),
			Mirrored: true, ExternalEventID: "g-10", ExternalCalendarID: "bob-private",
		})
		require.Len(t, view.Events(), before)
	})

	t.Run("push outside the window is ignored", func(t *testing.T) {
		calendar, _ := seed(t)
		view := calendar.Views.Open("bob", privacy.ModeOwn, "", window)
		defer calendar.Views.Close(view)
		require.NoError(t, view.Recompute(ctx))
		before := len(view.Events())

		outside := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
		calendar.Views.Broadcast(ctx, record.Appointment{
			ID: "a-later", OwnerID: "bob", Title: "Later",
			StartTime: outside, EndTime: outside.Add(time.Hour),
		})
		require.Len(t, view.Events(), before)
	})
}
