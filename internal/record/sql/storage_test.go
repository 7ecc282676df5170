//go:build sql

package sqlstorage_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/harborlight/crm-calendar/internal/record"
	"github.com/jmoiron/sqlx"
	sqlstorage "github.com/harborlight/crm-calendar/internal/record/sql"
	"github.com/stretchr/testify/require"
)

var (
	host     = "127.0.0.1"
	port     = 5532
	database = "testing"
	username = "postgres"
	password = "pas"
)

func TestMain(m *testing.M) {
	pgHost := os.Getenv("POSTGRES_HOST")
	pgPort := os.Getenv("POSTGRES_PORT")
	if pgHost != "" {
		host = pgHost
	}
	if pgPort != "" {
		port, _ = strconv.Atoi(pgPort)
	}

	cleanupDB()
	code := m.Run()
	os.Exit(code)
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("upsert and list appointment", func(t *testing.T) {
		a := record.Appointment{
			ID: "sql-a1", OwnerID: "bob", Title: "test",
			StartTime: initDate.Add(1 * time.Hour),
			EndTime:   initDate.Add(2 * time.Hour),
			Mirrored:  true, ExternalEventID: "g-1", ExternalCalendarID: "cal-1",
		}
		s := createStorage(t)

		require.NoError(t, s.UpsertAppointment(ctx, &a))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{OwnerID: "bob", MirroredOnly: true})
		require.NoError(t, err)
		require.Equal(t, 1, len(list))
		compareAppointments(t, a, list[0])
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		a := record.Appointment{
			ID: "sql-a2", OwnerID: "bob", Title: "before",
			StartTime: initDate, EndTime: initDate.Add(time.Hour),
		}
		s := createStorage(t)
		require.NoError(t, s.UpsertAppointment(ctx, &a))

		a.Title = "after"
		a.EndTime = a.EndTime.Add(33 * time.Minute)
		require.NoError(t, s.UpsertAppointment(ctx, &a))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{OwnerID: "bob"})
		require.NoError(t, err)
		found := false
		for _, got := range list {
			if got.ID == a.ID {
				compareAppointments(t, a, got)
				found = true
			}
		}
		require.True(t, found)
	})

	t.Run("remove appointment", func(t *testing.T) {
		a := record.Appointment{
			ID: "sql-a3", OwnerID: "carol",
			StartTime: initDate, EndTime: initDate.Add(time.Hour),
		}
		s := createStorage(t)
		require.NoError(t, s.UpsertAppointment(ctx, &a))
		require.NoError(t, s.RemoveAppointment(ctx, a.ID))

		list, err := s.ListAppointments(ctx, record.AppointmentFilter{OwnerID: "carol"})
		require.NoError(t, err)
		require.Equal(t, 0, len(list))
	})

	t.Run("remove unknown appointment", func(t *testing.T) {
		s := createStorage(t)
		require.ErrorIs(t, s.RemoveAppointment(ctx, "sql-none"), record.ErrNotFound)
	})

	t.Run("connection and cursor", func(t *testing.T) {
		s := createStorage(t)
		c := record.Connection{
			OwnerID: "sql-bob", AccessToken: "at", RefreshToken: "rt",
			TokenExpiry: initDate,
		}
		require.NoError(t, s.UpsertConnection(ctx, &c))
		require.NoError(t, s.SaveSyncCursor(ctx, "sql-bob", "cursor-1"))

		got, err := s.GetConnection(ctx, "sql-bob")
		require.NoError(t, err)
		require.Equal(t, "cursor-1", got.SyncCursor)
		require.Equal(t, "rt", got.RefreshToken)

		_, err = s.GetConnection(ctx, "sql-ghost")
		require.ErrorIs(t, err, record.ErrNotFound)
	})
}

func createStorage(t *testing.T) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(sqlstorage.Config{
		Host: host, Port: port, Database: database, Username: username, Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func compareAppointments(t *testing.T, expected record.Appointment, actual record.Appointment) {
	t.Helper()
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.OwnerID, actual.OwnerID)
	require.Equal(t, expected.Title, actual.Title)
	require.True(t, expected.StartTime.Equal(actual.StartTime))
	require.True(t, expected.EndTime.Equal(actual.EndTime))
	require.Equal(t, expected.Mirrored, actual.Mirrored)
	require.Equal(t, expected.ExternalEventID, actual.ExternalEventID)
	require.Equal(t, expected.ExternalCalendarID, actual.ExternalCalendarID)
}

func cleanupDB() {
	db, err := sqlx.Connect("postgres", fmt.Sprintf(
		"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
		host, port, database, username, password))
	if err != nil {
		return
	}
	defer db.Close()
	db.Exec("DELETE FROM appointments")
	db.Exec("DELETE FROM provider_connections")
}
