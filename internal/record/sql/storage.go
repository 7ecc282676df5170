package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborlight/crm-calendar/internal/record"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

const dbErrUniqueViolation = "23505"

const appointmentColumns = "id, owner_id AS ownerId, title, start_time AS startTime, end_time AS endTime, " +
	"all_day AS allDay, location, description, mirrored, external_event_id AS externalEventId, " +
	"external_calendar_id AS externalCalendarId, linked_kind AS linkedKind, linked_id AS linkedId"

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Storage struct {
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB
}

func New(config Config) *Storage {
	return &Storage{
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	s.db = db
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) ListAppointments(ctx context.Context, f record.AppointmentFilter) ([]record.Appointment, error) {
	query := "SELECT " + appointmentColumns + " FROM appointments WHERE TRUE"
	args := make([]interface{}, 0, 4)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		query += fmt.Sprintf(" AND owner_id=$%d", len(args))
	}
	if f.MirroredOnly {
		query += " AND mirrored"
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		query += fmt.Sprintf(" AND start_time>=$%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		query += fmt.Sprintf(" AND start_time<$%d", len(args))
	}
	if !f.EndFrom.IsZero() {
		args = append(args, f.EndFrom)
		query += fmt.Sprintf(" AND end_time>=$%d", len(args))
	}
	query += " ORDER BY id"

	var appointments []record.Appointment
	err := s.db.SelectContext(ctx, &appointments, query, args...)
	return appointments, err
}

func (s *Storage) UpsertAppointment(ctx context.Context, a *record.Appointment) error {
	if a.ID == "" {
		return fmt.Errorf("failed to upsert appointment: %w", record.ErrMissingID)
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO appointments(id, owner_id, title, start_time, end_time, all_day, location, description, "+
			"mirrored, external_event_id, external_calendar_id, linked_kind, linked_id) "+
			"VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) "+
			"ON CONFLICT (id) DO UPDATE SET title=$3, start_time=$4, end_time=$5, all_day=$6, location=$7, "+
			"description=$8, mirrored=$9, external_event_id=$10, external_calendar_id=$11, linked_kind=$12, linked_id=$13",
		a.ID, a.OwnerID, a.Title, a.StartTime.UTC(), a.EndTime.UTC(), a.AllDay, a.Location, a.Description,
		a.Mirrored, a.ExternalEventID, a.ExternalCalendarID, a.LinkedKind, a.LinkedID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrUniqueViolation {
		return fmt.Errorf("duplicate ID %q: %w", a.ID, record.ErrDuplicateID)
	}
	return err
}

func (s *Storage) RemoveAppointment(ctx context.Context, id string) error {
	var found bool
	err := s.db.GetContext(ctx, &found, "DELETE FROM appointments WHERE id=$1 RETURNING TRUE", id)
	if !found {
		return fmt.Errorf("failed to remove appointment with id %q: %w", id, record.ErrNotFound)
	}
	return err
}

func (s *Storage) ListSeekers(ctx context.Context) ([]record.Seeker, error) {
	var seekers []record.Seeker
	err := s.db.SelectContext(ctx, &seekers,
		"SELECT id, name, coach_id AS coachId FROM seekers ORDER BY id")
	return seekers, err
}

func (s *Storage) ListSessions(ctx context.Context) ([]record.CoachingSession, error) {
	var sessions []record.CoachingSession
	err := s.db.SelectContext(ctx, &sessions,
		"SELECT id, seeker_id AS seekerId, date, end_date AS endDate, notes FROM coaching_sessions ORDER BY id")
	return sessions, err
}

func (s *Storage) ListWorkshops(ctx context.Context) ([]record.Workshop, error) {
	var workshops []record.Workshop
	err := s.db.SelectContext(ctx, &workshops,
		"SELECT id, owner_id AS ownerId, title, start, \"end\", location FROM workshops ORDER BY id")
	return workshops, err
}

func (s *Storage) ListCalendars(ctx context.Context, ownerID string) ([]record.Calendar, error) {
	var calendars []record.Calendar
	err := s.db.SelectContext(ctx, &calendars,
		"SELECT id, owner_id AS ownerId, external_calendar_id AS externalCalendarId, display_name AS displayName, "+
			"color, is_default AS isDefault FROM calendars WHERE owner_id=$1 ORDER BY id",
		ownerID)
	return calendars, err
}

func (s *Storage) ListAllCalendars(ctx context.Context) ([]record.Calendar, error) {
	var calendars []record.Calendar
	err := s.db.SelectContext(ctx, &calendars,
		"SELECT id, owner_id AS ownerId, external_calendar_id AS externalCalendarId, display_name AS displayName, "+
			"color, is_default AS isDefault FROM calendars ORDER BY id")
	return calendars, err
}

func (s *Storage) UpsertCalendar(ctx context.Context, c *record.Calendar) error {
	if c.ID == "" {
		return fmt.Errorf("failed to upsert calendar: %w", record.ErrMissingID)
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO calendars(id, owner_id, external_calendar_id, display_name, color, is_default) "+
			"VALUES($1, $2, $3, $4, $5, $6) "+
			"ON CONFLICT (id) DO UPDATE SET external_calendar_id=$3, display_name=$4, color=$5, is_default=$6",
		c.ID, c.OwnerID, c.ExternalCalendarID, c.DisplayName, c.Color, c.IsDefault)
	return err
}

func (s *Storage) GetConnection(ctx context.Context, ownerID string) (record.Connection, error) {
	var c record.Connection
	err := s.db.GetContext(ctx, &c,
		"SELECT owner_id AS ownerId, access_token AS accessToken, refresh_token AS refreshToken, "+
			"token_expiry AS tokenExpiry, sync_cursor AS syncCursor FROM provider_connections WHERE owner_id=$1",
		ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Connection{}, fmt.Errorf("no provider connection for owner %q: %w", ownerID, record.ErrNotFound)
	}
	return c, err
}

func (s *Storage) ListConnections(ctx context.Context) ([]record.Connection, error) {
	var connections []record.Connection
	err := s.db.SelectContext(ctx, &connections,
		"SELECT owner_id AS ownerId, access_token AS accessToken, refresh_token AS refreshToken, "+
			"token_expiry AS tokenExpiry, sync_cursor AS syncCursor FROM provider_connections ORDER BY owner_id")
	return connections, err
}

func (s *Storage) UpsertConnection(ctx context.Context, c *record.Connection) error {
	if c.OwnerID == "" {
		return fmt.Errorf("failed to upsert connection: %w", record.ErrMissingID)
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO provider_connections(owner_id, access_token, refresh_token, token_expiry, sync_cursor) "+
			"VALUES($1, $2, $3, $4, $5) "+
			"ON CONFLICT (owner_id) DO UPDATE SET access_token=$2, refresh_token=$3, token_expiry=$4, sync_cursor=$5",
		c.OwnerID, c.AccessToken, c.RefreshToken, c.TokenExpiry.UTC(), c.SyncCursor)
	return err
}

func (s *Storage) SaveSyncCursor(ctx context.Context, ownerID string, cursor string) error {
	var found bool
	err := s.db.GetContext(ctx, &found,
		"UPDATE provider_connections SET sync_cursor=$2 WHERE owner_id=$1 RETURNING TRUE", ownerID, cursor)
	if !found {
		return fmt.Errorf("no provider connection for owner %q: %w", ownerID, record.ErrNotFound)
	}
	return err
}
