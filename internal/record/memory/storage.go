package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/harborlight/crm-calendar/internal/record"
)

type Storage struct {
	mu           sync.RWMutex
	appointments map[string]record.Appointment
	seekers      map[string]record.Seeker
	sessions     map[string]record.CoachingSession
	workshops    map[string]record.Workshop
	calendars    map[string]record.Calendar
	connections  map[string]record.Connection
}

func New() *Storage {
	return &Storage{
		appointments: make(map[string]record.Appointment),
		seekers:      make(map[string]record.Seeker),
		sessions:     make(map[string]record.CoachingSession),
		workshops:    make(map[string]record.Workshop),
		calendars:    make(map[string]record.Calendar),
		connections:  make(map[string]record.Connection),
	}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) ListAppointments(_ context.Context, f record.AppointmentFilter) ([]record.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Appointment, 0)
	for _, a := range s.appointments {
		if f.OwnerID != "" && a.OwnerID != f.OwnerID {
			continue
		}
		if f.MirroredOnly && !a.Mirrored {
			continue
		}
		if !f.From.IsZero() && a.StartTime.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !a.StartTime.Before(f.To) {
			continue
		}
		if !f.EndFrom.IsZero() && a.EndTime.Before(f.EndFrom) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) UpsertAppointment(_ context.Context, a *record.Appointment) error {
	if a.ID == "" {
		return fmt.Errorf("failed to upsert appointment: %w", record.ErrMissingID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = *a
	return nil
}

func (s *Storage) RemoveAppointment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return fmt.Errorf("failed to remove appointment with id %q: %w", id, record.ErrNotFound)
	}
	delete(s.appointments, id)
	return nil
}

func (s *Storage) ListSeekers(_ context.Context) ([]record.Seeker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Seeker, 0, len(s.seekers))
	for _, r := range s.seekers {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) ListSessions(_ context.Context) ([]record.CoachingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.CoachingSession, 0, len(s.sessions))
	for _, r := range s.sessions {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) ListWorkshops(_ context.Context) ([]record.Workshop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Workshop, 0, len(s.workshops))
	for _, r := range s.workshops {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) PutSeeker(r record.Seeker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekers[r.ID] = r
}

func (s *Storage) PutSession(r record.CoachingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[r.ID] = r
}

func (s *Storage) PutWorkshop(r record.Workshop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workshops[r.ID] = r
}

func (s *Storage) ListCalendars(_ context.Context, ownerID string) ([]record.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Calendar, 0)
	for _, c := range s.calendars {
		if c.OwnerID == ownerID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) ListAllCalendars(_ context.Context) ([]record.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Calendar, 0, len(s.calendars))
	for _, c := range s.calendars {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) UpsertCalendar(_ context.Context, c *record.Calendar) error {
	if c.ID == "" {
		return fmt.Errorf("failed to upsert calendar: %w", record.ErrMissingID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[c.ID] = *c
	return nil
}

func (s *Storage) GetConnection(_ context.Context, ownerID string) (record.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[ownerID]
	if !ok {
		return record.Connection{}, fmt.Errorf("no provider connection for owner %q: %w", ownerID, record.ErrNotFound)
	}
	return c, nil
}

func (s *Storage) ListConnections(_ context.Context) ([]record.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OwnerID < result[j].OwnerID })
	return result, nil
}

func (s *Storage) UpsertConnection(_ context.Context, c *record.Connection) error {
	if c.OwnerID == "" {
		return fmt.Errorf("failed to upsert connection: %w", record.ErrMissingID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[c.OwnerID] = *c
	return nil
}

func (s *Storage) SaveSyncCursor(_ context.Context, ownerID string, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[ownerID]
	if !ok {
		return fmt.Errorf("no provider connection for owner %q: %w", ownerID, record.ErrNotFound)
	}
	c.SyncCursor = cursor
	s.connections[ownerID] = c
	return nil
}
