package record

import (
	"time"
)

// Appointment is a native calendar row. Rows mirrored from the external
// provider carry the provider linkage fields and Mirrored=true.
type Appointment struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	Title              string    `json:"title"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	AllDay             bool      `json:"allDay"`
	Location           string    `json:"location"`
	Description        string    `json:"description"`
	Mirrored           bool      `json:"mirrored"`
	ExternalEventID    string    `json:"externalEventId"`
	ExternalCalendarID string    `json:"externalCalendarId"`
	LinkedKind         string    `json:"linkedKind"`
	LinkedID           string    `json:"linkedId"`
}

// Seeker is the recovery-seeker parent record coaching sessions hang off.
type Seeker struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CoachID string `json:"coachId"`
}

// CoachingSession stores its dates as the raw strings the CRM forms capture;
// the adapter decides whether they parse.
type CoachingSession struct {
	ID       string `json:"id"`
	SeekerID string `json:"seekerId"`
	Date     string `json:"date"`
	EndDate  string `json:"endDate"`
	Notes    string `json:"notes"`
}

type Workshop struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// Calendar describes one external calendar a provider connection exposes.
// Exactly one per owner is the default at steady state.
type Calendar struct {
	ID                 string `json:"id"`
	OwnerID            string `json:"ownerId"`
	ExternalCalendarID string `json:"externalCalendarId"`
	DisplayName        string `json:"displayName"`
	Color              string `json:"color"`
	IsDefault          bool   `json:"isDefault"`
}

// Connection records an owner's provider OAuth link and reconciliation
// progress. SyncCursor is empty before the first successful sync.
type Connection struct {
	OwnerID      string    `json:"ownerId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenExpiry  time.Time `json:"tokenExpiry"`
	SyncCursor   string    `json:"syncCursor"`
}
