package google

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/harborlight/crm-calendar/internal/provider"
	"github.com/harborlight/crm-calendar/internal/record"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Config struct {
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	// Horizon bounds a full listing; incremental listings are unbounded.
	PastDays   int
	FutureDays int
}

// Client implements provider.Client on the Google Calendar API.
type Client struct {
	oauth      *oauth2.Config
	pastDays   int
	futureDays int
}

func New(config Config) *Client {
	pastDays := config.PastDays
	if pastDays == 0 {
		pastDays = 90
	}
	futureDays := config.FutureDays
	if futureDays == 0 {
		futureDays = 365
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{calendar.CalendarReadonlyScope, calendar.CalendarEventsScope},
		},
		pastDays:   pastDays,
		futureDays: futureDays,
	}
}

// syncState is the opaque cursor: one Google sync token per calendar.
type syncState map[string]string

func (c *Client) service(ctx context.Context, conn record.Connection) (*calendar.Service, error) {
	if conn.AccessToken == "" && conn.RefreshToken == "" {
		return nil, provider.ErrNotConnected
	}
	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}
	// A session with no refresh token and an expired access token cannot be
	// renewed; detect it before touching the provider.
	if !token.Valid() && conn.RefreshToken == "" {
		return nil, provider.ErrAuthExpired
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(c.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, mapError(err)
	}
	return svc, nil
}

func (c *Client) ListEvents(ctx context.Context, conn record.Connection, cursor string) (provider.ListResult, error) {
	svc, err := c.service(ctx, conn)
	if err != nil {
		return provider.ListResult{}, err
	}

	calendarIDs, err := listCalendarIDs(svc)
	if err != nil {
		return provider.ListResult{}, mapError(err)
	}

	state := syncState{}
	if cursor != "" {
		// A cursor that fails to decode just forces a full listing.
		_ = json.Unmarshal([]byte(cursor), &state)
	}
	incremental := len(state) > 0
	for _, id := range calendarIDs {
		if state[id] == "" {
			incremental = false
		}
	}

	result, err := c.listAll(svc, calendarIDs, state, incremental)
	if errors.Is(err, errSyncTokenExpired) {
		result, err = c.listAll(svc, calendarIDs, syncState{}, false)
	}
	if err != nil {
		return provider.ListResult{}, err
	}
	return result, nil
}

func (c *Client) CreateEvent(ctx context.Context, conn record.Connection, draft provider.EventDraft) (string, error) {
	svc, err := c.service(ctx, conn)
	if err != nil {
		return "", err
	}
	item := &calendar.Event{
		Summary:     draft.Title,
		Location:    draft.Location,
		Description: draft.Description,
	}
	if draft.AllDay {
		item.Start = &calendar.EventDateTime{Date: draft.Start.Format("2006-01-02")}
		// Google all-day ends are exclusive.
		item.End = &calendar.EventDateTime{Date: draft.End.AddDate(0, 0, 1).Format("2006-01-02")}
	} else {
		item.Start = &calendar.EventDateTime{DateTime: draft.Start.Format(time.RFC3339)}
		item.End = &calendar.EventDateTime{DateTime: draft.End.Format(time.RFC3339)}
	}
	created, err := svc.Events.Insert(draft.CalendarID, item).Do()
	if err != nil {
		return "", mapError(err)
	}
	return created.Id, nil
}

var errSyncTokenExpired = errors.New("sync token expired")

func (c *Client) listAll(
	svc *calendar.Service,
	calendarIDs []string,
	state syncState,
	incremental bool,
) (provider.ListResult, error) {
	result := provider.ListResult{Partial: incremental}
	if !incremental {
		// A full listing only covers the horizon, and the result says so:
		// mirrors outside it cannot be declared gone by absence.
		now := time.Now()
		result.HorizonStart = now.AddDate(0, 0, -c.pastDays)
		result.HorizonEnd = now.AddDate(0, 0, c.futureDays)
	}
	next := syncState{}
	for _, calendarID := range calendarIDs {
		call := svc.Events.List(calendarID).SingleEvents(true).MaxResults(250)
		if incremental {
			call = call.SyncToken(state[calendarID]).ShowDeleted(true)
		} else {
			call = call.
				TimeMin(result.HorizonStart.Format(time.RFC3339)).
				TimeMax(result.HorizonEnd.Format(time.RFC3339))
		}

		pageToken := ""
		for {
			page, err := call.PageToken(pageToken).Do()
			if err != nil {
				var gerr *googleapi.Error
				if errors.As(err, &gerr) && gerr.Code == 410 {
					return provider.ListResult{}, errSyncTokenExpired
				}
				return provider.ListResult{}, mapError(err)
			}
			for _, item := range page.Items {
				result.Events = append(result.Events, convert(item, calendarID))
			}
			if page.NextSyncToken != "" {
				next[calendarID] = page.NextSyncToken
			}
			if page.NextPageToken == "" {
				break
			}
			pageToken = page.NextPageToken
		}
	}
	if len(next) > 0 {
		encoded, err := json.Marshal(next)
		if err == nil {
			result.NextCursor = string(encoded)
		}
	}
	return result, nil
}

func listCalendarIDs(svc *calendar.Service) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		page, err := svc.CalendarList.List().PageToken(pageToken).Do()
		if err != nil {
			return nil, err
		}
		for _, entry := range page.Items {
			ids = append(ids, entry.Id)
		}
		if page.NextPageToken == "" {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}

func convert(item *calendar.Event, calendarID string) provider.Event {
	e := provider.Event{
		ID:          item.Id,
		CalendarID:  calendarID,
		Title:       item.Summary,
		Location:    item.Location,
		Description: item.Description,
		Cancelled:   item.Status == "cancelled",
	}
	if item.Start != nil {
		if item.Start.Date != "" {
			e.AllDay = true
			e.Start, _ = time.ParseInLocation("2006-01-02", item.Start.Date, time.Local)
		} else {
			e.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		}
	}
	if item.End != nil {
		if item.End.Date != "" {
			end, _ := time.ParseInLocation("2006-01-02", item.End.Date, time.Local)
			// Google all-day ends are exclusive; the mirror stores the last
			// included day.
			e.End = end.AddDate(0, 0, -1)
		} else {
			e.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
		}
	}
	if e.End.Before(e.Start) {
		e.End = e.Start
	}
	return e
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return provider.ErrAuthExpired
		}
		return &provider.RequestError{Status: gerr.Code, Message: gerr.Message}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return provider.ErrAuthExpired
	}
	return &provider.RequestError{Message: err.Error()}
}
