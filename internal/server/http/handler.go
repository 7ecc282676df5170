package internalhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/harborlight/crm-calendar/internal/app"
	"github.com/harborlight/crm-calendar/internal/event"
	"github.com/harborlight/crm-calendar/internal/layout"
	"github.com/harborlight/crm-calendar/internal/privacy"
	"github.com/harborlight/crm-calendar/internal/provider"
	"github.com/harborlight/crm-calendar/internal/record"
	"github.com/harborlight/crm-calendar/internal/syncer"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	app *app.App
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	viewerID, mode, ownerID, window, ok := viewParams(w, r)
	if !ok {
		return
	}
	events, err := h.app.GetVisibleEvents(r.Context(), viewerID, mode, ownerID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load events")
		log.Errorf("failed to load events: %v", err)
		return
	}

	owners := make([]string, 0)
	seen := make(map[string]struct{})
	for _, e := range events {
		if _, ok := seen[e.OwnerID]; !ok {
			seen[e.OwnerID] = struct{}{}
			owners = append(owners, e.OwnerID)
		}
	}
	ownerColors, err := h.app.OwnerColors(r.Context(), viewerID, owners)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to resolve colors")
		log.Errorf("failed to resolve colors: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window": window,
		"events": events,
		"colors": ownerColors,
	})
}

func (h *handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var appt record.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid appointment payload")
		return
	}
	if appt.ID == "" || appt.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "id and ownerId are required")
		return
	}

	err := h.app.CreateAppointment(r.Context(), &appt)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, appt)
	case errors.Is(err, event.ErrIncorrectEventTime):
		writeError(w, http.StatusBadRequest, "bad_request", "end must not precede start")
	case errors.Is(err, provider.ErrAuthExpired):
		writeError(w, http.StatusUnauthorized, "reauthenticate", "provider session expired, reconnect the calendar")
	default:
		var reqErr *provider.RequestError
		if errors.As(err, &reqErr) {
			writeError(w, http.StatusBadGateway, "provider_failed", reqErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to create appointment")
		log.Errorf("failed to create appointment %q: %v", appt.ID, err)
	}
}

func (h *handler) allDayGrid(w http.ResponseWriter, r *http.Request) {
	viewerID, mode, ownerID, window, ok := viewParams(w, r)
	if !ok {
		return
	}
	events, err := h.app.GetVisibleEvents(r.Context(), viewerID, mode, ownerID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load events")
		log.Errorf("failed to load events: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window": window,
		"tracks": layout.AllDayTracks(events, window),
	})
}

func (h *handler) timedGrid(w http.ResponseWriter, r *http.Request) {
	viewerID, mode, ownerID, window, ok := viewParams(w, r)
	if !ok {
		return
	}
	startHour := queryInt(r, "startHour", 8)
	endHour := queryInt(r, "endHour", 20)
	if endHour <= startHour || startHour < 0 || endHour > 24 {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid hour range")
		return
	}
	events, err := h.app.GetVisibleEvents(r.Context(), viewerID, mode, ownerID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load events")
		log.Errorf("failed to load events: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window":    window,
		"startHour": startHour,
		"endHour":   endHour,
		"events":    layout.MapToTimeGrid(events, window, startHour, endHour),
	})
}

func (h *handler) sync(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("owner")
	if target == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "owner is required ('all' for every owner)")
		return
	}

	result, err := h.app.RunSync(r.Context(), target)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, provider.ErrNotConnected):
		writeError(w, http.StatusNotFound, "not_connected", "owner has no provider connection")
	case errors.Is(err, provider.ErrAuthExpired):
		writeError(w, http.StatusUnauthorized, "reauthenticate", "provider session expired, reconnect the calendar")
	case errors.Is(err, syncer.ErrSyncInFlight):
		writeError(w, http.StatusConflict, "sync_in_flight", "a sync for this owner is already running")
	default:
		var reqErr *provider.RequestError
		if errors.As(err, &reqErr) {
			// Manual syncs surface the provider's own message.
			writeError(w, http.StatusBadGateway, "provider_failed", reqErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "sync failed")
		log.Errorf("sync failed for %q: %v", target, err)
	}
}

func viewParams(w http.ResponseWriter, r *http.Request) (viewerID string, mode privacy.Mode, ownerID string, window event.Window, ok bool) {
	q := r.URL.Query()
	viewerID = q.Get("viewer")
	if viewerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "viewer is required")
		return "", "", "", event.Window{}, false
	}

	mode = privacy.Mode(q.Get("mode"))
	if mode == "" {
		mode = privacy.ModeOwn
	}
	ownerID = q.Get("owner")
	switch mode {
	case privacy.ModeOwn:
		ownerID = viewerID
	case privacy.ModeOther:
		if ownerID == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "owner is required for mode=other")
			return "", "", "", event.Window{}, false
		}
	case privacy.ModeAll:
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "unknown mode")
		return "", "", "", event.Window{}, false
	}

	date := time.Now()
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return "", "", "", event.Window{}, false
		}
		date = parsed
	}

	switch q.Get("view") {
	case "", "month":
		window = event.MonthWindow(date)
	case "week":
		window = event.WeekWindow(date)
	case "day":
		window = event.DayWindow(date)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "view must be month, week or day")
		return "", "", "", event.Window{}, false
	}
	return viewerID, mode, ownerID, window, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
