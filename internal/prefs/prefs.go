// Package prefs is the per-viewer preference store: calendar and owner
// toggles plus color overrides. Values survive process restarts; every write
// is flushed immediately.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	KeyEnabledCalendars = "calendar.enabledCalendars"
	KeyEnabledOwners    = "calendar.enabledOwners"
	KeyColorOverrides   = "calendar.colorOverrides"
)

type Store interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	// Get returns the stored value and whether the key was ever set.
	Get(ctx context.Context, viewerID, key string) (string, bool, error)
	Set(ctx context.Context, viewerID, key, value string) error
}

// GetStringSet decodes a JSON string-list preference into a set. The second
// return is false when the viewer never set the preference, letting callers
// apply their default.
func GetStringSet(ctx context.Context, s Store, viewerID, key string) (map[string]struct{}, bool, error) {
	raw, ok, err := s.Get(ctx, viewerID, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("failed to decode preference %q: %w", key, err)
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set, true, nil
}

func SetStringSet(ctx context.Context, s Store, viewerID, key string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode preference %q: %w", key, err)
	}
	return s.Set(ctx, viewerID, key, string(raw))
}

// GetColorOverrides decodes the ownerID->color map, empty when unset.
func GetColorOverrides(ctx context.Context, s Store, viewerID string) (map[string]string, error) {
	raw, ok, err := s.Get(ctx, viewerID, KeyColorOverrides)
	if err != nil || !ok {
		return map[string]string{}, err
	}
	overrides := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode color overrides: %w", err)
	}
	return overrides, nil
}
