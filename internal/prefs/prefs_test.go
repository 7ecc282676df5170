package prefs_test

import (
	"context"
	"testing"

	"github.com/harborlight/crm-calendar/internal/prefs"
	memoryprefs "github.com/harborlight/crm-calendar/internal/prefs/memory"
	"github.com/stretchr/testify/require"
)

func TestStringSet(t *testing.T) {
	ctx := context.Background()
	store := memoryprefs.New()

	t.Run("unset preference reports not set", func(t *testing.T) {
		set, ok, err := prefs.GetStringSet(ctx, store, "bob", prefs.KeyEnabledCalendars)
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, set)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, prefs.SetStringSet(ctx, store, "bob", prefs.KeyEnabledCalendars, []string{"c1", "c2"}))
		set, ok, err := prefs.GetStringSet(ctx, store, "bob", prefs.KeyEnabledCalendars)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, set, 2)
		require.Contains(t, set, "c1")
		require.Contains(t, set, "c2")
	})

	t.Run("viewers do not share preferences", func(t *testing.T) {
		_, ok, err := prefs.GetStringSet(ctx, store, "carol", prefs.KeyEnabledCalendars)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("empty set is still an explicit choice", func(t *testing.T) {
		require.NoError(t, prefs.SetStringSet(ctx, store, "dave", prefs.KeyEnabledCalendars, []string{}))
		set, ok, err := prefs.GetStringSet(ctx, store, "dave", prefs.KeyEnabledCalendars)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, set)
	})
}

func TestColorOverrides(t *testing.T) {
	ctx := context.Background()
	store := memoryprefs.New()

	overrides, err := prefs.GetColorOverrides(ctx, store, "bob")
	require.NoError(t, err)
	require.Empty(t, overrides)

	require.NoError(t, store.Set(ctx, "bob", prefs.KeyColorOverrides, `{"carol":"#445566"}`))
	overrides, err = prefs.GetColorOverrides(ctx, store, "bob")
	require.NoError(t, err)
	require.Equal(t, "#445566", overrides["carol"])
}
