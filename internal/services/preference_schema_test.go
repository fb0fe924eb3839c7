package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaIsConsistent(t *testing.T) {
	require.Len(t, preferenceSchema, 19)

	seen := map[string]bool{}
	for _, def := range preferenceSchema {
		assert.False(t, seen[def.Key], "duplicate key %s", def.Key)
		seen[def.Key] = true

		normalized, ok := normalizeValue(def.Kind, def.Default)
		require.True(t, ok, "default of %s has the wrong type", def.Key)
		if def.Options != nil {
			assert.Contains(t, def.Options, normalized, "default of %s is not an allowed value", def.Key)
		}
		assert.NotEqual(t, "Other", categorizePreference(def.Key), def.Key)
		assert.NotEmpty(t, preferenceDescriptions[def.Key], def.Key)
	}
}

func TestPreferenceKindOf(t *testing.T) {
	kind, ok := PreferenceKindOf(PrefDashboardRefreshRate)
	assert.True(t, ok)
	assert.Equal(t, KindInt, kind)
	assert.Equal(t, "int", kind.String())

	_, ok = PreferenceKindOf("favorite_color")
	assert.False(t, ok)
}

func TestCategorizeAndDescribeUnlistedKeys(t *testing.T) {
	assert.Equal(t, "Display", categorizePreference(PrefLanguage))
	assert.Equal(t, "Other", categorizePreference("favorite_color"))
	assert.Equal(t, "Configure Favorite Color", describePreference("favorite_color"))
	assert.Equal(t, "Interface language", describePreference(PrefLanguage))
}

func TestBuildTimezoneCatalog(t *testing.T) {
	catalog := buildTimezoneCatalog([]string{"Zulu", "Europe/Berlin", "America/New_York", "UTC", "America/New_York", ""})

	require.Len(t, catalog, len(commonTimezones)+2)
	assert.Equal(t, commonTimezones, catalog[:len(commonTimezones)])
	assert.Equal(t, []string{"America/New_York", "Zulu"}, catalog[len(commonTimezones):])
}

func TestResolveLocation(t *testing.T) {
	for _, name := range []string{"", "Local", "Mars/Olympus_Mons"} {
		loc, ok := resolveLocation(name)
		assert.False(t, ok, name)
		assert.Equal(t, time.UTC, loc, name)
	}

	loc, ok := resolveLocation("Asia/Tokyo")
	require.True(t, ok)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestSystemZoneSourceWalksZoneinfo(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Europe/Berlin", "posix/Europe/Paris", "Fake/Zone", "zone.tab", "localtime", "lowercase/zone"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	t.Setenv("ZONEINFO", dir)

	zones, err := SystemZoneSource()()
	require.NoError(t, err)
	assert.Equal(t, []string{"Europe/Berlin"}, zones)
}
