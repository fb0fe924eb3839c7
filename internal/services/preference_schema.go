package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PreferenceKeyPrefix marks preference rows in the shared bot_config table.
const PreferenceKeyPrefix = "pref_"

// PreferenceKind is the declared value type of a preference.
type PreferenceKind int

const (
	KindBool PreferenceKind = iota + 1
	KindInt
	KindString
)

// String returns the type name shown in preference metadata.
func (k PreferenceKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "str"
	default:
		return "unknown"
	}
}

// Preference keys.
const (
	PrefTimezone                  = "timezone"
	PrefDateFormat                = "date_format"
	PrefTimeFormat                = "time_format"
	PrefMessagesPerPage           = "messages_per_page"
	PrefAutoRefreshInterval       = "auto_refresh_interval"
	PrefShowMessagePreviews       = "show_message_previews"
	PrefShowReactionNotifications = "show_reaction_notifications"
	PrefEnableAutoReactions       = "enable_auto_reactions"
	PrefDefaultEmojiMode          = "default_emoji_mode"
	PrefLanguage                  = "language"
	PrefShowUnmonitoredGroups     = "show_unmonitored_groups"
	PrefCompactMessageView        = "compact_message_view"
	PrefEnableAIFeatures          = "enable_ai_features"
	PrefDefaultAIProvider         = "default_ai_provider"
	PrefActivityChartStyle        = "activity_chart_style"
	PrefDashboardRefreshRate      = "dashboard_refresh_rate"
	PrefFilterPersistNavigation   = "filter_persist_navigation"
	PrefShowDeletedMessages       = "show_deleted_messages"
	PrefNotificationSound         = "notification_sound"
)

// Date and time format choices.
const (
	DateFormatISO      = "YYYY-MM-DD"
	DateFormatEuropean = "DD/MM/YYYY"
	DateFormatAmerican = "MM/DD/YYYY"
	DateFormatGerman   = "DD.MM.YYYY"
	DateFormatJapanese = "YYYY年MM月DD日"

	TimeFormat24h = "24h"
	TimeFormat12h = "12h"
)

type preferenceDef struct {
	Key     string
	Kind    PreferenceKind
	Default interface{}
	// Options lists the accepted values; nil accepts any value of Kind.
	// The timezone options come from the catalog at service construction.
	Options []interface{}
}

var preferenceSchema = []preferenceDef{
	{Key: PrefTimezone, Kind: KindString, Default: "UTC"},
	{Key: PrefDateFormat, Kind: KindString, Default: DateFormatISO, Options: []interface{}{
		DateFormatISO, DateFormatEuropean, DateFormatAmerican, DateFormatGerman, DateFormatJapanese,
	}},
	{Key: PrefTimeFormat, Kind: KindString, Default: TimeFormat24h, Options: []interface{}{TimeFormat24h, TimeFormat12h}},
	{Key: PrefMessagesPerPage, Kind: KindInt, Default: 50, Options: []interface{}{25, 50, 100, 200}},
	{Key: PrefAutoRefreshInterval, Kind: KindInt, Default: 30, Options: []interface{}{0, 15, 30, 60, 120, 300}},
	{Key: PrefShowMessagePreviews, Kind: KindBool, Default: true},
	{Key: PrefShowReactionNotifications, Kind: KindBool, Default: true},
	{Key: PrefEnableAutoReactions, Kind: KindBool, Default: true},
	{Key: PrefDefaultEmojiMode, Kind: KindString, Default: "random", Options: []interface{}{"random", "fixed", "disabled"}},
	{Key: PrefLanguage, Kind: KindString, Default: "en", Options: []interface{}{"en", "ja", "es", "fr", "de", "zh"}},
	{Key: PrefShowUnmonitoredGroups, Kind: KindBool, Default: false},
	{Key: PrefCompactMessageView, Kind: KindBool, Default: false},
	{Key: PrefEnableAIFeatures, Kind: KindBool, Default: true},
	{Key: PrefDefaultAIProvider, Kind: KindString, Default: "ollama", Options: []interface{}{"ollama", "openai", "anthropic", "gemini", "groq"}},
	{Key: PrefActivityChartStyle, Kind: KindString, Default: "bars", Options: []interface{}{"bars", "heatmap", "line"}},
	{Key: PrefDashboardRefreshRate, Kind: KindInt, Default: 60, Options: []interface{}{0, 30, 60, 120, 300}},
	{Key: PrefFilterPersistNavigation, Kind: KindBool, Default: true},
	{Key: PrefShowDeletedMessages, Kind: KindBool, Default: false},
	{Key: PrefNotificationSound, Kind: KindBool, Default: true},
}

var preferenceIndex = func() map[string]preferenceDef {
	idx := make(map[string]preferenceDef, len(preferenceSchema))
	for _, def := range preferenceSchema {
		idx[def.Key] = def
	}
	return idx
}()

// PreferenceKeys returns every recognized key in schema order.
func PreferenceKeys() []string {
	keys := make([]string, 0, len(preferenceSchema))
	for _, def := range preferenceSchema {
		keys = append(keys, def.Key)
	}
	return keys
}

// PreferenceKindOf reports the declared kind of key.
func PreferenceKindOf(key string) (PreferenceKind, bool) {
	def, ok := preferenceIndex[key]
	return def.Kind, ok
}

// DefaultPreferences returns a fresh snapshot holding only defaults.
func DefaultPreferences() Snapshot {
	snap := make(Snapshot, len(preferenceSchema))
	for _, def := range preferenceSchema {
		snap[def.Key] = def.Default
	}
	return snap
}

var preferenceCategories = []struct {
	Name string
	Keys []string
}{
	{"Display", []string{PrefTimezone, PrefDateFormat, PrefTimeFormat, PrefLanguage}},
	{"Messages", []string{PrefMessagesPerPage, PrefShowMessagePreviews, PrefCompactMessageView, PrefShowDeletedMessages, PrefFilterPersistNavigation}},
	{"Notifications", []string{PrefShowReactionNotifications, PrefNotificationSound, PrefAutoRefreshInterval, PrefDashboardRefreshRate}},
	{"AI & Automation", []string{PrefEnableAIFeatures, PrefDefaultAIProvider, PrefEnableAutoReactions, PrefDefaultEmojiMode}},
	{"Advanced", []string{PrefShowUnmonitoredGroups, PrefActivityChartStyle}},
}

// categorizePreference returns the UI group of key, "Other" when unlisted.
func categorizePreference(key string) string {
	for _, category := range preferenceCategories {
		for _, k := range category.Keys {
			if k == key {
				return category.Name
			}
		}
	}
	return "Other"
}

var preferenceDescriptions = map[string]string{
	PrefTimezone:                  "Your local timezone for displaying dates and times",
	PrefDateFormat:                "How dates are displayed throughout the application",
	PrefTimeFormat:                "12-hour (AM/PM) or 24-hour time display",
	PrefMessagesPerPage:           "Number of messages to show per page",
	PrefAutoRefreshInterval:       "How often to refresh data (0 = disabled)",
	PrefShowMessagePreviews:       "Show message text previews in lists",
	PrefShowReactionNotifications: "Display notifications for emoji reactions",
	PrefEnableAutoReactions:       "Automatically send emoji reactions to messages",
	PrefDefaultEmojiMode:          "How emojis are selected for auto-reactions",
	PrefLanguage:                  "Interface language",
	PrefShowUnmonitoredGroups:     "Display unmonitored groups in lists",
	PrefCompactMessageView:        "Use compact spacing in message lists",
	PrefEnableAIFeatures:          "Enable AI-powered features",
	PrefDefaultAIProvider:         "Default AI provider for analysis",
	PrefActivityChartStyle:        "Visual style for activity charts",
	PrefDashboardRefreshRate:      "Dashboard auto-refresh interval (seconds)",
	PrefFilterPersistNavigation:   "Keep filters when navigating between pages",
	PrefShowDeletedMessages:       "Show deleted messages with strikethrough",
	PrefNotificationSound:         "Play sound for new notifications",
}

// describePreference returns the display sentence for key.
// Unlisted keys get "Configure <Key Name>".
func describePreference(key string) string {
	if d, ok := preferenceDescriptions[key]; ok {
		return d
	}
	// A Caser keeps state, so each call gets its own.
	return "Configure " + cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
