package services

import (
	"context"
	"time"

	"bot_admin_backend/internal/models"
	"bot_admin_backend/pkg/utils"

	"github.com/ncruces/go-strftime"
)

const (
	isoDatePattern = "%Y-%m-%d"
	time12hPattern = "%I:%M %p"
	time24hPattern = "%H:%M"

	unknownTime = "Unknown time"
)

var datePatterns = map[string]string{
	DateFormatISO:      "%Y-%m-%d",
	DateFormatEuropean: "%d/%m/%Y",
	DateFormatAmerican: "%m/%d/%Y",
	DateFormatGerman:   "%d.%m.%Y",
	DateFormatJapanese: "%Y年%m月%d日",
}

// displayPattern maps the date/time format preferences to a strftime pattern.
// Unrecognized date formats fall back to ISO.
func displayPattern(dateFormat, timeFormat string, includeTime bool) string {
	pattern, ok := datePatterns[dateFormat]
	if !ok {
		pattern = isoDatePattern
	}
	if !includeTime {
		return pattern
	}
	if timeFormat == TimeFormat12h {
		return pattern + " " + time12hPattern
	}
	return pattern + " " + time24hPattern
}

// FormatDate renders t with the configured date (and optionally time) format.
// t is formatted in its own location.
func (s *userPreferencesService) FormatDate(ctx context.Context, t time.Time, includeTime bool) (string, error) {
	snap, err := s.GetAllPreferences(ctx)
	if err != nil {
		return "", err
	}
	pattern := displayPattern(snap.String(PrefDateFormat), snap.String(PrefTimeFormat), includeTime)
	return strftime.Format(pattern, t), nil
}

// userLocation returns the configured timezone, or UTC when it cannot be loaded.
func (s *userPreferencesService) userLocation(ctx context.Context) (*time.Location, string, error) {
	name, err := s.GetTimezone(ctx)
	if err != nil {
		return nil, "", err
	}
	loc, ok := resolveLocation(name)
	if !ok {
		utils.LogWarn("Configured timezone is not usable, falling back to UTC", map[string]interface{}{"timezone": name})
		return time.UTC, "UTC", nil
	}
	return loc, name, nil
}

// ToUserTimezone converts the instant t to the configured timezone.
func (s *userPreferencesService) ToUserTimezone(ctx context.Context, t time.Time) (time.Time, error) {
	loc, _, err := s.userLocation(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// ConvertToUserTimezone converts t to the configured timezone. A time in UTC
// is treated as a bare wall clock and read in fromTZ first (UTC when empty or
// unknown); a time carrying any other location keeps its instant.
func (s *userPreferencesService) ConvertToUserTimezone(ctx context.Context, t time.Time, fromTZ string) (time.Time, error) {
	if t.Location() != time.UTC {
		return s.ToUserTimezone(ctx, t)
	}
	if fromTZ == "" {
		fromTZ = "UTC"
	}
	from, ok := resolveLocation(fromTZ)
	if !ok && fromTZ != "UTC" {
		utils.LogWarn("Unknown source timezone, assuming UTC", map[string]interface{}{"timezone": fromTZ})
	}
	localized := time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), from)
	return s.ToUserTimezone(ctx, localized)
}

// FormatTimestamp renders epoch milliseconds for display in the user's
// timezone, or in tzOverride when given. It never fails: a zero timestamp or
// any lookup problem yields "Unknown time".
func (s *userPreferencesService) FormatTimestamp(ctx context.Context, timestampMs int64, tzOverride string, includeTime bool) string {
	if timestampMs == 0 {
		return unknownTime
	}
	t := time.UnixMilli(timestampMs).UTC()

	tzName := tzOverride
	if tzName == "" {
		name, err := s.GetTimezone(ctx)
		if err != nil {
			utils.LogError(err, "FormatTimestamp: failed to read timezone preference")
			return unknownTime
		}
		tzName = name
	}
	if loc, ok := resolveLocation(tzName); ok {
		t = t.In(loc)
	}

	out, err := s.FormatDate(ctx, t, includeTime)
	if err != nil {
		utils.LogError(err, "FormatTimestamp: failed to format date")
		return unknownTime
	}
	return out
}

// TodayInUserTimezone returns the bounds of the current day in the user's
// timezone. When the timezone is unusable the UTC day is returned and both
// date strings use ISO format.
func (s *userPreferencesService) TodayInUserTimezone(ctx context.Context) (*models.DayRange, error) {
	name, err := s.GetTimezone(ctx)
	if err != nil {
		return nil, err
	}

	loc, ok := resolveLocation(name)
	if !ok {
		now := s.now().UTC()
		start, end := dayBounds(now, time.UTC)
		iso := now.Format("2006-01-02")
		return &models.DayRange{
			StartMs:       start.UnixMilli(),
			EndMs:         end.UnixMilli(),
			ISODate:       iso,
			FormattedDate: iso,
			Timezone:      "UTC",
		}, nil
	}

	now := s.now().In(loc)
	start, end := dayBounds(now, loc)
	formatted, err := s.FormatDate(ctx, now, false)
	if err != nil {
		return nil, err
	}
	return &models.DayRange{
		StartMs:       start.UnixMilli(),
		EndMs:         end.UnixMilli(),
		ISODate:       now.Format("2006-01-02"),
		FormattedDate: formatted,
		Timezone:      name,
	}, nil
}

func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, 999999000, loc)
	return start, end
}
