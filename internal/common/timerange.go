package common

import (
	"net/http"
	"time"
)

// DayLayout is the wire format for date-range query parameters.
const DayLayout = "2006-01-02"

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// ParseDayRange reads inclusive from/to date parameters, expanding them to
// full-day bounds. When absent, the range defaults to the trailing defaultDays
// days ending today.
func ParseDayRange(r *http.Request, defaultDays int) (from, to time.Time, err error) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")
	now := time.Now()
	if fromStr == "" && toStr == "" {
		days := defaultDays
		if raw := query.Get("days"); raw != "" {
			if parsed := AtoiDefault(raw, days); parsed > 0 {
				days = parsed
			}
		}
		return StartOfDay(now.AddDate(0, 0, -(days - 1))), EndOfDay(now), nil
	}
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, invalidRange("from and to must be provided together")
	}
	fromDay, err := time.ParseInLocation(DayLayout, fromStr, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, invalidRange("invalid from date, expected YYYY-MM-DD")
	}
	toDay, err := time.ParseInLocation(DayLayout, toStr, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, invalidRange("invalid to date, expected YYYY-MM-DD")
	}
	if toDay.Before(fromDay) {
		return time.Time{}, time.Time{}, invalidRange("from must not be after to")
	}
	return StartOfDay(fromDay), EndOfDay(toDay), nil
}

func invalidRange(message string) *AppError {
	return NewAppError("INVALID_RANGE", message, http.StatusBadRequest, nil)
}
