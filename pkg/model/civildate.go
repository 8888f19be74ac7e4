package model

import "time"

// CivilDateLayout is the date-only form bookings are matched on. Stored dates
// may carry a time-of-day; slot matching compares the formatted date strings
// and ignores the clock entirely.
const CivilDateLayout = "2006-01-02"

// CivilDate reduces a timestamp to its calendar date string, keeping the wall
// clock as encoded in the value.
func CivilDate(t time.Time) string {
	return t.Format(CivilDateLayout)
}

// SameCivilDate reports whether two timestamps fall on the same calendar date.
// This is string equality on the date-only forms, not a timestamp-range check.
func SameCivilDate(a, b time.Time) bool {
	return CivilDate(a) == CivilDate(b)
}

// ParseCivilDate parses a YYYY-MM-DD string into a midnight UTC timestamp.
func ParseCivilDate(s string) (time.Time, error) {
	return time.Parse(CivilDateLayout, s)
}
