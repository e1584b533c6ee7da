package domain

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf strips the clock from t, keeping the calendar day as observed in t's location.
// The result is midnight UTC so dates compare and persist without zone drift.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares two values by calendar day only.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// ParseDate parses a YYYY-MM-DD string. Empty input yields nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, WrapError(ErrCodeInvalid, "invalid date", err)
	}
	return &parsed, nil
}

// FormatDate renders an optional date, empty for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
