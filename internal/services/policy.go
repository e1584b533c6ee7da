package services

import "time"

// Policy decides when the reminder scan is due. It is deliberately loose:
// a scan runs at startup, whenever Interval has elapsed since the last one,
// and once more when the daily anchor hour is crossed. Only the eventual
// scan matters; duplicate scans are harmless because stamping is idempotent.
type Policy struct {
	Interval time.Duration
	// AnchorHour is the local hour of the daily scan; negative disables it.
	AnchorHour int
	Location   *time.Location
}

// ShouldRun reports whether a scan should happen at now given the previous
// scan at last. A zero last means no scan has happened in this process.
func (p Policy) ShouldRun(now, last time.Time) bool {
	if last.IsZero() {
		return true
	}
	if now.Before(last) {
		return false
	}
	if p.Interval > 0 && now.Sub(last) >= p.Interval {
		return true
	}
	if p.AnchorHour < 0 || p.AnchorHour > 23 {
		return false
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	anchor := time.Date(local.Year(), local.Month(), local.Day(), p.AnchorHour, 0, 0, 0, loc)
	return !now.Before(anchor) && last.Before(anchor)
}
