package models

import "time"

// StoredTime returns t in UTC rounded down to the millisecond precision of a
// BSON date, so a value handed back after a write equals the one read later.
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
