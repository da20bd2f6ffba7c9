package models

import "time"

// DateKeyFormat renders a date for oversold reports and string-keyed maps.
const DateKeyFormat = "01/02/2006"

// ToDate strips the time-of-day and location from t, returning midnight UTC
// of the same calendar day. All date map keys in this module are normalized
// through ToDate so they compare equal regardless of source.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange returns the consecutive calendar days in [start, end), i.e.
// (end-start) whole days beginning at start. An end on or before start
// yields an empty slice.
func DateRange(start, end time.Time) []time.Time {
	start, end = ToDate(start), ToDate(end)
	n := int(end.Sub(start).Hours() / 24)
	if n <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// DateKey formats a normalized date for presentation.
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}
