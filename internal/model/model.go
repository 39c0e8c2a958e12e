package model

import "time"

// ProvenanceSuffix marks identifiers generated by this system, as
// opposed to identifiers carried by documents it merges.
const ProvenanceSuffix = "@eventcal"

// RawEventCandidate is one event as reported by the extraction
// service. Every field is free-form and untrusted; validation happens
// in internal/event.
type RawEventCandidate struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	// DurationMinutes is a pointer so an explicit zero (invalid) can
	// be told apart from the field being absent (default applies).
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	TimezoneHint    string `json:"timezone_hint,omitempty"`
	Location        string `json:"location,omitempty"`
	Description     string `json:"description,omitempty"`
	// Recurrence is an optional RRULE string.
	Recurrence string `json:"recurrence,omitempty"`
}

// LocalDateTime is a naive (zone-less) civil date-time. It is a
// distinct type from time.Time so that a wall-clock reading can only
// become an absolute instant through Localize, which runs exactly
// once per value. Any code holding a time.Time in this package's
// types is therefore already in UTC.
type LocalDateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// Localize interprets the naive date-time in loc and returns the
// corresponding absolute instant, normalized to UTC. This is the
// single conversion point in the system.
func (l LocalDateTime) Localize(loc *time.Location) time.Time {
	return time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, 0, 0, loc).UTC()
}

// AddDays returns the naive date-time shifted by whole days, used when
// an end time crosses midnight.
func (l LocalDateTime) AddDays(days int) LocalDateTime {
	// Normalize through time.Date so month/year carries propagate.
	t := time.Date(l.Year, l.Month, l.Day+days, l.Hour, l.Minute, 0, 0, time.UTC)
	return LocalDateTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// EventRecord is one validated calendar event. StartUTC and EndUTC are
// absolute instants already normalized to UTC; records are never
// mutated after construction.
type EventRecord struct {
	UID         string
	Title       string
	StartUTC    time.Time
	EndUTC      time.Time
	Location    string
	Description string
	// Recurrence is a validated RRULE string, empty when the event
	// does not repeat.
	Recurrence string
}
