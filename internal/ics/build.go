// Package ics assembles and merges iCalendar documents from validated
// event records. Building and merging are pure functions over their
// input; writing the result anywhere is the caller's concern.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventcal/internal/model"
)

const (
	// utcLayout is the RFC5545 UTC date-time literal.
	utcLayout = "20060102T150405Z"

	defaultProdID = "-//eventcal//EN"
)

// BuildOptions controls document assembly.
type BuildOptions struct {
	// ProdID is the calendar PRODID; empty uses the package default.
	ProdID string
	// ReminderMinutes adds a DISPLAY alarm that many minutes before
	// each event. Zero or negative disables alarms.
	ReminderMinutes int
	// Now supplies the DTSTAMP clock; nil uses time.Now. Tests inject
	// a fixed clock here.
	Now func() time.Time
}

// Build serializes the records into one calendar document. Block order
// equals input order and all times are emitted as UTC literals.
// Free-text values are handed to the library raw; its serializer
// escapes TEXT properties, so escaping here would double up.
func Build(records []model.EventRecord, opts BuildOptions) string {
	if opts.ProdID == "" {
		opts.ProdID = defaultProdID
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	cal := ical.NewCalendar()
	cal.SetProductId(opts.ProdID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	stamp := now().UTC().Format(utcLayout)

	for _, rec := range records {
		ev := cal.AddEvent(rec.UID)
		ev.SetProperty(ical.ComponentPropertyDtstamp, stamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, rec.StartUTC.UTC().Format(utcLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, rec.EndUTC.UTC().Format(utcLayout))
		ev.SetProperty(ical.ComponentPropertySummary, rec.Title)
		if rec.Location != "" {
			ev.SetProperty(ical.ComponentPropertyLocation, rec.Location)
		}
		if rec.Description != "" {
			ev.SetProperty(ical.ComponentPropertyDescription, rec.Description)
		}
		if rec.Recurrence != "" {
			ev.SetProperty(ical.ComponentPropertyRrule, rec.Recurrence)
		}
		if opts.ReminderMinutes > 0 {
			addReminder(ev, opts.ReminderMinutes)
		}
	}

	// Wire lines are CRLF-terminated on every platform.
	return cal.Serialize(ical.WithNewLineWindows)
}

// addReminder attaches a DISPLAY alarm firing the given number of
// minutes before the event start.
func addReminder(ev *ical.VEvent, minutes int) {
	alarm := &ical.VAlarm{}
	alarm.SetProperty(ical.ComponentPropertyAction, "DISPLAY")
	alarm.SetProperty(ical.ComponentPropertyDescription, "Reminder")
	alarm.SetProperty(ical.ComponentPropertyTrigger, fmt.Sprintf("-PT%dM", minutes))
	ev.Components = append(ev.Components, alarm)
}
