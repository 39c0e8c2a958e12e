// Package timeparse parses the free-form date and time-of-day strings
// coming out of the extraction service. Dates and times are always
// parsed independently; they are never concatenated into one string
// and re-parsed.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventcal/internal/errs"
)

var daysOfWeek = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// dateLayouts are tried in order. Layouts without a year fall back to
// the reference date's year.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Monday January 2 2006",
}

var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"01/02",
	"1/2",
}

// ordinalSuffix strips "5th", "1st", "22nd", "3rd" down to the digits.
var ordinalSuffix = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

// ParseDate parses a free-form date string into a civil date. Relative
// terms ("today", "tomorrow", "next friday") are resolved against ref.
func ParseDate(s string, ref time.Time) (year int, month time.Month, day int, err error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, 0, 0, errs.New(errs.CodeMissingRequiredField, "date is required")
	}

	if y, m, d, ok := parseRelativeDate(cleaned, ref); ok {
		return y, m, d, nil
	}

	cleaned = ordinalSuffix.ReplaceAllString(cleaned, "$1")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, cleaned); perr == nil {
			return t.Year(), t.Month(), t.Day(), nil
		}
	}
	for _, layout := range yearlessLayouts {
		if t, perr := time.Parse(layout, cleaned); perr == nil {
			return ref.Year(), t.Month(), t.Day(), nil
		}
	}

	return 0, 0, 0, errs.Newf(errs.CodeUnparseableDate, "cannot parse date %q", s)
}

// parseRelativeDate handles "today", "tomorrow", "yesterday" and
// weekday names with an optional "next"/"this" qualifier. A bare
// weekday means the next upcoming one; "next" pushes a further week
// out when the weekday already passed this week.
func parseRelativeDate(s string, ref time.Time) (int, time.Month, int, bool) {
	lower := strings.ToLower(s)

	switch lower {
	case "today":
		return ref.Year(), ref.Month(), ref.Day(), true
	case "tomorrow":
		t := ref.AddDate(0, 0, 1)
		return t.Year(), t.Month(), t.Day(), true
	case "yesterday":
		t := ref.AddDate(0, 0, -1)
		return t.Year(), t.Month(), t.Day(), true
	}

	for name, wd := range daysOfWeek {
		if !strings.Contains(lower, name) {
			continue
		}
		// Only treat as relative when the string is nothing but the
		// weekday and a qualifier; "Friday, March 7, 2025" must go
		// through the explicit layouts.
		rest := strings.TrimSpace(strings.ReplaceAll(lower, name, ""))
		if rest != "" && rest != "next" && rest != "this" {
			continue
		}
		daysAhead := int(wd) - int(ref.Weekday())
		if daysAhead <= 0 {
			daysAhead += 7
		}
		if rest == "next" {
			daysAhead += 7
		}
		t := ref.AddDate(0, 0, daysAhead)
		return t.Year(), t.Month(), t.Day(), true
	}

	return 0, 0, 0, false
}

var (
	// "20.00" style
	dotClock = regexp.MustCompile(`^\d{1,2}\.\d{2}$`)
	// "20:00h", "20h", "20h15", "8h pm" variants
	hourSuffix = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?:[:.]?(\d{2}))?\s*h(?:rs?)?\.?\s*$`)
	hourInfix  = regexp.MustCompile(`(?i)^\s*(\d{1,2})h(\d{2})\s*$`)
)

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// ParseClock parses a free-form time-of-day string ("7pm", "19:30",
// "7:00 PM", "20h15", "noon") into an hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	cleaned := normalizeClock(s)
	if cleaned == "" {
		return 0, 0, errs.New(errs.CodeMissingRequiredField, "time is required")
	}

	for _, layout := range clockLayouts {
		if t, perr := time.Parse(layout, cleaned); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}

	// Bare hour ("19").
	if n, aerr := strconv.Atoi(cleaned); aerr == nil && n >= 0 && n <= 23 {
		return n, 0, nil
	}

	return 0, 0, errs.Newf(errs.CodeUnparseableTime, "cannot parse time %q", s)
}

// normalizeClock rewrites common human formats into something the
// layout table can parse.
func normalizeClock(s string) string {
	cleaned := strings.TrimSpace(s)

	switch strings.ToLower(cleaned) {
	case "noon", "midday":
		return "12:00"
	case "midnight":
		return "00:00"
	}

	// European "20.00" form.
	if dotClock.MatchString(cleaned) {
		cleaned = strings.Replace(cleaned, ".", ":", 1)
	}

	if m := hourSuffix.FindStringSubmatch(cleaned); m != nil {
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		h, _ := strconv.Atoi(m[1])
		return strconv.Itoa(h) + ":" + minutes
	}
	if m := hourInfix.FindStringSubmatch(cleaned); m != nil {
		h, _ := strconv.Atoi(m[1])
		return strconv.Itoa(h) + ":" + m[2]
	}

	cleaned = strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
	return cleaned
}
