// Package tz maps timezone hints (abbreviations, explicit offsets,
// IANA names) to a resolved zone. It never guesses: hints that cannot
// be resolved fail instead of silently falling back to UTC.
package tz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventcal/internal/errs"
)

// ResolvedZone is a canonical zone plus the rules needed to localize a
// date. For named zones the offset depends on the date (DST); for
// abbreviation and explicit-offset hints the offset is fixed because
// the hint itself stated it.
type ResolvedZone struct {
	// ID is the canonical identifier: an IANA name, an abbreviation
	// label, or a formatted offset such as "UTC+05:30".
	ID string

	// Location carries the conversion rules.
	Location *time.Location

	// Fixed is true when the zone has no DST rules attached.
	Fixed bool
}

// OffsetAt reports the UTC offset the zone applies at the given
// instant. Named zones recompute this per date across DST transitions.
func (z ResolvedZone) OffsetAt(t time.Time) time.Duration {
	_, off := t.In(z.Location).Zone()
	return time.Duration(off) * time.Second
}

var (
	// "+05:30", "-0700", "UTC-7", "GMT+2", "utc +9:00"
	offsetPattern = regexp.MustCompile(`^(?i:UTC|GMT)?\s*([+-])\s*(\d{1,2})(?::?([0-5]\d))?$`)
	// Abbreviation-shaped: 2-5 letters.
	abbrPattern = regexp.MustCompile(`^[A-Za-z]{2,5}$`)
)

// Resolve maps hint to a zone, falling back to localDefault when the
// hint is empty (or the extraction service's "local" sentinel).
//
// Resolution order: abbreviation table, explicit numeric offset, IANA
// zone database. Abbreviation-shaped hints that match nothing fail
// with AMBIGUOUS_ABBREVIATION; all other unresolvable hints fail with
// UNKNOWN_ZONE.
func Resolve(hint, localDefault string) (ResolvedZone, error) {
	hint = strings.TrimSpace(hint)

	if hint == "" || strings.EqualFold(hint, "local") {
		if localDefault == "" {
			return ResolvedZone{}, errs.New(errs.CodeUnknownZone,
				"no timezone hint and no local default zone").WithField("timezone_hint")
		}
		loc, err := time.LoadLocation(localDefault)
		if err != nil {
			return ResolvedZone{}, errs.Wrap(err, errs.CodeUnknownZone,
				fmt.Sprintf("local default zone %q not in zone database", localDefault)).WithField("timezone_hint")
		}
		return ResolvedZone{ID: localDefault, Location: loc}, nil
	}

	upper := strings.ToUpper(hint)
	if ent, ok := Abbreviations[upper]; ok {
		return ResolvedZone{
			ID:       upper,
			Location: time.FixedZone(upper, ent.OffsetSeconds),
			Fixed:    true,
		}, nil
	}

	if z, ok := parseOffset(hint); ok {
		return z, nil
	}

	if loc, err := time.LoadLocation(hint); err == nil {
		return ResolvedZone{ID: hint, Location: loc}, nil
	}

	if abbrPattern.MatchString(hint) {
		return ResolvedZone{}, errs.Newf(errs.CodeAmbiguousAbbreviation,
			"timezone abbreviation %q is not in the abbreviation table", hint).WithField("timezone_hint")
	}
	return ResolvedZone{}, errs.Newf(errs.CodeUnknownZone,
		"unknown timezone %q", hint).WithField("timezone_hint")
}

// parseOffset handles explicit numeric offsets ("+05:30", "UTC-7").
// A stated offset gets a fixed zone with no DST rules attached.
func parseOffset(hint string) (ResolvedZone, bool) {
	if strings.EqualFold(hint, "UTC") || strings.EqualFold(hint, "GMT") || hint == "Z" {
		return ResolvedZone{ID: "UTC", Location: time.UTC, Fixed: true}, true
	}

	m := offsetPattern.FindStringSubmatch(hint)
	if m == nil {
		return ResolvedZone{}, false
	}

	hours, err := strconv.Atoi(m[2])
	if err != nil || hours > 14 {
		return ResolvedZone{}, false
	}
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}

	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}

	id := fmt.Sprintf("UTC%s%02d:%02d", m[1], hours, minutes)
	return ResolvedZone{ID: id, Location: time.FixedZone(id, seconds), Fixed: true}, true
}
