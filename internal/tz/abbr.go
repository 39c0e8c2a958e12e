package tz

// AbbrEntry is one row of the abbreviation table. Zone documents which
// IANA zone the abbreviation was taken from; OffsetSeconds is the UTC
// offset the abbreviation itself asserts. An abbreviation is a
// fixed-offset label: "PST" means UTC-8 on any date, even when
// America/Los_Angeles is observing daylight time.
type AbbrEntry struct {
	Zone          string
	OffsetSeconds int
}

// Abbreviations maps upper-case timezone abbreviations to their fixed
// offsets. Several abbreviations collide across continents; the table
// is the fixed priority order:
//
//   - CST/CDT: North America (America/Chicago), not China Standard Time
//   - IST: India (Asia/Kolkata), not Israel or Irish Standard Time
//   - AEST/AEDT: Australia/Sydney
//
// Anything not listed here is either a full IANA name or unresolvable.
var Abbreviations = map[string]AbbrEntry{
	// North America
	"EST": {"America/New_York", -5 * 3600},
	"EDT": {"America/New_York", -4 * 3600},
	"CST": {"America/Chicago", -6 * 3600},
	"CDT": {"America/Chicago", -5 * 3600},
	"MST": {"America/Denver", -7 * 3600},
	"MDT": {"America/Denver", -6 * 3600},
	"PST": {"America/Los_Angeles", -8 * 3600},
	"PDT": {"America/Los_Angeles", -7 * 3600},
	// United Kingdom / Europe
	"GMT":  {"Europe/London", 0},
	"BST":  {"Europe/London", 1 * 3600},
	"CET":  {"Europe/Paris", 1 * 3600},
	"CEST": {"Europe/Paris", 2 * 3600},
	"EET":  {"Europe/Athens", 2 * 3600},
	"EEST": {"Europe/Athens", 3 * 3600},
	// Australia
	"AEST": {"Australia/Sydney", 10 * 3600},
	"AEDT": {"Australia/Sydney", 11 * 3600},
	// Asia
	"IST": {"Asia/Kolkata", 5*3600 + 30*60},
	"JST": {"Asia/Tokyo", 9 * 3600},
	"KST": {"Asia/Seoul", 9 * 3600},
	"HKT": {"Asia/Hong_Kong", 8 * 3600},
	// UTC itself
	"UTC": {"UTC", 0},
}
