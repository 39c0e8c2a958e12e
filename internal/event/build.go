// Package event turns raw extraction candidates into validated
// EventRecords. Construction either succeeds completely or fails with
// an error naming the offending field; there is no partial success.
package event

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"eventcal/internal/errs"
	"eventcal/internal/model"
	"eventcal/internal/timeparse"
	"eventcal/internal/tz"
)

const defaultDurationMinutes = 60

// BuildOptions carries the configurable defaults applied during
// construction.
type BuildOptions struct {
	// DefaultTitle replaces a missing or blank title.
	DefaultTitle string
	// DefaultDurationMinutes applies when the candidate has neither
	// an end time nor an explicit duration. Zero means 60.
	DefaultDurationMinutes int
}

// Build validates one candidate against the resolved zone and returns
// an immutable EventRecord. referenceDate anchors relative dates such
// as "tomorrow".
//
// The date and start time are parsed as two independent strings and
// only then combined into a naive local date-time, which is localized
// exactly once.
func Build(cand model.RawEventCandidate, zone tz.ResolvedZone, referenceDate time.Time, opts BuildOptions) (model.EventRecord, error) {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = "No Title"
	}
	if opts.DefaultDurationMinutes <= 0 {
		opts.DefaultDurationMinutes = defaultDurationMinutes
	}

	year, month, day, err := timeparse.ParseDate(cand.Date, referenceDate)
	if err != nil {
		return model.EventRecord{}, fieldError(err, "date")
	}

	startHour, startMin, err := timeparse.ParseClock(cand.StartTime)
	if err != nil {
		return model.EventRecord{}, fieldError(err, "start_time")
	}

	naiveStart := model.LocalDateTime{Year: year, Month: month, Day: day, Hour: startHour, Minute: startMin}
	startUTC := naiveStart.Localize(zone.Location)

	endUTC, err := computeEnd(cand, naiveStart, startUTC, zone, opts)
	if err != nil {
		return model.EventRecord{}, err
	}

	if !endUTC.After(startUTC) {
		return model.EventRecord{}, errs.New(errs.CodeEndBeforeStart,
			"event must end after it starts (minimum one minute)").WithField("end_time")
	}

	recurrence, err := validateRecurrence(cand.Recurrence)
	if err != nil {
		return model.EventRecord{}, err
	}

	title := strings.TrimSpace(cand.Title)
	if title == "" {
		title = opts.DefaultTitle
	}

	return model.EventRecord{
		UID:         uuid.NewString() + model.ProvenanceSuffix,
		Title:       title,
		StartUTC:    startUTC,
		EndUTC:      endUTC,
		Location:    strings.TrimSpace(cand.Location),
		Description: strings.TrimSpace(cand.Description),
		Recurrence:  recurrence,
	}, nil
}

// computeEnd derives the end instant: an explicit end time wins, then
// an explicit duration, then the default duration. An end time at or
// before the start is assumed to cross midnight and is moved one day
// forward.
func computeEnd(cand model.RawEventCandidate, naiveStart model.LocalDateTime, startUTC time.Time, zone tz.ResolvedZone, opts BuildOptions) (time.Time, error) {
	if strings.TrimSpace(cand.EndTime) != "" {
		endHour, endMin, err := timeparse.ParseClock(cand.EndTime)
		if err != nil {
			return time.Time{}, fieldError(err, "end_time")
		}
		naiveEnd := model.LocalDateTime{
			Year: naiveStart.Year, Month: naiveStart.Month, Day: naiveStart.Day,
			Hour: endHour, Minute: endMin,
		}
		endUTC := naiveEnd.Localize(zone.Location)
		if !endUTC.After(startUTC) {
			endUTC = naiveEnd.AddDays(1).Localize(zone.Location)
		}
		return endUTC, nil
	}

	if cand.DurationMinutes != nil {
		if *cand.DurationMinutes < 1 {
			return time.Time{}, errs.New(errs.CodeEndBeforeStart,
				"duration must be at least one minute").WithField("duration_minutes")
		}
		return startUTC.Add(time.Duration(*cand.DurationMinutes) * time.Minute), nil
	}

	return startUTC.Add(time.Duration(opts.DefaultDurationMinutes) * time.Minute), nil
}

// validateRecurrence checks an optional RRULE string without expanding
// it; the validated string is emitted verbatim by the builder.
func validateRecurrence(raw string) (string, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "RRULE:"))
	if raw == "" {
		return "", nil
	}
	if _, err := rrule.StrToRRule(raw); err != nil {
		return "", errs.Wrap(err, errs.CodeInvalidRecurrence,
			"invalid recurrence rule").WithField("recurrence")
	}
	return raw, nil
}

// fieldError attaches the candidate field name to a parse error,
// keeping its code.
func fieldError(err error, field string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.WithField(field)
	}
	return errs.Wrap(err, errs.CodeMissingRequiredField, "invalid field").WithField(field)
}
