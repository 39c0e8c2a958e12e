package ics

import (
	"sort"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"eventcal/internal/errs"
	"eventcal/internal/model"
)

// Merge combines the given calendar documents into a single one.
//
// Event blocks keep the relative order of the input documents and,
// within each document, their own order. Every merged event receives a
// freshly generated UID with the provenance suffix; event content is
// otherwise carried over untouched. VTIMEZONE blocks with the same
// TZID are emitted once; two declarations for the same TZID whose
// content differs abort the merge with no document returned.
func Merge(documents []string) (string, error) {
	if len(documents) == 0 {
		return "", errs.New(errs.CodeInvalidDocument, "no documents to merge")
	}

	parsed := make([]*ical.Calendar, 0, len(documents))
	for i, doc := range documents {
		cal, err := ical.ParseCalendar(strings.NewReader(doc))
		if err != nil {
			return "", errs.Wrap(err, errs.CodeInvalidDocument,
				"cannot parse calendar document").WithField(indexField(i))
		}
		parsed = append(parsed, cal)
	}

	out := &ical.Calendar{}
	mergeCalendarProperties(out, parsed)

	seenZones := map[string]string{}

	for _, cal := range parsed {
		for _, comp := range cal.Components {
			switch c := comp.(type) {
			case *ical.VTimezone:
				tzid := ianaPropertyValue(c.Properties, "TZID")
				sig := componentSignature(comp)
				prev, seen := seenZones[tzid]
				if seen {
					if prev != sig {
						return "", errs.Newf(errs.CodeConflictingZoneDeclaration,
							"conflicting VTIMEZONE declarations for %q", tzid)
					}
					continue
				}
				seenZones[tzid] = sig
				out.Components = append(out.Components, comp)

			case *ical.VEvent:
				out.Components = append(out.Components, regenerateEvent(c))

			default:
				out.Components = append(out.Components, comp)
			}
		}
	}

	return out.Serialize(ical.WithNewLineWindows), nil
}

// mergeCalendarProperties copies calendar-level properties first-wins
// across the inputs and guarantees the mandatory header trio.
func mergeCalendarProperties(out *ical.Calendar, parsed []*ical.Calendar) {
	have := map[string]bool{}
	for _, cal := range parsed {
		for _, p := range cal.CalendarProperties {
			if have[p.IANAToken] {
				continue
			}
			have[p.IANAToken] = true
			out.CalendarProperties = append(out.CalendarProperties, p)
		}
	}

	defaults := []struct{ token, value string }{
		{"PRODID", defaultProdID},
		{"VERSION", "2.0"},
		{"CALSCALE", "GREGORIAN"},
	}
	for _, d := range defaults {
		if !have[d.token] {
			out.CalendarProperties = append(out.CalendarProperties, ical.CalendarProperty{
				BaseProperty: ical.BaseProperty{IANAToken: d.token, Value: d.value},
			})
		}
	}
}

// regenerateEvent deep-copies the event's property list with a fresh
// UID so identifiers stay globally unique across the merged document.
func regenerateEvent(ev *ical.VEvent) *ical.VEvent {
	ne := &ical.VEvent{}
	ne.Properties = make([]ical.IANAProperty, len(ev.Properties))
	copy(ne.Properties, ev.Properties)
	ne.Components = append(ne.Components, ev.Components...)
	ne.SetProperty(ical.ComponentPropertyUniqueId, uuid.NewString()+model.ProvenanceSuffix)
	return ne
}

// componentSignature renders a component's properties and
// subcomponents into a canonical comparison string. Declarations that
// differ in property order are deliberately treated as different
// content.
func componentSignature(comp ical.Component) string {
	var b strings.Builder
	writeSignature(&b, comp, 0)
	return b.String()
}

func writeSignature(b *strings.Builder, comp ical.Component, depth int) {
	if depth > 8 {
		return
	}
	for _, p := range comp.UnknownPropertiesIANAProperties() {
		b.WriteString(p.IANAToken)
		// Parameter maps iterate in random order; sort the names so
		// identical declarations always produce identical signatures.
		names := make([]string, 0, len(p.ICalParameters))
		for name := range p.ICalParameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(";")
			b.WriteString(name)
			b.WriteString("=")
			b.WriteString(strings.Join(p.ICalParameters[name], ","))
		}
		b.WriteString(":")
		b.WriteString(p.Value)
		b.WriteString("\n")
	}
	for _, sub := range comp.SubComponents() {
		b.WriteString("BEGIN\n")
		writeSignature(b, sub, depth+1)
		b.WriteString("END\n")
	}
}

func ianaPropertyValue(props []ical.IANAProperty, token string) string {
	for _, p := range props {
		if p.IANAToken == token {
			return p.Value
		}
	}
	return ""
}

func indexField(i int) string {
	return "document[" + strconv.Itoa(i) + "]"
}
