package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"

	"eventcal/internal/errs"
	"eventcal/internal/model"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func docWithZone(tzid, offsetTo, uid string) string {
	return crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VTIMEZONE",
		"TZID:"+tzid,
		"BEGIN:STANDARD",
		"DTSTART:20071104T020000",
		"TZOFFSETFROM:-0400",
		"TZOFFSETTO:"+offsetTo,
		"TZNAME:EST",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:"+uid,
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T100000Z",
		"DTEND:20240101T110000Z",
		"SUMMARY:Zoned event",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func buildSingle(t *testing.T, uid, title string, start time.Time) string {
	t.Helper()
	return Build([]model.EventRecord{{
		UID:      uid,
		Title:    title,
		StartUTC: start,
		EndUTC:   start.Add(time.Hour),
	}}, BuildOptions{Now: fixedClock})
}

func TestMergeTwoSingleEventDocuments(t *testing.T) {
	start := time.Date(2024, 8, 16, 3, 0, 0, 0, time.UTC)
	docA := buildSingle(t, "a@eventcal", "First", start)
	docB := buildSingle(t, "b@eventcal", "Second", start.Add(2*time.Hour))

	merged, err := Merge([]string{docA, docB})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(merged))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	// Content fields survive, in document order.
	require.Equal(t, "First", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	require.Equal(t, "Second", events[1].GetProperty(ical.ComponentPropertySummary).Value)

	gotStart, err := events[0].GetStartAt()
	require.NoError(t, err)
	require.True(t, gotStart.Equal(start))

	// UIDs are regenerated, distinct from both inputs and from each
	// other, and carry the provenance suffix.
	uids := map[string]bool{}
	for _, ev := range events {
		uid := ev.GetProperty(ical.ComponentPropertyUniqueId).Value
		require.NotEqual(t, "a@eventcal", uid)
		require.NotEqual(t, "b@eventcal", uid)
		require.True(t, strings.HasSuffix(uid, model.ProvenanceSuffix))
		uids[uid] = true
	}
	require.Len(t, uids, 2)
}

func TestMergePreservesBlockOrderAcrossDocuments(t *testing.T) {
	start := time.Date(2024, 8, 16, 3, 0, 0, 0, time.UTC)
	docA := Build([]model.EventRecord{
		{UID: "a1@eventcal", Title: "A1", StartUTC: start, EndUTC: start.Add(time.Hour)},
		{UID: "a2@eventcal", Title: "A2", StartUTC: start, EndUTC: start.Add(time.Hour)},
	}, BuildOptions{Now: fixedClock})
	docB := buildSingle(t, "b1@eventcal", "B1", start)

	merged, err := Merge([]string{docA, docB})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(merged))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 3)
	for i, want := range []string{"A1", "A2", "B1"} {
		require.Equal(t, want, events[i].GetProperty(ical.ComponentPropertySummary).Value)
	}
}

func TestMergeSingleDocumentKeepsContent(t *testing.T) {
	start := time.Date(2024, 8, 16, 3, 0, 0, 0, time.UTC)
	doc := buildSingle(t, "a@eventcal", "Solo", start)

	merged, err := Merge([]string{doc})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(merged))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	require.Equal(t, "Solo", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	// Identifier regeneration is documented behavior, even for a
	// single input.
	require.NotEqual(t, "a@eventcal", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
}

func TestMergeUsesCRLF(t *testing.T) {
	start := time.Date(2024, 8, 16, 3, 0, 0, 0, time.UTC)
	merged, err := Merge([]string{buildSingle(t, "a@eventcal", "X", start)})
	require.NoError(t, err)

	for _, line := range strings.SplitAfter(merged, "\n") {
		if line == "" {
			continue
		}
		require.True(t, strings.HasSuffix(line, "\r\n"), "line %q lacks CRLF", line)
	}
}

func TestMergeKeepsEscapedTextVerbatim(t *testing.T) {
	start := time.Date(2024, 8, 16, 3, 0, 0, 0, time.UTC)
	doc := buildSingle(t, "a@eventcal", "Drinks, then; dinner", start)
	require.Contains(t, doc, `SUMMARY:Drinks\, then\; dinner`)

	merged, err := Merge([]string{doc})
	require.NoError(t, err)

	// The parse/serialize round trip must neither strip nor stack the
	// escaping of the input document.
	require.Contains(t, merged, `SUMMARY:Drinks\, then\; dinner`)
	require.NotContains(t, merged, `\\\,`)
}

func TestMergeDeduplicatesIdenticalZoneDeclarations(t *testing.T) {
	docA := docWithZone("America/New_York", "-0500", "a@x")
	docB := docWithZone("America/New_York", "-0500", "b@x")

	merged, err := Merge([]string{docA, docB})
	require.NoError(t, err)

	require.Equal(t, 1, strings.Count(merged, "BEGIN:VTIMEZONE"))
	require.Equal(t, 2, strings.Count(merged, "BEGIN:VEVENT"))
}

func TestMergeConflictingZoneDeclarationsFail(t *testing.T) {
	docA := docWithZone("America/New_York", "-0500", "a@x")
	docB := docWithZone("America/New_York", "-0600", "b@x")

	merged, err := Merge([]string{docA, docB})
	require.Error(t, err)
	require.Equal(t, errs.CodeConflictingZoneDeclaration, errs.CodeOf(err))
	require.Empty(t, merged)
}

func TestMergeUnparseableDocument(t *testing.T) {
	merged, err := Merge([]string{"not a calendar"})
	require.Error(t, err)
	require.Equal(t, errs.CodeInvalidDocument, errs.CodeOf(err))
	require.Empty(t, merged)
}

func TestMergeEmptyInput(t *testing.T) {
	_, err := Merge(nil)
	require.Error(t, err)
	require.Equal(t, errs.CodeInvalidDocument, errs.CodeOf(err))
}
