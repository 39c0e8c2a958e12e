package extract

import (
	"fmt"
	"strings"
)

// buildPrompt renders the extraction instructions for one request.
// The model is told to report times exactly as written and to leave
// timezone conversion alone; conversion done model-side is invisible
// and cannot be audited, so it is forbidden outright.
func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Extract calendar events from the input below.\n")
	b.WriteString("Respond with ONLY a JSON array, no prose and no markdown fences.\n")
	b.WriteString("Each element is an object with these keys:\n")
	b.WriteString(`  "title": event title, or "" if none is given` + "\n")
	b.WriteString(`  "date": the date exactly as written in the input` + "\n")
	b.WriteString(`  "start_time": the start time exactly as written` + "\n")
	b.WriteString(`  "end_time": the end time as written, or "" if absent` + "\n")
	b.WriteString(`  "duration_minutes": integer duration if stated, else omit the key` + "\n")
	b.WriteString(`  "timezone_hint": any timezone mentioned next to the time (e.g. "PST", "UTC+2"), else ""` + "\n")
	b.WriteString(`  "location": venue or address if given, else ""` + "\n")
	b.WriteString(`  "description": any other relevant detail, else ""` + "\n")
	b.WriteString(`  "recurrence": an RRULE string if the event repeats, else ""` + "\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- NEVER convert times between timezones. Report them exactly as the input states them.\n")
	b.WriteString("- NEVER invent a timezone. If the input names none, leave timezone_hint empty.\n")
	b.WriteString("- Resolve nothing yourself; copy dates and times verbatim, including relative forms like \"tomorrow\".\n")
	b.WriteString("- Return [] if the input contains no events.\n\n")

	fmt.Fprintf(&b, "Today's date is %s.\n", req.ReferenceDate.Format("Monday, January 2, 2006"))
	if req.ZoneName != "" {
		fmt.Fprintf(&b, "The user's local timezone is %s. Use it only as context, never for conversion.\n", req.ZoneName)
	}

	if req.Text != "" {
		b.WriteString("\nInput text:\n")
		b.WriteString(req.Text)
		b.WriteString("\n")
	}
	if len(req.Images) > 0 {
		b.WriteString("\nAlso extract events from the attached image(s).\n")
	}

	return b.String()
}
