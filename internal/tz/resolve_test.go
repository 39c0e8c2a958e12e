package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventcal/internal/errs"
)

func TestResolveAbbreviationIsFixedOffset(t *testing.T) {
	z, err := Resolve("PST", "UTC")
	require.NoError(t, err)
	require.Equal(t, "PST", z.ID)
	require.True(t, z.Fixed)

	// PST stays UTC-8 even on a date where Los Angeles observes PDT.
	aug := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, -8*time.Hour, z.OffsetAt(aug))
}

func TestResolveAbbreviationPriority(t *testing.T) {
	// Documented collisions resolve by the table's fixed priority.
	cst, err := Resolve("cst", "UTC")
	require.NoError(t, err)
	require.Equal(t, "America/Chicago", Abbreviations["CST"].Zone)
	require.Equal(t, -6*time.Hour, cst.OffsetAt(time.Now()))

	ist, err := Resolve("IST", "UTC")
	require.NoError(t, err)
	require.Equal(t, "Asia/Kolkata", Abbreviations["IST"].Zone)
	require.Equal(t, 5*time.Hour+30*time.Minute, ist.OffsetAt(time.Now()))
}

func TestResolveNamedZoneKeepsDSTRules(t *testing.T) {
	z, err := Resolve("America/New_York", "UTC")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", z.ID)
	require.False(t, z.Fixed)

	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, -5*time.Hour, z.OffsetAt(winter))
	require.Equal(t, -4*time.Hour, z.OffsetAt(summer))
}

func TestResolveExplicitOffsets(t *testing.T) {
	cases := []struct {
		hint string
		want time.Duration
		id   string
	}{
		{"+05:30", 5*time.Hour + 30*time.Minute, "UTC+05:30"},
		{"UTC-7", -7 * time.Hour, "UTC-07:00"},
		{"GMT+2", 2 * time.Hour, "UTC+02:00"},
		{"-0430", -(4*time.Hour + 30*time.Minute), "UTC-04:30"},
		{"utc", 0, "UTC"},
	}
	for _, c := range cases {
		z, err := Resolve(c.hint, "UTC")
		require.NoError(t, err, "hint %q", c.hint)
		require.True(t, z.Fixed, "hint %q", c.hint)
		require.Equal(t, c.id, z.ID, "hint %q", c.hint)
		require.Equal(t, c.want, z.OffsetAt(time.Now()), "hint %q", c.hint)
	}
}

func TestResolveEmptyHintUsesLocalDefault(t *testing.T) {
	z, err := Resolve("", "America/New_York")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", z.ID)
	require.False(t, z.Fixed)

	// The extraction service uses "local" as its sentinel.
	z, err = Resolve("local", "Europe/Paris")
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", z.ID)
}

func TestResolveFailsInsteadOfGuessing(t *testing.T) {
	_, err := Resolve("Atlantis/Lost_City", "UTC")
	require.Error(t, err)
	require.Equal(t, errs.CodeUnknownZone, errs.CodeOf(err))

	_, err = Resolve("XQZT", "UTC")
	require.Error(t, err)
	require.Equal(t, errs.CodeAmbiguousAbbreviation, errs.CodeOf(err))

	// Bad local default is an error too, never a silent UTC.
	_, err = Resolve("", "Nowhere/Special")
	require.Error(t, err)
	require.Equal(t, errs.CodeUnknownZone, errs.CodeOf(err))

	_, err = Resolve("", "")
	require.Error(t, err)
	require.Equal(t, "timezone_hint", errs.FieldOf(err))
}

func TestLocalZoneNameAlwaysLoadable(t *testing.T) {
	name := LocalZoneName()
	_, err := time.LoadLocation(name)
	require.NoError(t, err)
}
