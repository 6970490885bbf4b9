package dates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfarias/autolote/internal/dates"
	"github.com/mfarias/autolote/internal/domain"
)

// santiago loads the reference zone used in production.
func santiago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	return loc
}

func TestFromYMD_IsLocalMidnight(t *testing.T) {
	loc := santiago(t)
	n := dates.NewNormalizer(loc)

	got, err := n.FromYMD("2025-09-15")
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, 2025, local.Year())
	assert.Equal(t, time.September, local.Month())
	assert.Equal(t, 15, local.Day())
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, 0, local.Second())
}

func TestFromYMD_Deterministic(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	a, err := n.FromYMD("2025-10-02")
	require.NoError(t, err)
	b, err := n.FromYMD("2025-10-02")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestFromYMD_InvalidInputs(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	for _, in := range []string{
		"",
		"2025-13-01", // month out of range
		"2025-02-30", // day out of range
		"2025-9-15",  // not zero-padded
		"15-09-2025", // wrong field order
		"2025/09/15", // wrong separator
		"not-a-date",
	} {
		_, err := n.FromYMD(in)
		assert.ErrorIs(t, err, domain.ErrInvalidDate, "input %q", in)
	}
}

func TestReinterpretStored_RepairsUTCMidnight(t *testing.T) {
	loc := santiago(t)
	n := dates.NewNormalizer(loc)

	// A record stored as literal UTC midnight for 2025-09-18 (the legacy bug).
	legacy := time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC)

	fixed := n.ReinterpretStored(legacy)

	want, err := n.FromYMD("2025-09-18")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(want), "got %v want %v", fixed, want)
}

func TestReinterpretStored_Idempotent(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	for _, legacy := range []time.Time{
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),  // winter offset (UTC-4)
		time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), // summer offset (UTC-3)
		time.Date(2025, 3, 10, 17, 45, 12, 0, time.UTC),
	} {
		once := n.ReinterpretStored(legacy)
		twice := n.ReinterpretStored(once)
		assert.True(t, once.Equal(twice), "reinterpret must be a no-op on repaired instants (legacy %v)", legacy)
	}
}

func TestReinterpretStored_NoOpOnCorrectInstant(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	correct, err := n.FromYMD("2025-10-10")
	require.NoError(t, err)

	assert.True(t, n.ReinterpretStored(correct).Equal(correct))
}

func TestStartOfDay(t *testing.T) {
	loc := santiago(t)
	n := dates.NewNormalizer(loc)

	// 23:30 Santiago on the 15th is already the 16th in UTC; StartOfDay must
	// stay on the 15th because the reference zone wins.
	at := time.Date(2025, 9, 15, 23, 30, 0, 0, loc)

	got := n.StartOfDay(at)

	want, err := n.FromYMD("2025-09-15")
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestRange_SingleDayDefault(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	single, err := n.Range("2025-09-15", "")
	require.NoError(t, err)
	explicit, err := n.Range("2025-09-15", "2025-09-15")
	require.NoError(t, err)

	assert.True(t, single.Start.Equal(explicit.Start))
	assert.True(t, single.End.Equal(explicit.End))

	// The range covers the full day: one nanosecond short of the next midnight.
	assert.Equal(t, 24*time.Hour-time.Nanosecond, single.End.Sub(single.Start))
}

func TestRange_InclusiveBounds(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	r, err := n.Range("2025-09-01", "2025-10-31")
	require.NoError(t, err)

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(r.End.Add(time.Nanosecond)))
}

func TestRange_StartAfterEnd(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	_, err := n.Range("2025-10-31", "2025-09-01")

	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestRange_InvalidBound(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	_, err := n.Range("2025-09-31", "2025-10-31")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = n.Range("2025-09-01", "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestRangeUTC_DiffersFromZoneRange(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	zone, err := n.Range("2025-09-15", "")
	require.NoError(t, err)
	utc, err := n.RangeUTC("2025-09-15", "")
	require.NoError(t, err)

	// Santiago sits west of UTC, so local midnight is a few hours after UTC
	// midnight of the same calendar day.
	assert.True(t, zone.Start.After(utc.Start))
}

func TestRangePair_ContainsEitherInterpretation(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	pair, err := n.RangePair("2025-09-15", "")
	require.NoError(t, err)

	legacyUTC := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	corrected, err := n.FromYMD("2025-09-15")
	require.NoError(t, err)

	assert.True(t, pair.Contains(legacyUTC), "legacy UTC-midnight instant must match")
	assert.True(t, pair.Contains(corrected), "corrected zone-midnight instant must match")
}

func TestInEither_NilRangesNeverMatch(t *testing.T) {
	at := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, dates.InEither(at, nil, nil))
}

func TestInEither_Symmetric(t *testing.T) {
	n := dates.NewNormalizer(santiago(t))

	a, err := n.Range("2025-09-01", "2025-09-30")
	require.NoError(t, err)
	b, err := n.RangeUTC("2025-11-01", "2025-11-30")
	require.NoError(t, err)

	for _, at := range []time.Time{
		time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC),  // only in a
		time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC), // only in b
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),    // in neither
	} {
		assert.Equal(t, dates.InEither(at, &a, &b), dates.InEither(at, &b, &a), "at %v", at)
	}
}

func TestRange_DSTTransitionDayStillCovered(t *testing.T) {
	// Chile leaves DST at 24:00 on the first Saturday of April (2025-04-05):
	// clocks fall back one hour, so that day is 25 hours long. The range must
	// still span from local midnight to just before the next local midnight.
	loc := santiago(t)
	n := dates.NewNormalizer(loc)

	r, err := n.Range("2025-04-05", "")
	require.NoError(t, err)

	assert.Equal(t, 25*time.Hour-time.Nanosecond, r.End.Sub(r.Start))

	noon := time.Date(2025, 4, 5, 12, 0, 0, 0, loc)
	assert.True(t, r.Contains(noon))
}
