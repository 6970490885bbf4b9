// Package dates normalizes ambiguous calendar dates into canonical instants.
//
// Every date in the system represents "the start of calendar day D in the
// reference timezone", stored as an absolute instant. Historical records were
// written with two different interpretations of D — the calendar day as seen
// in UTC (a legacy bug) and the calendar day in the reference zone — so range
// queries carry both interpretations until the repair pass (cmd/fixdates)
// has rewritten every stored instant.
package dates

import (
	"fmt"
	"time"

	"github.com/mfarias/autolote/internal/domain"
)

// layout is the only accepted calendar-date format.
const layout = "2006-01-02"

// Normalizer converts calendar dates to instants using a fixed reference
// timezone. It is constructed once at startup and never mutated.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer anchored to the given reference zone.
func NewNormalizer(loc *time.Location) *Normalizer {
	return &Normalizer{loc: loc}
}

// Location returns the reference zone the Normalizer was built with.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// FromYMD interprets a "YYYY-MM-DD" string as a calendar date in the
// reference zone and returns the instant of 00:00:00 local time that day.
// Returns domain.ErrInvalidDate if the string is not a valid calendar date.
func (n *Normalizer) FromYMD(ymd string) (time.Time, error) {
	return parseYMD(ymd, n.loc)
}

// ReinterpretStored repairs an instant stored with UTC-day semantics: it
// extracts the calendar day from the instant's UTC representation and
// reinterprets that day as local midnight in the reference zone.
//
// The operation is idempotent: an instant that is already local midnight maps
// to the same UTC calendar day (the reference zone is west of UTC, so local
// midnight falls in the early hours of the same UTC day), and reinterpreting
// it again is a no-op.
func (n *Normalizer) ReinterpretStored(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, n.loc)
}

// StartOfDay returns local midnight of the calendar day containing t,
// as seen in the reference zone. Used for defaulting "today" on writes.
func (n *Normalizer) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(n.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, n.loc)
}

// Range builds the inclusive instant range covering the calendar days
// [startYMD, endYMD] interpreted in the reference zone. endYMD defaults to
// startYMD when empty, yielding a single-day range.
// Returns domain.ErrInvalidDate if either bound fails to parse or when the
// start day falls after the end day.
func (n *Normalizer) Range(startYMD, endYMD string) (Range, error) {
	return buildRange(startYMD, endYMD, n.loc)
}

// RangeUTC is Range with the bounds interpreted as literal UTC calendar days.
// It exists to match records written before the timezone fix.
func (n *Normalizer) RangeUTC(startYMD, endYMD string) (Range, error) {
	return buildRange(startYMD, endYMD, time.UTC)
}

// RangePair builds the same calendar-day range under both interpretations.
// Queries over legacy data should match an instant against either member.
func (n *Normalizer) RangePair(startYMD, endYMD string) (Pair, error) {
	zone, err := n.Range(startYMD, endYMD)
	if err != nil {
		return Pair{}, err
	}
	utc, err := n.RangeUTC(startYMD, endYMD)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Zone: zone, UTC: utc}, nil
}

// Range is an inclusive instant interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Pair holds one calendar-day range under both stored-date interpretations:
// Zone is the reference-timezone reading, UTC the legacy literal-UTC reading.
// Once the fixdates repair has run over all collections the UTC member can be
// retired and Pair collapses to a single Range.
type Pair struct {
	Zone Range
	UTC  Range
}

// Contains reports whether t falls inside either interpretation of the range.
func (p Pair) Contains(t time.Time) bool {
	return InEither(t, &p.Zone, &p.UTC)
}

// InEither reports whether t falls within either of the given ranges,
// bounds inclusive. A nil range never matches; with both nil the result is
// false. The check is symmetric in a and b.
func InEither(t time.Time, a, b *Range) bool {
	if a != nil && a.Contains(t) {
		return true
	}
	if b != nil && b.Contains(t) {
		return true
	}
	return false
}

// parseYMD parses a strict "YYYY-MM-DD" string as midnight in loc.
func parseYMD(ymd string, loc *time.Location) (time.Time, error) {
	// time.Parse tolerates single-digit month/day; the length check keeps the
	// accepted format strict.
	if len(ymd) != len(layout) {
		return time.Time{}, fmt.Errorf("dates: %w: %q (want YYYY-MM-DD)", domain.ErrInvalidDate, ymd)
	}
	t, err := time.ParseInLocation(layout, ymd, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: %w: %q (want YYYY-MM-DD)", domain.ErrInvalidDate, ymd)
	}
	return t, nil
}

// buildRange returns [startOfDay(start), endOfDay(end)] in loc.
// End-of-day is the last representable instant before the next midnight, so
// membership checks can use inclusive bounds. Day arithmetic runs on the
// wall clock in loc, which keeps the bounds correct across DST transitions.
func buildRange(startYMD, endYMD string, loc *time.Location) (Range, error) {
	if endYMD == "" {
		endYMD = startYMD
	}
	start, err := parseYMD(startYMD, loc)
	if err != nil {
		return Range{}, err
	}
	endDay, err := parseYMD(endYMD, loc)
	if err != nil {
		return Range{}, err
	}
	end := endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if start.After(end) {
		return Range{}, fmt.Errorf("dates: %w: start %s after end %s", domain.ErrInvalidDate, startYMD, endYMD)
	}
	return Range{Start: start, End: end}, nil
}
