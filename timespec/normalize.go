package timespec

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldline/planboard/types"
)

// DefaultTimeOfDay is combined with a bare date when the separate time field
// is absent. Midnight makes a missing end time collapse the interval, which
// NormalizeInterval then rejects, so a half-specified record is dropped
// instead of rendered at a wrong time.
const DefaultTimeOfDay = "00:00"

// instantLayouts are tried in order when the value embeds a time designator.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// clockLayouts are tried in order for the separate time-of-day field.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
}

const dateLayout = "2006-01-02"

// Normalize parses a raw time spec into an absolute instant.
//
// Rules:
//   - if Value embeds a time designator ("T"), it is parsed directly as an
//     instant and TimeOfDay is ignored
//   - otherwise Value is parsed as a bare date and combined with TimeOfDay
//     (DefaultTimeOfDay when absent)
//   - a parse failure or calendar-invalid date yields types.ErrInvalidTime;
//     callers must skip the record, never substitute now() or an epoch default
//
// Instants without an explicit zone are interpreted in loc (time.UTC when
// nil).
//
// Parameters:
//   - raw: The raw spec from the upstream document
//   - loc: Location for zone-less values (nil means UTC)
//
// Returns:
//   - time.Time: The normalized instant
//   - error: types.ErrInvalidTime (wrapped with detail) on failure
func Normalize(raw types.RawTimeSpec, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	value := strings.TrimSpace(raw.Value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty date value", types.ErrInvalidTime)
	}

	// A time designator means the value already encodes time-of-day.
	if strings.ContainsAny(value, "T") {
		for _, layout := range instantLayouts {
			if t, err := time.ParseInLocation(layout, value, loc); err == nil {
				return t, nil
			}
		}

		return time.Time{}, fmt.Errorf("%w: unparsable instant %q", types.ErrInvalidTime, raw.Value)
	}

	date, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparsable date %q", types.ErrInvalidTime, raw.Value)
	}

	clock := strings.TrimSpace(raw.TimeOfDay)
	if clock == "" {
		clock = DefaultTimeOfDay
	}

	for _, layout := range clockLayouts {
		if c, err := time.ParseInLocation(layout, clock, loc); err == nil {
			return time.Date(
				date.Year(), date.Month(), date.Day(),
				c.Hour(), c.Minute(), c.Second(), 0,
				loc,
			), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unparsable time of day %q", types.ErrInvalidTime, raw.TimeOfDay)
}

// NormalizeInterval normalizes both interval bounds and enforces the strict
// ordering invariant start < end.
//
// An interval that collapses (start == end) or inverts (start > end) is
// rejected: with the midnight default this is exactly how a record with a
// missing end time gets dropped rather than rendered.
//
// Parameters:
//   - rawStart, rawEnd: Raw interval bounds
//   - loc: Location for zone-less values (nil means UTC)
//
// Returns:
//   - start, end: Normalized bounds with start < end
//   - error: types.ErrInvalidTime (wrapped) when either bound is unparsable
//     or the ordering invariant fails
func NormalizeInterval(rawStart, rawEnd types.RawTimeSpec, loc *time.Location) (start, end time.Time, err error) {
	start, err = Normalize(rawStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}

	end, err = Normalize(rawEnd, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf(
			"%w: start %s is not before end %s",
			types.ErrInvalidTime, start.Format(time.RFC3339), end.Format(time.RFC3339),
		)
	}

	return start, end, nil
}
