package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/planboard/types"
)

func TestNormalize(t *testing.T) {
	t.Run("parses full instant with zone", func(t *testing.T) {
		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"}, nil)

		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 11, 12, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("parses zone-less instant in given location", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12T09:00:00"}, loc)

		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 11, 12, 9, 0, 0, 0, loc), got)
	})

	t.Run("ignores time of day when value embeds a designator", func(t *testing.T) {
		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12T09:00:00Z", TimeOfDay: "17:30"}, nil)

		require.NoError(t, err)
		require.Equal(t, 9, got.Hour())
	})

	t.Run("combines bare date with separate time of day", func(t *testing.T) {
		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"}, nil)

		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 11, 12, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("accepts seconds in time of day", func(t *testing.T) {
		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:15:30"}, nil)

		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 11, 12, 9, 15, 30, 0, time.UTC), got)
	})

	t.Run("defaults missing time of day to midnight", func(t *testing.T) {
		got, err := Normalize(types.RawTimeSpec{Value: "2024-11-12"}, nil)

		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("embedded and separate forms produce the same instant", func(t *testing.T) {
		embedded, err := Normalize(types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"}, time.UTC)
		require.NoError(t, err)

		separate, err := Normalize(types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"}, time.UTC)
		require.NoError(t, err)

		require.True(t, embedded.Equal(separate))
	})

	t.Run("rejects empty value", func(t *testing.T) {
		_, err := Normalize(types.RawTimeSpec{}, nil)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("rejects garbage value", func(t *testing.T) {
		_, err := Normalize(types.RawTimeSpec{Value: "not-a-date"}, nil)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("rejects garbage instant", func(t *testing.T) {
		_, err := Normalize(types.RawTimeSpec{Value: "2024-11-12Tnoon"}, nil)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("rejects garbage time of day", func(t *testing.T) {
		_, err := Normalize(types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "late"}, nil)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("rejects calendar-invalid date", func(t *testing.T) {
		_, err := Normalize(types.RawTimeSpec{Value: "2024-13-45"}, nil)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})
}

func TestNormalizeInterval(t *testing.T) {
	t.Run("returns ordered bounds", func(t *testing.T) {
		start, end, err := NormalizeInterval(
			types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"},
			types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "10:00"},
			time.UTC,
		)

		require.NoError(t, err)
		require.True(t, start.Before(end))
		require.Equal(t, time.Hour, end.Sub(start))
	})

	t.Run("rejects collapsed interval", func(t *testing.T) {
		_, _, err := NormalizeInterval(
			types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"},
			types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"},
			nil,
		)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		_, _, err := NormalizeInterval(
			types.RawTimeSpec{Value: "2024-11-12T10:00:00Z"},
			types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"},
			nil,
		)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("missing end time of day collapses to start of day and is rejected", func(t *testing.T) {
		// Both bounds on the same date with the end lacking a time of day
		// default to midnight, which cannot be after a morning start.
		_, _, err := NormalizeInterval(
			types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"},
			types.RawTimeSpec{Value: "2024-11-12"},
			nil,
		)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})

	t.Run("propagates unparsable start", func(t *testing.T) {
		_, _, err := NormalizeInterval(
			types.RawTimeSpec{Value: "bogus"},
			types.RawTimeSpec{Value: "2024-11-12T10:00:00Z"},
			nil,
		)

		require.ErrorIs(t, err, types.ErrInvalidTime)
	})
}
