package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copenhagen(t *testing.T) *time.Location {
	t.Helper()
	loc, fellBack := LoadLocation(DefaultTimezone)
	require.False(t, fellBack, "tzdata is embedded, Copenhagen must resolve")
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsoWeekMonday(t *testing.T) {
	loc := copenhagen(t)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  time.Date(2025, 12, 17, 10, 0, 0, 0, time.UTC),
			want: date(2025, 12, 15),
		},
		{
			name: "monday itself",
			now:  time.Date(2025, 12, 15, 8, 0, 0, 0, time.UTC),
			want: date(2025, 12, 15),
		},
		{
			name: "sunday late utc is already monday in copenhagen",
			now:  time.Date(2025, 12, 21, 23, 30, 0, 0, time.UTC),
			want: date(2025, 12, 22),
		},
		{
			name: "sunday evening local stays in the same week",
			now:  time.Date(2025, 12, 21, 22, 30, 0, 0, time.UTC),
			want: date(2025, 12, 15),
		},
		{
			name: "crosses a year boundary",
			now:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			want: date(2025, 12, 29),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IsoWeekMonday(tc.now, loc)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
			assert.True(t, IsMonday(got))
		})
	}
}

func TestIsoWeekMonday_NilLocationUsesUTC(t *testing.T) {
	got := IsoWeekMonday(time.Date(2025, 12, 14, 23, 30, 0, 0, time.UTC), nil)
	assert.True(t, date(2025, 12, 8).Equal(got))
}

func TestCalendar_CutoffAt_HonoursDaylightSaving(t *testing.T) {
	cal, err := New(copenhagen(t), DefaultCutoffHour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		weekStart time.Time
		wantUTC   time.Time
	}{
		{"winter time", date(2025, 12, 15), time.Date(2025, 12, 20, 16, 0, 0, 0, time.UTC)},
		{"summer time", date(2025, 6, 16), time.Date(2025, 6, 21, 15, 0, 0, 0, time.UTC)},
		{"week when dst starts on sunday", date(2025, 3, 24), time.Date(2025, 3, 29, 16, 0, 0, 0, time.UTC)},
		{"week when dst ends on sunday", date(2025, 10, 20), time.Date(2025, 10, 25, 15, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.CutoffAt(tc.weekStart)
			assert.True(t, tc.wantUTC.Equal(got), "want %s got %s", tc.wantUTC, got.UTC())
		})
	}
}

func TestCalendar_CutoffPassed_IsMonotonic(t *testing.T) {
	cal, err := New(copenhagen(t), DefaultCutoffHour)
	require.NoError(t, err)

	weekStart := date(2025, 12, 15)
	cutoff := time.Date(2025, 12, 20, 16, 0, 0, 0, time.UTC)

	before := []time.Time{
		time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 20, 15, 59, 59, 0, time.UTC),
		cutoff.Add(-time.Nanosecond),
	}
	for _, now := range before {
		assert.False(t, cal.CutoffPassed(clockwork.NewFakeClockAt(now), weekStart), "at %s", now)
	}

	after := []time.Time{
		cutoff,
		cutoff.Add(time.Nanosecond),
		time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, now := range after {
		assert.True(t, cal.CutoffPassed(clockwork.NewFakeClockAt(now), weekStart), "at %s", now)
	}
}

func TestCutoffPassed_PackageLevelUsesSaturdayFivePM(t *testing.T) {
	loc := copenhagen(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 12, 20, 15, 30, 0, 0, time.UTC))

	assert.False(t, CutoffPassed(clock, date(2025, 12, 15), loc))
	clock.Advance(30 * time.Minute)
	assert.True(t, CutoffPassed(clock, date(2025, 12, 15), loc))
}

func TestLoadLocation_FallsBackToUTC(t *testing.T) {
	loc, fellBack := LoadLocation("Mars/Olympus_Mons")
	assert.True(t, fellBack)
	assert.Equal(t, time.UTC, loc)

	loc, fellBack = LoadLocation("")
	assert.True(t, fellBack)
	assert.Equal(t, time.UTC, loc)
}

func TestNew_RejectsInvalidCutoffHour(t *testing.T) {
	_, err := New(time.UTC, 24)
	assert.Error(t, err)

	cal, err := New(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cal.Location())
}

func TestDateHelpers(t *testing.T) {
	got, err := ParseDate(" 2025-12-15 ")
	require.NoError(t, err)
	assert.True(t, date(2025, 12, 15).Equal(got))
	assert.Equal(t, "2025-12-15", FormatDate(got))
	assert.True(t, date(2025, 12, 22).Equal(NextWeek(got)))

	_, err = ParseDate("15/12/2025")
	assert.Error(t, err)
}
