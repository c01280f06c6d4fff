package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultTimezone is the zone weekly games are played in.
	DefaultTimezone = "Europe/Copenhagen"
	// DefaultCutoffHour is the local hour on Saturday when sales close.
	DefaultCutoffHour = 17

	dateLayout    = "2006-01-02"
	cutoffDayDiff = 5 // Monday + 5 days = Saturday
	daysPerWeek   = 7
)

// Calendar resolves game weeks and the purchase cutoff in one fixed time zone.
type Calendar struct {
	loc        *time.Location
	cutoffHour int
}

// New builds a calendar for loc. A nil location means UTC.
func New(loc *time.Location, cutoffHour int) (Calendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	if cutoffHour < 0 || cutoffHour > 23 {
		return Calendar{}, fmt.Errorf("cutoff hour must be within 0..23, got %d", cutoffHour)
	}
	return Calendar{loc: loc, cutoffHour: cutoffHour}, nil
}

// Default returns the Copenhagen calendar with the Saturday 17:00 cutoff.
func Default() Calendar {
	loc, _ := LoadLocation(DefaultTimezone)
	return Calendar{loc: loc, cutoffHour: DefaultCutoffHour}
}

// LoadLocation loads the named zone. When the runtime has no timezone data for
// it, UTC is returned together with fellBack=true.
func LoadLocation(name string) (loc *time.Location, fellBack bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, true
	}
	return loc, false
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) CutoffHour() int {
	return c.cutoffHour
}

// IsoWeekMonday returns the Monday of the local calendar week containing now.
func (c Calendar) IsoWeekMonday(now time.Time) time.Time {
	return IsoWeekMonday(now, c.Location())
}

// CutoffAt returns the absolute instant when sales for weekStart close.
func (c Calendar) CutoffAt(weekStart time.Time) time.Time {
	saturday := DateOf(weekStart).AddDate(0, 0, cutoffDayDiff)
	return time.Date(saturday.Year(), saturday.Month(), saturday.Day(), c.cutoffHour, 0, 0, 0, c.Location())
}

// CutoffPassed reports whether the clock is at or after the cutoff of weekStart.
func (c Calendar) CutoffPassed(clock clockwork.Clock, weekStart time.Time) bool {
	return !clock.Now().Before(c.CutoffAt(weekStart))
}

// IsoWeekMonday converts now to loc and returns the Monday of that local week
// as a date (midnight UTC).
func IsoWeekMonday(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % daysPerWeek
	return time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// CutoffPassed checks the default Saturday 17:00 cutoff in loc.
func CutoffPassed(clock clockwork.Clock, weekStart time.Time, loc *time.Location) bool {
	return Calendar{loc: loc, cutoffHour: DefaultCutoffHour}.CutoffPassed(clock, weekStart)
}

// NextWeek returns the Monday seven days after weekStart.
func NextWeek(weekStart time.Time) time.Time {
	return DateOf(weekStart).AddDate(0, 0, daysPerWeek)
}

// DateOf drops the clock part of t, keeping its calendar date in t's zone.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func IsMonday(date time.Time) bool {
	return date.Weekday() == time.Monday
}

func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return parsed, nil
}

func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}
