package holiday

import (
	"time"
)

// Calendar resolves a calendar date to a holiday label. Implementations
// must be safe for concurrent lookups.
type Calendar interface {
	// Lookup returns the holiday label for the day containing t, or
	// ok=false when the day is an ordinary one.
	Lookup(t time.Time) (label string, ok bool)
}

// USCalendar is a built-in calendar of United States federal holidays,
// optionally extended with New York state observances. Saturday holidays
// are also observed on the preceding Friday and Sunday holidays on the
// following Monday, matching common closure rules.
type USCalendar struct {
	byDay map[int]string
}

// NewUSCalendar builds a calendar covering the years [fromYear, toYear]
// inclusive. state currently recognizes "NY"; any other value yields the
// federal set only.
func NewUSCalendar(state string, fromYear, toYear int) *USCalendar {
	cal := &USCalendar{byDay: make(map[int]string)}
	for year := fromYear; year <= toYear; year++ {
		cal.addYear(year, state)
	}
	return cal
}

// Lookup implements Calendar. Only the calendar day of t matters.
func (c *USCalendar) Lookup(t time.Time) (string, bool) {
	label, ok := c.byDay[ymdKey(t.Year(), t.Month(), t.Day())]
	return label, ok
}

func (c *USCalendar) addYear(year int, state string) {
	c.observe(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), "New Year's Day")
	c.fixed(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day")
	c.fixed(nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday")
	c.fixed(lastWeekday(year, time.May, time.Monday), "Memorial Day")
	c.observe(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC), "Independence Day")
	c.fixed(nthWeekday(year, time.September, time.Monday, 1), "Labor Day")
	c.fixed(nthWeekday(year, time.October, time.Monday, 2), "Columbus Day")
	c.observe(time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC), "Veterans Day")
	c.fixed(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving")
	c.observe(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC), "Christmas Day")

	// The following New Year's Day observes back into this year when
	// January 1 falls on a Saturday.
	next := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	if next.Weekday() == time.Saturday {
		c.fixed(next.AddDate(0, 0, -1), "New Year's Day (Observed)")
	}

	if state == "NY" {
		c.observe(time.Date(year, time.February, 12, 0, 0, 0, 0, time.UTC), "Lincoln's Birthday")
		if year%2 == 0 {
			// General elections fall on the Tuesday after the first
			// Monday of November in even years.
			c.fixed(nthWeekday(year, time.November, time.Monday, 1).AddDate(0, 0, 1), "Election Day")
		}
	}
}

// fixed records a holiday on its actual day.
func (c *USCalendar) fixed(day time.Time, label string) {
	key := ymdKey(day.Year(), day.Month(), day.Day())
	if _, taken := c.byDay[key]; !taken {
		c.byDay[key] = label
	}
}

// observe records a holiday and, when it falls on a weekend, its shifted
// observed day as well.
func (c *USCalendar) observe(day time.Time, label string) {
	c.fixed(day, label)
	switch day.Weekday() {
	case time.Saturday:
		c.fixed(day.AddDate(0, 0, -1), label+" (Observed)")
	case time.Sunday:
		c.fixed(day.AddDate(0, 0, 1), label+" (Observed)")
	}
}

// nthWeekday returns the nth given weekday of a month (n starting at 1).
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

func ymdKey(year int, month time.Month, day int) int {
	return year*10000 + int(month)*100 + day
}
