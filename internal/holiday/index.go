package holiday

import (
	"time"
)

// NormalLabel marks days with no holiday.
const NormalLabel = "normal"

// Marker identifies a holiday occurrence. At is pinned to noon local time
// so that distances measured against midday events carry no systematic
// half-day bias.
type Marker struct {
	At    time.Time
	Label string
}

// DayRef is one day's row in the proximity index: the day's own label and
// the nearest holidays on either side. Prev is nil for days before the
// first holiday in the span, Next for days after the last.
type DayRef struct {
	Day   time.Time
	Label string
	Prev  *Marker
	Next  *Marker
}

// Index maps every calendar day in a span to its DayRef. It is built once
// and immutable afterwards, so any number of goroutines may share it.
type Index struct {
	loc  *time.Location
	refs map[int]DayRef
	min  time.Time
	max  time.Time
}

// BuildIndex enumerates every calendar day in [min, max], labels each via
// the calendar, and fills nearest-previous and nearest-next holiday
// pointers in a single forward pass: the previous pointer tracks the last
// holiday seen so far, and next pointers are backfilled over the gap each
// time a holiday is reached. Days in the span therefore resolve in time
// linear in the span length.
func BuildIndex(min, max time.Time, cal Calendar, loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}

	ix := &Index{
		loc:  loc,
		refs: make(map[int]DayRef),
	}

	start := midnight(min, loc)
	end := midnight(max, loc)
	ix.min = start
	ix.max = end

	var lastSeen *Marker
	var pending []int // day keys since the last holiday, awaiting a Next pointer

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := ymdKey(day.Year(), day.Month(), day.Day())
		label, isHoliday := cal.Lookup(day)
		if !isHoliday {
			label = NormalLabel
		}

		ref := DayRef{Day: day, Label: label}

		if isHoliday {
			marker := &Marker{At: day.Add(12 * time.Hour), Label: label}

			// Backfill next-holiday pointers for the gap behind us. The
			// holiday is its own nearest holiday on both sides.
			for _, pkey := range pending {
				pref := ix.refs[pkey]
				pref.Next = marker
				ix.refs[pkey] = pref
			}
			pending = pending[:0]

			ref.Prev = marker
			ref.Next = marker
			lastSeen = marker
		} else {
			ref.Prev = lastSeen
			pending = append(pending, key)
		}

		ix.refs[key] = ref
	}

	// Days after the last holiday keep a nil Next; days before the first
	// keep a nil Prev. Both edges are undefined by construction.
	return ix
}

// Lookup returns the DayRef for the calendar day containing t. The join is
// on the day component only; time-of-day never affects the key. ok is
// false for days outside the indexed span.
func (ix *Index) Lookup(t time.Time) (DayRef, bool) {
	local := t.In(ix.loc)
	ref, ok := ix.refs[ymdKey(local.Year(), local.Month(), local.Day())]
	return ref, ok
}

// Span returns the first and last indexed days.
func (ix *Index) Span() (min, max time.Time) {
	return ix.min, ix.max
}

// Days returns the number of days in the index.
func (ix *Index) Days() int {
	return len(ix.refs)
}

// midnight truncates t to the start of its calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
