package services

import "time"

// Duration is an elapsed calendar time broken into components. Unlike a
// time.Duration it is anchored to real calendar months, so the same number of
// days can mean a different Duration depending on where the interval sits.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// Interval is a work period as the tenure math sees it. A nil End means the
// period is still running and is measured up to the current date.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// DurationBetween computes the calendar time from start to end as whole
// years, months and days, such that stepping start forward by the year and
// month components (clamping to month ends, so Jan 31 plus one month is the
// last day of February) and then by the day component lands exactly on end.
// When end is nil the current date is used.
//
// A start after end produces negative components; rejecting that is the
// caller's job, since the period validators already enforce ordering at the
// API boundary.
func DurationBetween(start time.Time, end *time.Time) Duration {
	until := time.Now()
	if end != nil {
		until = *end
	}
	return durationBetween(start, until)
}

func durationBetween(start, end time.Time) Duration {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())

	// When end's day-of-month falls short of start's, the last month is not
	// yet complete: borrow it back and count the remainder in days against
	// the actual length of the month before end's (28-31 days, never a
	// fixed 30).
	anchor := AddMonths(start, months)
	if anchor.After(end) {
		months--
		anchor = AddMonths(start, months)
	}

	return Duration{
		Years:  months / 12,
		Months: months % 12,
		Days:   daysBetween(anchor, end),
	}
}

// AddMonths steps t forward by the given number of calendar months, clamping
// the day-of-month to the target month's length.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// daysIn is the number of days in the given month. Day zero of the following
// month normalizes to this month's last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// TotalTenure sums the durations of the given periods component-wise and then
// normalizes with fixed 30-day months: days spill into months first, months
// spill into years second. The 30-day constant and the two-pass order are a
// deliberate approximation carried over from the system this one replaces;
// changing either would shift every seniority figure the school has already
// published.
func TotalTenure(periods []Interval) Duration {
	var total Duration
	for _, p := range periods {
		d := DurationBetween(p.Start, p.End)
		total.Years += d.Years
		total.Months += d.Months
		total.Days += d.Days
	}
	return normalize(total)
}

func normalize(d Duration) Duration {
	if d.Days >= 30 {
		d.Months += d.Days / 30
		d.Days %= 30
	}
	if d.Months >= 12 {
		d.Years += d.Months / 12
		d.Months %= 12
	}
	return d
}

// CurrentAge is the age today of someone born on birthDate.
func CurrentAge(birthDate time.Time) Duration {
	return DurationBetween(birthDate, nil)
}
