// Package age computes how old a dino is from its birth date.
//
// Time is counted in whole days between calendar dates. Maintenance downtimes
// overlapping the dino's lifetime do not count towards its age.
package age

import (
	"errors"
	"time"

	"anthraxutils/internal/lifespan"
)

// DefaultWeeksPerYear is the length of an in-game year.
const DefaultWeeksPerYear = 4

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrFutureBirthDate = errors.New("birth date is in the future")
)

// Downtime is a maintenance interval [Start, End) during which dinos do not age.
type Downtime struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// Age is the result of a calculation.
type Age struct {
	Birth time.Time
	Today time.Time
	// Days discounted because of downtimes.
	DowntimeDays int
	Weeks        int
	Years        int
	// Highest stage reached, nil when none is.
	CurrentStage *lifespan.Stage
	// Every stage reached so far, youngest first.
	ReachedStages []lifespan.Stage
}

// Calculator holds the settings shared by every calculation.
type Calculator struct {
	WeeksPerYear int
	Downtimes    []Downtime
	Location     *time.Location
}

// NewCalculator returns a calculator with the default year length in UTC.
func NewCalculator(downtimes []Downtime) Calculator {
	return Calculator{WeeksPerYear: DefaultWeeksPerYear, Downtimes: downtimes, Location: time.UTC}
}

// BirthDate builds a calendar date from its components, rejecting any
// component the calendar would otherwise normalise (31 April, month 13, ...).
func BirthDate(day, month, year int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrInvalidDate
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// Calculate computes the age of a dino born on birth as seen on now.
// stages must be sorted by minimum age.
func (c Calculator) Calculate(birth, now time.Time, stages []lifespan.Stage) (Age, error) {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	weeksPerYear := c.WeeksPerYear
	if weeksPerYear <= 0 {
		weeksPerYear = DefaultWeeksPerYear
	}

	birth = truncateDay(birth, loc)
	today := truncateDay(now, loc)
	if birth.After(today) {
		return Age{}, ErrFutureBirthDate
	}

	days := daysBetween(birth, today)
	downtimeDays := 0
	for _, downtime := range c.Downtimes {
		downtimeDays += overlapDays(birth, today, truncateDay(downtime.Start, loc), truncateDay(downtime.End, loc))
	}
	days = max(days-downtimeDays, 0)

	result := Age{
		Birth:        birth,
		Today:        today,
		DowntimeDays: downtimeDays,
		Weeks:        days / 7,
	}
	result.Years = result.Weeks / weeksPerYear
	result.ReachedStages = Reached(stages, result.Weeks)
	if n := len(result.ReachedStages); n > 0 {
		current := result.ReachedStages[n-1]
		result.CurrentStage = &current
	}
	return result, nil
}

// Reached returns the stages whose minimum age is at most weeks.
func Reached(stages []lifespan.Stage, weeks int) []lifespan.Stage {
	reached := []lifespan.Stage{}
	for _, stage := range stages {
		if stage.MinAge <= weeks {
			reached = append(reached, stage)
		}
	}
	return reached
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days, so DST shifts do not lose a day.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// overlapDays returns how many days of [start, end) fall within [from, to).
func overlapDays(from, to, start, end time.Time) int {
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return daysBetween(start, end)
}
